package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `{
  "structure_rules": {
    "required_chapters": ["Введение", "Заключение"],
    "required_sections": {"1": ["Постановка задачи"]},
    "introduction_keywords": ["Актуальность", "Цель работы:"]
  },
  "common_rules": {
    "font_size": 14,
    "font_name": "Times New Roman",
    "margins": {"top": 20, "bottom": 20, "left": 30, "right": 15}
  },
  "ignored_errors": []
}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	for _, dt := range AllDocTypes() {
		path := filepath.Join(dir, string(dt)+"_rules.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o644))
	}
	return NewStore(dir, nil)
}

func TestStore_Load(t *testing.T) {
	s := newTestStore(t)

	rs, err := s.Load(Diploma)
	require.NoError(t, err)
	assert.Equal(t, []string{"Введение", "Заключение"}, rs.Structure.RequiredChapters)
	assert.Equal(t, []string{"Постановка задачи"}, rs.Structure.SectionsFor("1"))
	assert.Equal(t, "14", rs.Common.FontSizeString())
	require.NotNil(t, rs.Common.Margins)
	assert.Equal(t, 30.0, rs.Common.Margins.Left)
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir(), nil)

	_, err := s.Load(CourseWork)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDocType))

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "load", opErr.Op)
}

func TestStore_UpdateNumber(t *testing.T) {
	s := newTestStore(t)

	v, err := s.Update(Diploma, "common_rules.font_size", "12,5")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, v.Kind)
	assert.Equal(t, 12.5, v.Num)

	rs, err := s.Load(Diploma)
	require.NoError(t, err)
	assert.Equal(t, "12.5", rs.Common.FontSizeString())

	other, err := s.Load(CourseWork)
	require.NoError(t, err)
	assert.Equal(t, "14", other.Common.FontSizeString(), "other doc types are untouched")
}

func TestStore_UpdateKeepsUnknownKeys(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(Diploma, "structure_rules.required_chapters", "Введение, Заключение, Список использованных источников")
	require.NoError(t, err)

	raw, err := s.Raw(Diploma)
	require.NoError(t, err)
	common, ok := raw["common_rules"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Times New Roman", common["font_name"])

	rs, err := s.Load(Diploma)
	require.NoError(t, err)
	assert.Len(t, rs.Structure.RequiredChapters, 3)
}

func TestStore_UpdateWildcardSection(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(Diploma, "structure_rules.required_sections.2", `["Реализация", "Тестирование"]`)
	require.NoError(t, err)

	rs, err := s.Load(Diploma)
	require.NoError(t, err)
	assert.Equal(t, []string{"Реализация", "Тестирование"}, rs.Structure.SectionsFor("2"))
}

func TestStore_UpdateErrors(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name string
		key  string
		raw  string
		want error
	}{
		{"unknown key", "common_rules.paper_size", "A4", ErrUnknownRule},
		{"bad number", "common_rules.font_size", "large", ErrCoercion},
		{"bad list", "structure_rules.required_chapters", "[1,", ErrCoercion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Update(Diploma, tt.key, tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var opErr *OperationError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.key, opErr.Key)
		})
	}
}

func TestStore_UpdateMissingSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diploma_rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"structure_rules": {"required_chapters": []}}`), 0o644))
	s := NewStore(dir, nil)

	_, err := s.Update(Diploma, "common_rules.font_size", "14")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSectionNotFound))

	_, err = s.Update(Diploma, "structure_rules.introduction_keywords", "цель")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRule))
}

func TestStore_UpdateAll(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.Remove(s.Path(PracticeReport)))

	updated, failures := s.UpdateAll("common_rules.font_name", "Arial")
	assert.ElementsMatch(t, []DocType{Diploma, CourseWork}, updated)
	require.Len(t, failures, 1)
	assert.True(t, errors.Is(failures[PracticeReport], ErrUnknownDocType))

	for _, dt := range updated {
		rs, err := s.Load(dt)
		require.NoError(t, err)
		assert.Equal(t, "Arial", rs.Common.FontName)
	}
}

func TestStore_CacheInvalidate(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(Diploma)
	require.NoError(t, err)

	edited := `{"structure_rules": {"required_chapters": ["Реферат"]}, "common_rules": {"font_size": 12}}`
	require.NoError(t, os.WriteFile(s.Path(Diploma), []byte(edited), 0o644))

	rs, err := s.Load(Diploma)
	require.NoError(t, err)
	assert.Equal(t, "14", rs.Common.FontSizeString(), "served from cache until invalidated")

	s.Invalidate(Diploma)
	rs, err = s.Load(Diploma)
	require.NoError(t, err)
	assert.Equal(t, "12", rs.Common.FontSizeString())
	assert.Equal(t, []string{"Реферат"}, rs.Structure.RequiredChapters)
}

func TestDocTypeFromFile(t *testing.T) {
	tests := []struct {
		name   string
		want   DocType
		wantOK bool
	}{
		{"/rules/diploma_rules.json", Diploma, true},
		{"course_work_rules.json", CourseWork, true},
		{"/rules/thesis_rules.json", "", false},
		{"/rules/.rules-123.json", "", false},
		{"/rules/diploma.json", "", false},
	}
	for _, tt := range tests {
		got, ok := docTypeFromFile(tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
