package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		key      string
		kind     Kind
		wildcard bool
		ok       bool
	}{
		{"common_rules.font_size", KindNumber, false, true},
		{"common_rules.font_name", KindString, false, true},
		{"structure_rules.required_sections.3", KindList, true, true},
		{"structure_rules.required_sections.", KindString, false, false},
		{"ignored_errors", KindList, false, true},
		{"common_rules", KindString, false, false},
		{"nope", KindString, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			kind, wildcard, ok := KindOf(tt.key)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.kind, kind)
				assert.Equal(t, tt.wildcard, wildcard)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		raw  string
		want Value
	}{
		{"string trimmed", KindString, "  Times New Roman ", Value{Kind: KindString, Str: "Times New Roman"}},
		{"number dot", KindNumber, "14", Value{Kind: KindNumber, Num: 14}},
		{"number comma", KindNumber, "1,5", Value{Kind: KindNumber, Num: 1.5}},
		{"bool upper", KindBool, "TRUE", Value{Kind: KindBool, Bool: true}},
		{"list commas", KindList, "Введение, ,Заключение", Value{Kind: KindList, List: []string{"Введение", "Заключение"}}},
		{"list json", KindList, `["a, b", "c"]`, Value{Kind: KindList, List: []string{"a, b", "c"}}},
		{"list empty", KindList, "", Value{Kind: KindList, List: []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.kind, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_Errors(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		raw  string
	}{
		{KindNumber, "fourteen"},
		{KindBool, "maybe"},
		{KindList, "[unterminated"},
	} {
		_, err := Coerce(tc.kind, tc.raw)
		assert.True(t, errors.Is(err, ErrCoercion), "%s %q: %v", tc.kind, tc.raw, err)
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "12.5", Value{Kind: KindNumber, Num: 12.5}.String())
	assert.Equal(t, "a, b", Value{Kind: KindList, List: []string{"a", "b"}}.String())
	assert.Equal(t, []string{}, Value{Kind: KindList}.Any())
}

func TestParseDocType(t *testing.T) {
	dt, err := ParseDocType(" DIPLOMA ")
	require.NoError(t, err)
	assert.Equal(t, Diploma, dt)

	_, err = ParseDocType("thesis")
	assert.True(t, errors.Is(err, ErrUnknownDocType))
}

func TestOptions(t *testing.T) {
	assert.Equal(t, []Option{
		{Name: "DIPLOMA", Value: 1},
		{Name: "COURSE_WORK", Value: 2},
		{Name: "PRACTICE_REPORT", Value: 3},
	}, DocTypes())

	types := RuleTypes()
	require.Len(t, types, 12)
	assert.Equal(t, Option{Name: "COMMON", Value: 1}, types[0])
	assert.Equal(t, Option{Name: "QUOTES", Value: 12}, types[11])
	assert.Equal(t, "RuleType(99)", RuleType(99).String())
}
