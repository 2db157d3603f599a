package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/normcontrol/internal/checker"
	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/service"
)

func sampleReport() *service.Report {
	return &service.Report{
		ID:          "7b1c2d3e-0000-4000-8000-000000000001",
		DocType:     rules.Diploma,
		Format:      doctree.FormatDOCX,
		Filename:    "thesis.docx",
		Fingerprint: strings.Repeat("ab", 32),
		DurationMs:  12,
		Result: checker.Result{
			Valid:  false,
			Errors: []string{"Отсутствует обязательная глава «Введение»", "На рисунок <script>alert(1)</script> нет ссылки в тексте"},
			Found: doctree.Summary{
				Chapters:          []string{"1 Анализ"},
				SectionsByChapter: map[string]int{"1 глава": 2},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", JSON, false},
		{"HTML", HTML, false},
		{"md", Markdown, false},
		{"txt", Text, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, false, got["valid"])
	assert.Equal(t, "diploma", got["doc_type"])
	assert.Len(t, got["errors"], 2)
	assert.Contains(t, got, "found")
	assert.Contains(t, buf.String(), "«Введение»")
}

func TestRender_JSONArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, JSON, sampleReport(), sampleReport()))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Text, sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "Результат: найдены нарушения")
	assert.Contains(t, out, "  1. Отсутствует обязательная глава «Введение»")
	assert.Contains(t, out, "abababababababab")
}

func TestRender_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Markdown, sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "# Нормоконтроль: thesis.docx")
	assert.Contains(t, out, "## Нарушения")
	assert.Contains(t, out, "| 1 глава | 2 |")
	assert.NotContains(t, out, "<script>")
}

func TestRender_HTMLSanitized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, HTML, sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "<h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<ol>")
	assert.NotContains(t, out, "<script>")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", JSON.ContentType())
	assert.True(t, strings.HasPrefix(HTML.ContentType(), "text/html"))
}
