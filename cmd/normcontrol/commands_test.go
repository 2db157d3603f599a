package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const diplomaRules = `{
  "structure_rules": {
    "required_chapters": ["Введение", "Заключение"],
    "required_sections": {},
    "introduction_keywords": []
  },
  "common_rules": {"font_size": 14},
  "ignored_errors": []
}`

const thesisTeX = `\begin{document}
\includepdf{title.pdf}
\tableofcontents
\chapter*{ВВЕДЕНИЕ}
\addcontentsline{toc}{chapter}{ВВЕДЕНИЕ}
Текст.
\chapter*{ЗАКЛЮЧЕНИЕ}
\addcontentsline{toc}{chapter}{ЗАКЛЮЧЕНИЕ}
\end{document}
`

func rulesDir(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diploma_rules.json"), []byte(diplomaRules), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListDocTypes(t *testing.T) {
	rulesDir(t)
	out, err := run(t, "list-doc-types")
	require.NoError(t, err)
	assert.Equal(t, " 1  diploma\n 2  course_work\n 3  practice_report\n", out)

	out, err = run(t, "rule-types", "--format", "json")
	require.NoError(t, err)
	var opts []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &opts))
	assert.Len(t, opts, 12)
}

func TestGetRules(t *testing.T) {
	dir := rulesDir(t)

	out, err := run(t, "get-rules", "diploma", "--rules-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"required_chapters"`)

	out, err = run(t, "get-rules", "diploma", "--rules-dir", dir, "-f", "yaml")
	require.NoError(t, err)
	var tree map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	assert.Contains(t, tree, "common_rules")

	_, err = run(t, "get-rules", "thesis", "--rules-dir", dir)
	assert.Error(t, err)

	_, err = run(t, "get-rules", "diploma", "--rules-dir", dir, "-f", "xml")
	assert.Error(t, err)
}

func TestUpdateRules(t *testing.T) {
	dir := rulesDir(t)

	out, err := run(t, "update-rule", "diploma", "common_rules.font_size", "12", "--rules-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "успешно обновлено на 12")

	_, err = run(t, "update-rule", "diploma", "common_rules.font_size", "big", "--rules-dir", dir)
	assert.Error(t, err)

	out, err = run(t, "update-rule-all", "ignored_errors", "титульный лист", "--rules-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Обновлены: diploma")
	assert.Contains(t, out, "course_work:")

	data, err := os.ReadFile(filepath.Join(dir, "diploma_rules.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "титульный лист")
}

func TestValidateLatex(t *testing.T) {
	dir := rulesDir(t)
	tex := filepath.Join(t.TempDir(), "thesis.tex")
	require.NoError(t, os.WriteFile(tex, []byte(thesisTeX), 0o644))

	out, err := run(t, "validate-latex", tex, "diploma", "--rules-dir", dir)
	require.NoError(t, err)
	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, true, rep["valid"], "errors: %v", rep["errors"])

	bad := filepath.Join(t.TempDir(), "bad.tex")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Replace(thesisTeX, "ЗАКЛЮЧЕНИЕ", "ИТОГИ", 2)), 0o644))

	out, err = run(t, "validate-latex", bad, "diploma", "--rules-dir", dir, "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "найдены нарушения")

	_, err = run(t, "validate-latex", bad, "diploma", "--rules-dir", dir, "--strict")
	assert.ErrorContains(t, err, "violations found")

	_, err = run(t, "validate-latex", tex, "diploma", "--rules-dir", dir, "--sty", "style.cls")
	assert.Error(t, err)
}

func TestValidateDocx_WrongExtension(t *testing.T) {
	dir := rulesDir(t)
	_, err := run(t, "validate-docx", "thesis.tex", "diploma", "--rules-dir", dir)
	assert.ErrorContains(t, err, "expected a .docx file")
}
