// Package report renders check reports for clients.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/normcontrol/internal/service"
)

// Format is an output format.
type Format string

const (
	JSON     Format = "json"
	Text     Format = "text"
	Markdown Format = "markdown"
	HTML     Format = "html"
)

// ParseFormat resolves a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return JSON, nil
	case JSON, Text, Markdown, HTML:
		return f, nil
	case "md":
		return Markdown, nil
	case "txt":
		return Text, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// ContentType returns the HTTP content type of f.
func (f Format) ContentType() string {
	switch f {
	case Text:
		return "text/plain; charset=utf-8"
	case Markdown:
		return "text/markdown; charset=utf-8"
	case HTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render writes reports to w in format f. A single report renders as an
// object in JSON, several as an array.
func Render(w io.Writer, f Format, reports ...*service.Report) error {
	switch f {
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	case Text:
		for i, r := range reports {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := writeText(w, r); err != nil {
				return err
			}
		}
		return nil
	case Markdown:
		_, err := io.WriteString(w, markdown(reports))
		return err
	case HTML:
		return writeHTML(w, reports)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

func status(valid bool) string {
	if valid {
		return "соответствует требованиям"
	}
	return "найдены нарушения"
}

func writeText(w io.Writer, r *service.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Документ: %s (%s, %s)\n", r.Filename, r.DocType, r.Format)
	fmt.Fprintf(&b, "Результат: %s\n", status(r.Valid))
	for i, e := range r.Errors {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, e)
	}
	fmt.Fprintf(&b, "Проверка %s, %d мс, blake3 %s\n", r.ID, r.DurationMs, shortHash(r.Fingerprint))
	_, err := io.WriteString(w, b.String())
	return err
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}

// mdEscaper escapes characters with Markdown meaning in document text.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", "&lt;", ">", "&gt;", "#", `\#`, "|", `\|`,
)

func markdown(reports []*service.Report) string {
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "# Нормоконтроль: %s\n\n", mdEscaper.Replace(r.Filename))
		fmt.Fprintf(&b, "| Тип документа | Формат | Результат | Время |\n|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %s | %s | %s | %d мс |\n\n", r.DocType, r.Format, status(r.Valid), r.DurationMs)

		if len(r.Errors) > 0 {
			b.WriteString("## Нарушения\n\n")
			for j, e := range r.Errors {
				fmt.Fprintf(&b, "%d. %s\n", j+1, mdEscaper.Replace(e))
			}
			b.WriteString("\n")
		}

		b.WriteString("## Структура\n\n")
		for _, c := range r.Found.Chapters {
			fmt.Fprintf(&b, "- %s\n", mdEscaper.Replace(c))
		}
		keys := make([]string, 0, len(r.Found.SectionsByChapter))
		for k := range r.Found.SectionsByChapter {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			b.WriteString("\n| Глава | Разделов |\n|---|---|\n")
			for _, k := range keys {
				fmt.Fprintf(&b, "| %s | %d |\n", mdEscaper.Replace(k), r.Found.SectionsByChapter[k])
			}
		}
		fmt.Fprintf(&b, "\nРисунков: %d, таблиц: %d, приложений: %d, источников: %d, ссылок на источники: %d, списков: %d\n",
			r.Found.Pictures, r.Found.Tables, len(r.Found.Appendices),
			r.Found.BibliographyItems, r.Found.Citations, r.Found.Lists)
		fmt.Fprintf(&b, "\n`%s`\n", r.Fingerprint)
	}
	return b.String()
}

var (
	md     = goldmark.New(goldmark.WithExtensions(extension.Table))
	policy = bluemonday.UGCPolicy()
)

// writeHTML converts the Markdown report and sanitizes the result, since
// document text is untrusted.
func writeHTML(w io.Writer, reports []*service.Report) error {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown(reports)), &buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	title := "Нормоконтроль"
	if len(reports) == 1 {
		title += ": " + reports[0].Filename
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"ru\">\n<head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), policy.SanitizeBytes(buf.Bytes()))
	return err
}
