package parser

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/normcontrol/internal/violation"
)

const (
	msgStyLineMismatch = "Строка %d стилевого файла не совпадает с эталоном: ожидается %q, найдено %q"
	msgStyShorter      = "Стилевой файл короче эталона: не хватает строк: %d, первая отсутствующая (строка %d): %q"
	msgStyLonger       = "Стилевой файл длиннее эталона: лишних строк: %d, первая лишняя (строка %d): %q"
)

// StyLines returns the significant lines of a .sty file: comments removed,
// surrounding whitespace trimmed, blank lines dropped.
func StyLines(data []byte) []string {
	text := StripComments(norm.NFC.String(strings.ReplaceAll(string(data), "\r\n", "\n")))
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// CompareSty records one violation per significant line of uploaded that
// differs from reference at the same position, and one for a line-count
// difference.
func CompareSty(uploaded, reference []byte, errs *violation.List) {
	got, want := StyLines(uploaded), StyLines(reference)
	n := min(len(got), len(want))
	for i := 0; i < n; i++ {
		if got[i] != want[i] {
			errs.Addf(msgStyLineMismatch, i+1, want[i], got[i])
		}
	}
	switch {
	case len(got) < len(want):
		errs.Addf(msgStyShorter, len(want)-len(got), n+1, want[n])
	case len(got) > len(want):
		errs.Addf(msgStyLonger, len(got)-len(want), n+1, got[n])
	}
}
