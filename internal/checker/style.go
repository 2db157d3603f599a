package checker

import (
	"math"
	"strings"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/parser"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/violation"
)

const (
	msgFontSize = "Неверный размер шрифта %s (ожидается %s): «%s»"
	msgFontName = "Неверный шрифт %s (ожидается %s): «%s»"

	msgLineSpacing = "Неверный межстрочный интервал %s (ожидается %s): «%s»"
	msgMargin      = "Неверное %s поле страницы %s мм (ожидается %s мм)"
)

// Spacing is stored in 240ths of a line, margins in twips.
const (
	lineUnits     = 240.0
	twipsPerMM    = 1440 / 25.4
	marginSlackMM = 0.5
	spacingSlack  = 0.01
)

// checkFonts walks the paragraph tree comparing annotated fonts and line
// spacing with the common rules. The table of contents subtree is skipped.
func checkFonts(st *state) {
	tree := st.model.Tree
	if tree == nil {
		return
	}
	wantSize := st.rules.Common.FontSizeString()
	wantName := strings.TrimSpace(st.rules.Common.FontName)
	wantSpacing := st.rules.Common.LineSpacing
	if wantSize == "" && wantName == "" && wantSpacing <= 0 {
		return
	}
	doctree.Walk(tree.Children, func(n *doctree.DocNode) bool {
		if n.Text == parser.TOCChapter {
			return false
		}
		if n.Style == nil {
			return true
		}
		snippet := violation.Snippet(n.Text, snippetRunes)
		if wantSize != "" && n.Style.FontSize > 0 {
			if got := rules.FormatSize(n.Style.FontSize); got != wantSize {
				st.errs.Addf(msgFontSize, got, wantSize, snippet)
			}
		}
		if wantName != "" && n.Style.FontName != "" && !strings.EqualFold(n.Style.FontName, wantName) {
			st.errs.Addf(msgFontName, n.Style.FontName, wantName, snippet)
		}
		if wantSpacing > 0 && n.Style.LineSpacing > 0 {
			got := float64(n.Style.LineSpacing) / lineUnits
			if math.Abs(got-wantSpacing) > spacingSlack {
				st.errs.Addf(msgLineSpacing, rules.FormatSize(math.Round(got*100)/100), rules.FormatSize(wantSpacing), snippet)
			}
		}
		return true
	})
}

// checkMargins compares the section page margins with the common rules.
func checkMargins(st *state) {
	want := st.rules.Common.Margins
	got := st.model.PageMargins
	if want == nil || got == nil {
		return
	}
	sides := []struct {
		name      string
		got, want float64
	}{
		{"верхнее", float64(got.Top), want.Top},
		{"нижнее", float64(got.Bottom), want.Bottom},
		{"левое", float64(got.Left), want.Left},
		{"правое", float64(got.Right), want.Right},
	}
	for _, s := range sides {
		if s.want <= 0 {
			continue
		}
		mm := s.got / twipsPerMM
		if math.Abs(mm-s.want) > marginSlackMM {
			st.errs.Addf(msgMargin, s.name, rules.FormatSize(math.Round(mm*10)/10), rules.FormatSize(s.want))
		}
	}
}

// checkSty compares an uploaded style file with the reference one.
func checkSty(st *state) {
	if st.in.Sty == nil {
		return
	}
	if st.in.ReferenceSty == nil {
		st.log.Warn("style file uploaded but no reference style configured")
		return
	}
	parser.CompareSty(st.in.Sty, st.in.ReferenceSty, st.errs)
}
