package checker

import (
	"strings"
	"unicode"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/parser"
	"github.com/dgallion1/normcontrol/internal/violation"
)

const (
	msgListIntro       = "Вводное предложение перед списком должно заканчиваться ':' или '.': «%s»"
	msgItemLowercase   = "Пункт списка «%s» должен начинаться со строчной буквы"
	msgItemUppercase   = "Пункт списка «%s» должен начинаться с заглавной буквы"
	msgItemSemicolon   = "Пункт списка «%s» должен заканчиваться ';'"
	msgItemPeriod      = "Пункт списка «%s» должен заканчиваться '.'"
	msgLastItemPeriod  = "Последний пункт списка «%s» должен заканчиваться '.'"
	msgNestedItemColon = "Пункт списка «%s», содержащий вложенный список, должен заканчиваться ':'"

	snippetRunes = 40
)

// checkLists enforces the punctuation convention set by each list's
// introductory sentence.
func checkLists(st *state) {
	latex := st.model.Format == doctree.FormatLaTeX
	clean := func(s string) string {
		if latex {
			return parser.StripMarkup(s)
		}
		return strings.TrimSpace(s)
	}

	for _, l := range st.model.Lists {
		intro := clean(l.Intro)
		ending := lastRune(intro)
		if ending != ':' && ending != '.' {
			st.errs.Addf(msgListIntro, violation.Snippet(intro, snippetRunes))
		}

		if !l.Nested {
			st.checkItems(ending, itemTexts(l.Items, clean))
			continue
		}
		for _, it := range l.Items {
			text := clean(it.Text)
			if lastRune(text) != ':' {
				st.errs.Addf(msgNestedItemColon, violation.Snippet(text, snippetRunes))
			}
			if len(it.Children) > 0 {
				st.checkItems(':', itemTexts(it.Children, clean))
			}
		}
	}
}

// checkItems applies the colon convention (lowercase, ';' and a final '.')
// or the period convention (uppercase, '.'). Other endings check nothing.
func (st *state) checkItems(ending rune, items []string) {
	for i, text := range items {
		snippet := violation.Snippet(text, snippetRunes)
		first, last := firstLetter(text), lastRune(text)
		switch ending {
		case ':':
			if first != 0 && !unicode.IsLower(first) {
				st.errs.Addf(msgItemLowercase, snippet)
			}
			if i == len(items)-1 {
				if last != '.' {
					st.errs.Addf(msgLastItemPeriod, snippet)
				}
			} else if last != ';' {
				st.errs.Addf(msgItemSemicolon, snippet)
			}
		case '.':
			if first != 0 && !unicode.IsUpper(first) {
				st.errs.Addf(msgItemUppercase, snippet)
			}
			if last != '.' {
				st.errs.Addf(msgItemPeriod, snippet)
			}
		}
	}
}

func itemTexts(items []doctree.ListItem, clean func(string) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, clean(it.Text))
	}
	return out
}

func lastRune(s string) rune {
	r := []rune(strings.TrimSpace(s))
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

func firstLetter(s string) rune {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return r
		}
	}
	return 0
}
