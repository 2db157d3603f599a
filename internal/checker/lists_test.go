package checker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/rules"
)

func flatList(intro string, items ...string) doctree.List {
	l := doctree.List{Intro: intro}
	for _, it := range items {
		l.Items = append(l.Items, doctree.ListItem{Text: it})
	}
	return l
}

func TestCheckLists(t *testing.T) {
	tests := []struct {
		name   string
		format doctree.Format
		list   doctree.List
		want   []string
	}{
		{
			name:   "colon convention ok",
			format: doctree.FormatDOCX,
			list:   flatList("Система решает задачи:", "проверку структуры;", "проверку ссылок."),
		},
		{
			name:   "period convention ok",
			format: doctree.FormatDOCX,
			list:   flatList("Этапы описаны ниже.", "Анализ требований.", "Реализация."),
		},
		{
			name:   "colon convention violations",
			format: doctree.FormatDOCX,
			list:   flatList("Задачи:", "Проверка структуры;", "проверка ссылок,", "итог;"),
			want: []string{
				fmt.Sprintf(msgItemLowercase, "Проверка структуры;"),
				fmt.Sprintf(msgItemSemicolon, "проверка ссылок,"),
				fmt.Sprintf(msgLastItemPeriod, "итог;"),
			},
		},
		{
			name:   "period convention violations",
			format: doctree.FormatDOCX,
			list:   flatList("Этапы.", "анализ.", "Реализация"),
			want: []string{
				fmt.Sprintf(msgItemUppercase, "анализ."),
				fmt.Sprintf(msgItemPeriod, "Реализация"),
			},
		},
		{
			name:   "intro without terminator",
			format: doctree.FormatLaTeX,
			list:   flatList("Перечислим этапы", "анализ;", "реализация."),
			want:   []string{fmt.Sprintf(msgListIntro, "Перечислим этапы")},
		},
		{
			name:   "empty intro",
			format: doctree.FormatDOCX,
			list:   flatList("", "– анализ"),
			want:   []string{fmt.Sprintf(msgListIntro, "")},
		},
		{
			name:   "latex markup stripped",
			format: doctree.FormatLaTeX,
			list:   flatList(`Перечислим \textbf{этапы:}`, `\emph{анализ};`, `реализация.`),
		},
		{
			name:   "items without letters skip case",
			format: doctree.FormatDOCX,
			list:   flatList("Версии:", "1.0;", "2.0."),
		},
		{
			name:   "nested list",
			format: doctree.FormatLaTeX,
			list: doctree.List{
				Intro:  "Этапы работы:",
				Nested: true,
				Items: []doctree.ListItem{
					{Text: "Анализ:", Children: []doctree.ListItem{{Text: "сбор данных;"}, {Text: "обработка."}}},
					{Text: "Реализация", Children: []doctree.ListItem{{Text: "Кодирование."}}},
				},
			},
			want: []string{
				fmt.Sprintf(msgNestedItemColon, "Реализация"),
				fmt.Sprintf(msgItemLowercase, "Кодирование."),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := doctree.NewModel(tt.format)
			m.Lists = []doctree.List{tt.list}
			res := runChecks(t, &rules.RuleSet{}, m)
			if tt.want == nil {
				assert.Empty(t, res.Errors)
				return
			}
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestCheckLists_IntroAlwaysFlaggedRegardlessOfItems(t *testing.T) {
	for _, items := range [][]string{nil, {"a;"}, {"Любой текст."}, {"x", "y", "z"}} {
		m := doctree.NewModel(doctree.FormatLaTeX)
		m.Lists = []doctree.List{flatList("Без точки", items...)}
		res := runChecks(t, &rules.RuleSet{}, m)
		assert.Contains(t, res.Errors, fmt.Sprintf(msgListIntro, "Без точки"))
	}
}
