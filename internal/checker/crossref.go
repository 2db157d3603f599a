package checker

import (
	"github.com/dgallion1/normcontrol/internal/doctree"
)

// MaxRefDistance is the largest allowed character distance between the
// first reference to a LaTeX figure or table and its label.
const MaxRefDistance = 1800

// refKind holds the messages of one cross-reference family.
type refKind struct {
	missingRef   string // label without any reference
	missingLabel string // reference to an undeclared label
	beforeRef    string
	tooFar       string
}

var (
	pictureKind = refKind{
		missingRef:   "На рисунок %s нет ссылки в тексте",
		missingLabel: "Рисунок %s упоминается в тексте, но отсутствует в документе",
		beforeRef:    "Рисунок %s расположен раньше первой ссылки на него",
		tooFar:       "Рисунок %s расположен слишком далеко от первой ссылки на него",
	}
	tableKind = refKind{
		missingRef:   "На таблицу %s нет ссылки в тексте",
		missingLabel: "Таблица %s упоминается в тексте, но отсутствует в документе",
		beforeRef:    "Таблица %s расположена раньше первой ссылки на нее",
		tooFar:       "Таблица %s расположена слишком далеко от первой ссылки на нее",
	}
	longtableKind = refKind{
		missingRef:   "На длинную таблицу %s нет ссылки в тексте",
		missingLabel: "Длинная таблица %s упоминается в тексте, но отсутствует в документе",
		beforeRef:    "Длинная таблица %s расположена раньше первой ссылки на нее",
		tooFar:       "Длинная таблица %s расположена слишком далеко от первой ссылки на нее",
	}
	appendixKind = refKind{
		missingRef:   "На приложение %s нет ссылки в тексте",
		missingLabel: "Приложение %s упоминается в тексте, но отсутствует в документе",
	}
	bibliographyKind = refKind{
		missingRef:   "На источник [%s] нет ссылки в тексте",
		missingLabel: "Источник [%s] упоминается в тексте, но отсутствует в списке литературы",
	}
)

// firstSeen returns ids in order of first appearance and the first mark of
// each id.
func firstSeen(marks []doctree.Mark) ([]string, map[string]doctree.Mark) {
	var order []string
	first := make(map[string]doctree.Mark, len(marks))
	for _, m := range marks {
		if _, ok := first[m.ID]; ok {
			continue
		}
		first[m.ID] = m
		order = append(order, m.ID)
	}
	return order, first
}

// crossCheck reports the symmetric difference of declared and referenced
// ids. skip suppresses the missing-reference message for an id.
func (st *state) crossCheck(kind refKind, labels, refs []doctree.Mark, skip func(id string) bool) {
	labelIDs, labelSet := firstSeen(labels)
	refIDs, refSet := firstSeen(refs)
	for _, id := range labelIDs {
		if _, ok := refSet[id]; ok {
			continue
		}
		if skip != nil && skip(id) {
			continue
		}
		st.errs.Addf(kind.missingRef, id)
	}
	for _, id := range refIDs {
		if _, ok := labelSet[id]; !ok {
			st.errs.Addf(kind.missingLabel, id)
		}
	}
}

// checkDistance requires the first reference to come before its label and
// no more than MaxRefDistance characters before it.
func (st *state) checkDistance(kind refKind, labels, refs []doctree.Mark) {
	labelIDs, labelSet := firstSeen(labels)
	_, refSet := firstSeen(refs)
	for _, id := range labelIDs {
		ref, ok := refSet[id]
		if !ok {
			continue
		}
		label := labelSet[id]
		switch {
		case ref.Offset > label.Offset:
			st.errs.Addf(kind.beforeRef, id)
		case label.Offset-ref.Offset > MaxRefDistance:
			st.errs.Addf(kind.tooFar, id)
		}
	}
}

func checkPictures(st *state) {
	p := st.model.Pictures
	st.crossCheck(pictureKind, p.Labels, p.Refs, nil)
	if st.model.Format == doctree.FormatLaTeX {
		st.checkDistance(pictureKind, p.Labels, p.Refs)
	}
}

func checkTables(st *state) {
	t := st.model.Tables
	st.crossCheck(tableKind, t.Labels, t.Refs, nil)
	if st.model.Format != doctree.FormatLaTeX {
		return
	}
	st.checkDistance(tableKind, t.Labels, t.Refs)
	lt := st.model.LongTables
	st.crossCheck(longtableKind, lt.Labels, lt.Refs, nil)
	st.checkDistance(longtableKind, lt.Labels, lt.Refs)
}

// checkAppendices matches appendix titles with in-text links. An appendix
// inserted as a PDF needs no link.
func checkAppendices(st *state) {
	a := st.model.Appendices
	st.crossCheck(appendixKind, a.Titles, a.Links, func(id string) bool {
		return a.PDFIncluded[id]
	})
}

func checkBibliography(st *state) {
	b := st.model.Bibliography
	items := make([]doctree.Mark, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, doctree.Mark{ID: it.Key, Raw: it.Content, Offset: it.Offset})
	}
	st.crossCheck(bibliographyKind, items, b.Citations, nil)
}
