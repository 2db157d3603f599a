package doctree

import "sort"

// Summary is the short structural overview returned next to check results.
type Summary struct {
	Chapters          []string       `json:"chapters"`
	SectionsByChapter map[string]int `json:"sections_by_chapter"`
	Pictures          int            `json:"pictures"`
	Tables            int            `json:"tables"`
	Appendices        []string       `json:"appendices"`
	BibliographyItems int            `json:"bibliography_items"`
	Citations         int            `json:"citations"`
	Lists             int            `json:"lists"`
	IntroKeywords     []string       `json:"introduction_keywords"`
}

// Summarize builds a Summary of m. Chapters are listed in document order.
func Summarize(m *Model) Summary {
	s := Summary{
		Chapters:          []string{},
		SectionsByChapter: make(map[string]int),
		Appendices:        []string{},
		IntroKeywords:     []string{},
	}
	if m == nil {
		return s
	}

	chapters := m.Chapters()
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Offset < chapters[j].Offset })
	for _, c := range chapters {
		name := c.Title
		if c.Number != "" {
			name = c.Number + " " + c.Title
		}
		s.Chapters = append(s.Chapters, name)
	}
	for key, secs := range m.Sections {
		if key == Unattached {
			key = "-"
		}
		s.SectionsByChapter[key] = len(secs)
	}

	s.Pictures = len(m.Pictures.Labels)
	s.Tables = len(m.Tables.Labels) + len(m.LongTables.Labels)
	for _, a := range m.Appendices.Titles {
		s.Appendices = append(s.Appendices, a.ID)
	}
	s.BibliographyItems = len(m.Bibliography.Items)
	s.Citations = len(m.Bibliography.Citations)
	s.Lists = len(m.Lists)
	s.IntroKeywords = append(s.IntroKeywords, m.IntroKeywords...)
	return s
}
