package doctree

import "fmt"

// Unattached is the section key used when no chapter precedes a section.
const Unattached = ""

// Format identifies the source format of a parsed document.
type Format string

const (
	FormatDOCX  Format = "docx"
	FormatLaTeX Format = "latex"
)

// ChapterKey returns the lookup key of the numbered chapter n, e.g. "2 глава".
func ChapterKey(n int) string {
	return fmt.Sprintf("%d глава", n)
}

// Heading is a chapter or section title record.
type Heading struct {
	Number string `json:"number,omitempty"` // "2" or "2.1"; empty when unnumbered
	Title  string `json:"title"`
	Key    string `json:"key,omitempty"` // chapter lookup key or synthesized section name
	Offset int    `json:"offset"`        // character offset (LaTeX) or paragraph index (DOCX)
	Style  *Style `json:"style,omitempty"`
}

// Mark is a caption/label declaration or an in-text reference to one.
type Mark struct {
	ID     string `json:"id"`              // figure/table number, label name or appendix letter
	Title  string `json:"title,omitempty"` // caption title, when known
	Raw    string `json:"raw"`
	Offset int    `json:"offset"`
	Kind   string `json:"kind,omitempty"` // "figure", "table", "longtable", "appendix"
}

// CrossRefs pairs declarations with their references.
type CrossRefs struct {
	Labels []Mark `json:"labels"`
	Refs   []Mark `json:"refs"`
}

// Appendices holds appendix titles and in-text appendix links.
type Appendices struct {
	Titles      []Mark          `json:"titles"`
	Links       []Mark          `json:"links"`
	PDFIncluded map[string]bool `json:"pdf_included,omitempty"`
}

// BibItem is a single bibliography entry.
type BibItem struct {
	Key     string `json:"key"`
	Content string `json:"content"`
	Offset  int    `json:"offset"`
}

// Bibliography holds entries and the citations found in body text.
type Bibliography struct {
	Items     []BibItem `json:"items"`
	Citations []Mark    `json:"citations"`
}

// ListItem is one item of a list, possibly with nested items.
type ListItem struct {
	Text     string     `json:"text"`
	Children []ListItem `json:"children,omitempty"`
}

// List is a raw list block together with the fragment introducing it.
type List struct {
	Intro  string     `json:"intro"`
	Items  []ListItem `json:"items"`
	Nested bool       `json:"nested"`
	Raw    string     `json:"raw,omitempty"`
	Offset int        `json:"offset"`
}

// Model is the structural model extracted from one document. It is rebuilt
// on every parse and owned by a single check.
type Model struct {
	Format Format `json:"format"`

	NumberedChapters   []Heading `json:"numbered_chapters"`
	UnnumberedChapters []Heading `json:"unnumbered_chapters"`

	// Sections, keyed by owning chapter key (Unattached when none precedes).
	Sections           map[string][]Heading `json:"sections"`
	NumberedSections   map[string][]Heading `json:"numbered_sections"`
	UnnumberedSections map[string][]Heading `json:"unnumbered_sections"`

	IntroFound    bool     `json:"intro_found"`
	IntroKeywords []string `json:"introduction_bold_words"`

	Pictures   CrossRefs `json:"pictures"`
	Tables     CrossRefs `json:"tables"`
	LongTables CrossRefs `json:"longtables"`

	Appendices   Appendices   `json:"appendices"`
	Bibliography Bibliography `json:"bibliography"`
	Lists        []List       `json:"lists"`

	// PageMargins come from the last section properties (DOCX only).
	PageMargins *Margins `json:"page_margins,omitempty"`

	// Tree is the annotated paragraph tree (DOCX only).
	Tree *DocTree `json:"-"`
}

// Margins are page margins in twips.
type Margins struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// NewModel returns an empty model with initialized maps.
func NewModel(format Format) *Model {
	return &Model{
		Format:             format,
		Sections:           make(map[string][]Heading),
		NumberedSections:   make(map[string][]Heading),
		UnnumberedSections: make(map[string][]Heading),
		Appendices:         Appendices{PDFIncluded: make(map[string]bool)},
	}
}

// AddSection attaches s to the chapter key, recording it in the combined
// map and in the numbered or unnumbered map.
func (m *Model) AddSection(chapterKey string, s Heading) {
	m.Sections[chapterKey] = append(m.Sections[chapterKey], s)
	if s.Number != "" {
		m.NumberedSections[chapterKey] = append(m.NumberedSections[chapterKey], s)
	} else {
		m.UnnumberedSections[chapterKey] = append(m.UnnumberedSections[chapterKey], s)
	}
}

// Chapters returns numbered then unnumbered chapters.
func (m *Model) Chapters() []Heading {
	out := make([]Heading, 0, len(m.NumberedChapters)+len(m.UnnumberedChapters))
	out = append(out, m.NumberedChapters...)
	return append(out, m.UnnumberedChapters...)
}

// AddIntroKeyword records a bold introduction phrase once.
func (m *Model) AddIntroKeyword(phrase string) {
	if phrase == "" {
		return
	}
	for _, k := range m.IntroKeywords {
		if k == phrase {
			return
		}
	}
	m.IntroKeywords = append(m.IntroKeywords, phrase)
}
