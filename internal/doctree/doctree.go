package doctree

// DocTree is the root of the annotated paragraph tree of a DOCX document.
// Chapters are container nodes; their paragraphs are children.
type DocTree struct {
	Title    string     // Document title (from the filename)
	Children []*DocNode // Top-level nodes in document order
}

// DocNode is a recursive node carrying a paragraph text and its style annotations.
type DocNode struct {
	Title    string     // Heading text (empty for body paragraphs)
	Text     string     // Paragraph text
	Index    int        // Paragraph index in the source document
	Style    *Style     // Style of the first run, nil if unknown
	Children []*DocNode // Paragraphs owned by this heading
}

// Style holds the formatting attributes recorded for a classified paragraph.
type Style struct {
	FontName    string  `json:"font_name,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"` // points, 0 if unknown
	Color       string  `json:"color,omitempty"`     // RGB hex, empty if absent
	Bold        bool    `json:"bold"`
	Italic      bool    `json:"italic"`
	Underline   bool    `json:"underline"`
	AllCaps     bool    `json:"all_caps"`
	Alignment   string  `json:"alignment,omitempty"`
	LeftIndent  int     `json:"left_indent,omitempty"`  // twips
	LineSpacing int     `json:"line_spacing,omitempty"` // 240ths of a line
	StyleName   string  `json:"style_name,omitempty"`
}

// Walk visits nodes depth-first. Returning false from fn skips the node's children.
func Walk(nodes []*DocNode, fn func(*DocNode) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}
