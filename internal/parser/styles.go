package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// styleDef is one <w:style> entry of word/styles.xml.
type styleDef struct {
	ID      string
	Name    string
	BasedOn string
	Size    float64 // points, 0 when the style sets none
	Font    string
}

// styleSheet resolves paragraph style names and inherited run attributes.
type styleSheet struct {
	byID             map[string]styleDef
	defaultSize      float64
	defaultFont      string
	defaultParagraph string
}

func emptyStyleSheet() *styleSheet {
	return &styleSheet{byID: map[string]styleDef{}}
}

// loadStyles reads word/styles.xml from the DOCX archive. A document
// without a styles part yields an empty sheet.
func loadStyles(data []byte) (*styleSheet, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/styles.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return emptyStyleSheet(), nil
	}
	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open styles.xml: %w", err)
	}
	defer rc.Close()

	doc, err := xmlquery.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("parse styles.xml: %w", err)
	}

	sheet := emptyStyleSheet()
	if rPr := xmlquery.FindOne(doc, "//*[local-name()='rPrDefault']/*[local-name()='rPr']"); rPr != nil {
		sheet.defaultSize = halfPoints(attr(child(rPr, "sz"), "val"))
		sheet.defaultFont = attr(child(rPr, "rFonts"), "ascii")
	}

	for _, n := range xmlquery.Find(doc, "//*[local-name()='style']") {
		def := styleDef{
			ID:      attr(n, "styleId"),
			Name:    attr(child(n, "name"), "val"),
			BasedOn: attr(child(n, "basedOn"), "val"),
		}
		if def.ID == "" {
			continue
		}
		if rPr := child(n, "rPr"); rPr != nil {
			def.Size = halfPoints(attr(child(rPr, "sz"), "val"))
			def.Font = attr(child(rPr, "rFonts"), "ascii")
		}
		if attr(n, "type") == "paragraph" && attr(n, "default") == "1" {
			sheet.defaultParagraph = def.ID
		}
		sheet.byID[def.ID] = def
	}
	return sheet, nil
}

// Name returns the display name of a style id, or the id itself.
func (s *styleSheet) Name(id string) string {
	if def, ok := s.byID[id]; ok && def.Name != "" {
		return def.Name
	}
	return id
}

// Size returns the font size in points a paragraph of style id inherits.
func (s *styleSheet) Size(id string) float64 {
	if id == "" {
		id = s.defaultParagraph
	}
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		def, ok := s.byID[id]
		if !ok {
			break
		}
		if def.Size > 0 {
			return def.Size
		}
		id = def.BasedOn
	}
	return s.defaultSize
}

// Font returns the ASCII font name a paragraph of style id inherits.
func (s *styleSheet) Font(id string) string {
	if id == "" {
		id = s.defaultParagraph
	}
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		def, ok := s.byID[id]
		if !ok {
			break
		}
		if def.Font != "" {
			return def.Font
		}
		id = def.BasedOn
	}
	return s.defaultFont
}

// IsHeading reports whether style id names a heading or title style, in
// English or Russian Word locales.
func (s *styleSheet) IsHeading(id string) bool {
	if id == "" {
		return false
	}
	for _, name := range []string{id, s.Name(id)} {
		lower := strings.ToLower(name)
		for _, prefix := range headingStylePrefixes {
			if strings.HasPrefix(lower, prefix) {
				return true
			}
		}
	}
	return false
}

var headingStylePrefixes = []string{"heading", "заголовок", "title"}

func child(n *xmlquery.Node, local string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

func attr(n *xmlquery.Node, local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// halfPoints converts a w:sz value to points.
func halfPoints(v string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n / 2
}
