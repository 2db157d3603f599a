package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind is the structural role of a paragraph.
type Kind int

const (
	BodyText Kind = iota
	NumberedChapter
	NumberedSection
	UnnumberedChapter
	UnnumberedSection
)

func (k Kind) String() string {
	switch k {
	case NumberedChapter:
		return "numbered_chapter"
	case NumberedSection:
		return "numbered_section"
	case UnnumberedChapter:
		return "unnumbered_chapter"
	case UnnumberedSection:
		return "unnumbered_section"
	}
	return "body_text"
}

// Classification is the result of ClassifyParagraph.
type Classification struct {
	Kind    Kind
	Number  string // "2" for chapters, "2.1" for sections
	Chapter string // owning chapter number of a numbered section
	Title   string
}

var (
	numberedSectionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.?\s+(\S.*)$`)
	numberedChapterRe = regexp.MustCompile(`^(\d+)\s+(\S.*)$`)
)

// sectionMarkers are phrases that make a paragraph an unnumbered section
// of the current chapter.
var sectionMarkers = []string{
	"выводы по главе",
	"вывод по главе",
	"выводы по разделу",
}

// ClassifyParagraph assigns a structural role to trimmed paragraph text.
// Rules are tried in order: numbered section, numbered chapter, marker
// phrase, heading-case text. Everything else is body text.
func ClassifyParagraph(text string) Classification {
	text = strings.TrimSpace(text)
	if text == "" {
		return Classification{Kind: BodyText}
	}
	if m := numberedSectionRe.FindStringSubmatch(text); m != nil {
		return Classification{
			Kind:    NumberedSection,
			Number:  m[1] + "." + m[2],
			Chapter: m[1],
			Title:   strings.TrimSpace(m[3]),
		}
	}
	if m := numberedChapterRe.FindStringSubmatch(text); m != nil {
		return Classification{Kind: NumberedChapter, Number: m[1], Title: strings.TrimSpace(m[2])}
	}
	if IsSectionMarker(text) {
		return Classification{Kind: UnnumberedSection, Title: text}
	}
	if IsHeadingCase(text) {
		return Classification{Kind: UnnumberedChapter, Title: text}
	}
	return Classification{Kind: BodyText, Title: text}
}

// IsSectionMarker reports whether text contains a fixed section marker phrase.
func IsSectionMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range sectionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// IsHeadingCase reports whether text looks like an unnumbered heading: it
// has at least one letter, every letter is uppercase, it does not end in
// sentence punctuation and contains no dash. An all-caps body sentence
// without final punctuation is classified as a heading too.
func IsHeadingCase(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "-–—") {
		return false
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		return false
	}
	return IsUpper(text)
}

// IsUpper reports whether text has letters and none of them is lowercase.
func IsUpper(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
