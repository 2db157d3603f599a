package rules

import (
	"strconv"
	"strings"
)

// RuleSet is the typed view of one document type's rule file.
type RuleSet struct {
	Structure     StructureRules `json:"structure_rules"`
	Common        CommonRules    `json:"common_rules"`
	IgnoredErrors []string       `json:"ignored_errors,omitempty"`
}

// StructureRules lists required chapters, sections and intro keywords.
type StructureRules struct {
	RequiredChapters []string `json:"required_chapters"`
	// RequiredSections maps a chapter number ("1") to section names.
	RequiredSections     map[string][]string `json:"required_sections"`
	IntroductionKeywords []string            `json:"introduction_keywords"`
}

// CommonRules holds document-wide formatting expectations.
type CommonRules struct {
	FontSize    float64  `json:"font_size,omitempty"`
	FontName    string   `json:"font_name,omitempty"`
	LineSpacing float64  `json:"line_spacing,omitempty"`
	Margins     *Margins `json:"margins,omitempty"`
}

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// FontSizeString returns the expected font size formatted for comparison,
// e.g. "14" or "12.5". It is empty when no size is configured.
func (c CommonRules) FontSizeString() string {
	if c.FontSize <= 0 {
		return ""
	}
	return FormatSize(c.FontSize)
}

// FormatSize formats a point size without trailing zeros.
func FormatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SectionsFor returns the required sections of chapter n ("1", "2", ...).
func (s StructureRules) SectionsFor(chapter string) []string {
	return s.RequiredSections[strings.TrimSpace(chapter)]
}
