package rules

import (
	"fmt"
	"strings"
)

// DocType is a document type with its own rule file.
type DocType string

const (
	Diploma        DocType = "diploma"
	CourseWork     DocType = "course_work"
	PracticeReport DocType = "practice_report"
)

var docTypes = []DocType{Diploma, CourseWork, PracticeReport}

// AllDocTypes returns every known document type in declaration order.
func AllDocTypes() []DocType {
	out := make([]DocType, len(docTypes))
	copy(out, docTypes)
	return out
}

// ParseDocType resolves a case-insensitive document type name.
func ParseDocType(s string) (DocType, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, dt := range docTypes {
		if string(dt) == want {
			return dt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDocType, s)
}

// Option is a {name, value} pair listed by the options endpoints.
type Option struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DocTypes lists document types as options, e.g. {"DIPLOMA", 1}.
func DocTypes() []Option {
	out := make([]Option, 0, len(docTypes))
	for i, dt := range docTypes {
		out = append(out, Option{Name: strings.ToUpper(string(dt)), Value: i + 1})
	}
	return out
}

// RuleType is a category of checks.
type RuleType int

const (
	RuleCommon RuleType = iota + 1
	RuleStructure
	RuleIntroKeywords
	RuleChapter
	RuleSection
	RulePicture
	RuleTable
	RuleList
	RuleFormula
	RuleBibliography
	RuleApplication
	RuleQuotes
)

var ruleTypeNames = map[RuleType]string{
	RuleCommon:        "COMMON",
	RuleStructure:     "STRUCTURE",
	RuleIntroKeywords: "INTRO_KEYWORDS",
	RuleChapter:       "CHAPTER",
	RuleSection:       "SECTION",
	RulePicture:       "PICTURE",
	RuleTable:         "TABLE",
	RuleList:          "LIST",
	RuleFormula:       "FORMULA",
	RuleBibliography:  "BIBLIOGRAPHY",
	RuleApplication:   "APPLICATION",
	RuleQuotes:        "QUOTES",
}

func (t RuleType) String() string {
	if n, ok := ruleTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("RuleType(%d)", int(t))
}

// RuleTypes lists rule categories as options in numeric order.
func RuleTypes() []Option {
	out := make([]Option, 0, len(ruleTypeNames))
	for t := RuleCommon; t <= RuleQuotes; t++ {
		out = append(out, Option{Name: t.String(), Value: int(t)})
	}
	return out
}
