// Package checker runs the rule checks against an extracted document model.
package checker

import (
	"log/slog"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/violation"
)

// Result is the outcome of one document check.
type Result struct {
	Valid  bool            `json:"valid"`
	Errors []string        `json:"errors"`
	Found  doctree.Summary `json:"found"`
}

// Input is everything a check reads. Errors may already hold violations
// recorded by the parser; checks append to it.
type Input struct {
	Model  *doctree.Model
	Errors *violation.List

	// Sty and ReferenceSty enable style-file conformance for LaTeX.
	Sty          []byte
	ReferenceSty []byte
}

// Checker checks models against one rule set. It holds no per-check state
// and may be shared.
type Checker struct {
	rules *rules.RuleSet
	log   *slog.Logger
}

// New returns a Checker for rs.
func New(rs *rules.RuleSet, log *slog.Logger) *Checker {
	if rs == nil {
		rs = &rules.RuleSet{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Checker{rules: rs, log: log}
}

type check struct {
	name string
	run  func(*state)
}

// The DOCX and LaTeX variants differ only in the checks they wire.
var (
	docxChecks = []check{
		{"structure", checkStructure},
		{"intro_keywords", checkIntroKeywords},
		{"lists", checkLists},
		{"pictures", checkPictures},
		{"tables", checkTables},
		{"appendices", checkAppendices},
		{"bibliography", checkBibliography},
		{"fonts", checkFonts},
		{"margins", checkMargins},
	}
	latexChecks = []check{
		{"structure", checkStructure},
		{"intro_keywords", checkIntroKeywords},
		{"lists", checkLists},
		{"pictures", checkPictures},
		{"tables", checkTables},
		{"appendices", checkAppendices},
		{"bibliography", checkBibliography},
		{"sty", checkSty},
	}
)

// CheckNames returns the ordered check names wired for a format.
func CheckNames(format doctree.Format) []string {
	var names []string
	for _, c := range checksFor(format) {
		names = append(names, c.name)
	}
	return names
}

func checksFor(format doctree.Format) []check {
	if format == doctree.FormatLaTeX {
		return latexChecks
	}
	return docxChecks
}

// state is the per-call view shared by the checks of one run.
type state struct {
	rules *rules.RuleSet
	model *doctree.Model
	errs  *violation.List
	in    Input
	log   *slog.Logger
}

// Check runs every check for the model's format in fixed order. A check
// never stops the ones after it.
func (c *Checker) Check(in Input) Result {
	errs := in.Errors
	if errs == nil {
		errs = violation.New()
	}
	m := in.Model
	if m == nil {
		m = doctree.NewModel(doctree.FormatDOCX)
	}
	st := &state{rules: c.rules, model: m, errs: errs, in: in, log: c.log}

	for _, ck := range checksFor(m.Format) {
		before := errs.Len()
		ck.run(st)
		if added := errs.Len() - before; added > 0 {
			c.log.Debug("check found violations", "check", ck.name, "count", added)
		}
	}

	return Result{
		Valid:  errs.Empty(),
		Errors: errs.Items(),
		Found:  doctree.Summarize(m),
	}
}

// Failure returns the result reported for a document that could not be read.
func Failure(msg string) Result {
	return Result{
		Valid:  false,
		Errors: []string{msg},
		Found:  doctree.Summarize(nil),
	}
}
