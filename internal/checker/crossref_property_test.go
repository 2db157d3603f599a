//go:build property

package checker

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/violation"
)

func numberedMarks(nums []int) []doctree.Mark {
	out := make([]doctree.Mark, 0, len(nums))
	for i, n := range nums {
		out = append(out, doctree.Mark{ID: "n" + strconv.Itoa(n), Offset: i})
	}
	return out
}

func TestCrossRefProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2468)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("violations equal the symmetric difference", prop.ForAll(
		func(labels, refs []int) bool {
			m := doctree.NewModel(doctree.FormatDOCX)
			m.Pictures = doctree.CrossRefs{Labels: numberedMarks(labels), Refs: numberedMarks(refs)}
			res := New(&rules.RuleSet{}, nil).Check(Input{Model: m, Errors: violation.New()})

			inLabels := map[string]bool{}
			for _, l := range m.Pictures.Labels {
				inLabels[l.ID] = true
			}
			inRefs := map[string]bool{}
			for _, r := range m.Pictures.Refs {
				inRefs[r.ID] = true
			}
			want := 0
			for id := range inLabels {
				if !inRefs[id] {
					want++
				}
			}
			for id := range inRefs {
				if !inLabels[id] {
					want++
				}
			}
			if len(res.Errors) != want {
				return false
			}
			for _, e := range res.Errors {
				for id := range inLabels {
					if inRefs[id] && strings.Contains(e, " "+id+" ") {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 20)),
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.Property("distance flag is inclusive at the threshold", prop.ForAll(
		func(ref, gap int) bool {
			m := doctree.NewModel(doctree.FormatLaTeX)
			m.Pictures = doctree.CrossRefs{
				Labels: []doctree.Mark{{ID: "fig:x", Offset: ref + gap}},
				Refs:   []doctree.Mark{{ID: "fig:x", Offset: ref}},
			}
			res := New(&rules.RuleSet{}, nil).Check(Input{Model: m, Errors: violation.New()})
			return (len(res.Errors) == 1) == (gap > MaxRefDistance)
		},
		gen.IntRange(0, 100000),
		gen.IntRange(0, 4000),
	))

	properties.TestingRun(t)
}
