//go:build property

package violation

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestListProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("adding a message twice keeps one entry", prop.ForAll(
		func(msg string) bool {
			if len(msg) == 0 {
				return true
			}
			l := New()
			l.Add("x" + msg)
			l.Add("x" + msg)
			return l.Len() == 1
		},
		gen.AlphaString(),
	))

	properties.Property("distinct messages keep insertion order", prop.ForAll(
		func(msgs []string) bool {
			l := New()
			var want []string
			seen := map[string]bool{}
			for _, m := range msgs {
				m = "m" + m
				if !seen[m] {
					seen[m] = true
					want = append(want, m)
				}
				l.Add(m)
			}
			got := l.Items()
			if len(got) != len(want) {
				return false
			}
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
