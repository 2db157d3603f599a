package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/normcontrol/internal/doctree"
)

const (
	kindFigure    = "figure"
	kindTable     = "table"
	kindLongTable = "longtable"
	kindAppendix  = "appendix"
)

// Figure/table numbers look like "3" or "2.1"; appendices use a Cyrillic
// capital letter, or a list of them such as "А и Б" or "А, Б".
const (
	numberPattern = `(\d+(?:\.\d+)?)`
	letterPattern = `([А-ЯЁ](?:(?:\s*,\s*|\s+и\s+)[А-ЯЁ])*)(?:[^\p{L}]|$)`
)

// refPattern is one alternative of an in-text reference; group 1 holds the
// number or letter.
type refPattern struct {
	kind string
	re   *regexp.Regexp
}

var figureRefPatterns = []refPattern{
	{kindFigure, regexp.MustCompile(`\(\s*(?i:см\.)?\s*(?i:рис\.)\s*` + numberPattern + `\s*\)`)},
	{kindFigure, regexp.MustCompile(`(?i:на\s+рис(?:унке|\.))\s*` + numberPattern)},
	{kindFigure, regexp.MustCompile(`(?i:(?:см\.|смотри)\s+рис(?:унок|\.))\s*` + numberPattern)},
}

var tableRefPatterns = []refPattern{
	{kindTable, regexp.MustCompile(`\(\s*(?i:см\.)?\s*(?i:табл\.)\s*` + numberPattern + `\s*\)`)},
	{kindTable, regexp.MustCompile(`(?i:в\s+табл(?:ице|\.))\s*` + numberPattern)},
	{kindTable, regexp.MustCompile(`(?i:(?:см\.|смотри)\s+табл(?:ицу|\.))\s*` + numberPattern)},
}

var appendixRefPatterns = []refPattern{
	{kindAppendix, regexp.MustCompile(`\(\s*(?i:см\.)?\s*(?i:прил(?:\.|ожени[еия]))\s*` + letterPattern)},
	{kindAppendix, regexp.MustCompile(`(?i:в\s+приложени(?:и|ях))\s+` + letterPattern)},
	{kindAppendix, regexp.MustCompile(`(?i:(?:см\.|смотри)\s+приложение)\s+` + letterPattern)},
	{kindAppendix, regexp.MustCompile(`(?i:приведен[аоы]?\s+в\s+приложении)\s+` + letterPattern)},
}

// findRefs applies every pattern to text and returns one Mark per match,
// ordered by position. offset is added to the match start when absolute
// is set; otherwise every mark carries offset itself (DOCX paragraph index).
func findRefs(patterns []refPattern, text string, offset int, absolute bool) []doctree.Mark {
	type hit struct {
		start int
		mark  doctree.Mark
	}
	var hits []hit
	taken := map[int]bool{}
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if taken[loc[2]] {
				continue
			}
			taken[loc[2]] = true
			pos := offset
			if absolute {
				pos = offset + loc[0]
			}
			raw := strings.TrimSpace(text[loc[0]:loc[1]])
			for _, id := range refIDs(p.kind, text[loc[2]:loc[3]]) {
				hits = append(hits, hit{
					start: loc[0],
					mark:  doctree.Mark{ID: id, Raw: raw, Offset: pos, Kind: p.kind},
				})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].start < hits[j].start })
	out := make([]doctree.Mark, len(hits))
	for i, h := range hits {
		out[i] = h.mark
	}
	return out
}

// refIDs splits an appendix letter list into single letters.
func refIDs(kind, group string) []string {
	if kind != kindAppendix {
		return []string{group}
	}
	var ids []string
	for _, r := range group {
		if unicode.IsUpper(r) {
			ids = append(ids, string(r))
		}
	}
	return ids
}

var citationRe = regexp.MustCompile(`\[(\d+(?:\s*[-–—,]\s*\d+)*)(?:\s*,\s*[сcСC]\.\s*\d+(?:\s*[-–—]\s*\d+)?)?\]`)

// maxCitationRange bounds range expansion of markers like [2–4].
const maxCitationRange = 100

// findCitations returns one Mark per cited number in bracket markers such
// as [1], [1, 3], [2–4] or [5, с. 12].
func findCitations(text string, offset int) []doctree.Mark {
	var out []doctree.Mark
	for _, m := range citationRe.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lo, hi, isRange := splitRange(part)
			if !isRange {
				out = append(out, doctree.Mark{ID: part, Raw: m[0], Offset: offset})
				continue
			}
			if hi < lo || hi-lo > maxCitationRange {
				out = append(out, doctree.Mark{ID: strconv.Itoa(lo), Raw: m[0], Offset: offset})
				continue
			}
			for n := lo; n <= hi; n++ {
				out = append(out, doctree.Mark{ID: strconv.Itoa(n), Raw: m[0], Offset: offset})
			}
		}
	}
	return out
}

func splitRange(part string) (lo, hi int, ok bool) {
	i := strings.IndexAny(part, "-–—")
	if i < 0 {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(part[:i]))
	_, size := utf8.DecodeRuneInString(part[i:])
	b, errB := strconv.Atoi(strings.TrimSpace(part[i+size:]))
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}
