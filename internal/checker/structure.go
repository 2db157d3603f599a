package checker

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/normcontrol/internal/doctree"
)

const (
	msgMissingChapter = "Отсутствует обязательная глава «%s»"
	msgMissingSection = "В главе %s отсутствует обязательный раздел «%s»"
	msgMissingKeyword = "Во введении не выделено ключевое слово «%s»"
)

// checkStructure verifies required chapters and per-chapter sections by
// case-insensitive substring containment.
func checkStructure(st *state) {
	chapters := st.model.Chapters()
	for _, name := range st.rules.Structure.RequiredChapters {
		if !containsTitle(chapters, name) {
			st.errs.Addf(msgMissingChapter, name)
		}
	}

	required := st.rules.Structure.RequiredSections
	for _, n := range sortedChapterNumbers(required) {
		sections := st.model.Sections[chapterKey(n)]
		for _, name := range required[n] {
			if !containsTitle(sections, name) {
				st.errs.Addf(msgMissingSection, n, name)
			}
		}
	}
}

func containsTitle(headings []doctree.Heading, name string) bool {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return true
	}
	for _, h := range headings {
		if strings.Contains(strings.ToLower(h.Title), want) {
			return true
		}
	}
	return false
}

func chapterKey(n string) string {
	if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
		return doctree.ChapterKey(i)
	}
	return strings.TrimSpace(n)
}

// sortedChapterNumbers orders chapter keys numerically, non-numeric last.
func sortedChapterNumbers(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(strings.TrimSpace(keys[i]))
		b, errB := strconv.Atoi(strings.TrimSpace(keys[j]))
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// checkIntroKeywords requires every configured keyword inside one of the
// bold introduction phrases. Trailing colons are ignored on both sides.
func checkIntroKeywords(st *state) {
	if !st.model.IntroFound {
		return
	}
	phrases := make([]string, 0, len(st.model.IntroKeywords))
	for _, p := range st.model.IntroKeywords {
		phrases = append(phrases, normalizeKeyword(p))
	}
	for _, kw := range st.rules.Structure.IntroductionKeywords {
		want := normalizeKeyword(kw)
		if want == "" {
			continue
		}
		found := false
		for _, p := range phrases {
			if strings.Contains(p, want) {
				found = true
				break
			}
		}
		if !found {
			st.errs.Addf(msgMissingKeyword, strings.TrimSuffix(strings.TrimSpace(kw), ":"))
		}
	}
}

func normalizeKeyword(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ":"))
}
