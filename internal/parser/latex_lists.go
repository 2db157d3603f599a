package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/normcontrol/internal/doctree"
)

// ListEnvironments are the enumeration environments scanned for lists.
var ListEnvironments = []string{"itemize", "enumerate", "description"}

var (
	listTokenRe = regexp.MustCompile(`\\(begin|end)\s*\{(itemize|enumerate|description)\}|\\item(?:\s*\[[^\]]*\])?`)
	blankLineRe = regexp.MustCompile(`\n[ \t\r]*\n`)
	sentenceEnd = regexp.MustCompile(`[.?!:]\s+`)
	breakCmdRe  = regexp.MustCompile(`\\(?:end|begin)\s*\{[^}]*\}|\\(?:chapter|section|subsection)\*?\s*\{[^}]*\}`)
)

type listToken struct {
	start, end int
	kind       string // "begin", "end" or "item"
}

func listTokens(text string) []listToken {
	var out []listToken
	for _, loc := range listTokenRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[2] < 0 {
			// \item must not continue as a longer command name (\itemsep).
			if loc[1] < len(text) && isASCIILetter(text[loc[1]]) && text[loc[1]-1] != ']' {
				continue
			}
			out = append(out, listToken{loc[0], loc[1], "item"})
			continue
		}
		out = append(out, listToken{loc[0], loc[1], text[loc[2]:loc[3]]})
	}
	return out
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// extractLists finds top-level list blocks. The three environments share one
// stack, so nesting of any of them counts.
func extractLists(src *texSource) []doctree.List {
	text := src.text
	var lists []doctree.List
	depth, blockStart, innerStart := 0, -1, -1
	prevEnd := 0
	for _, tok := range listTokens(text) {
		switch tok.kind {
		case "begin":
			if depth == 0 {
				blockStart, innerStart = tok.start, tok.end
			}
			depth++
		case "end":
			if depth == 0 {
				continue
			}
			depth--
			if depth > 0 {
				continue
			}
			items := parseItems(text[innerStart:tok.start])
			nested := false
			for _, it := range items {
				if len(it.Children) > 0 {
					nested = true
				}
			}
			lists = append(lists, doctree.List{
				Intro:  introFragment(text[prevEnd:blockStart]),
				Items:  items,
				Nested: nested,
				Raw:    text[blockStart:tok.end],
				Offset: src.pos(blockStart),
			})
			prevEnd = tok.end
		}
	}
	return lists
}

// parseItems splits list content into top-level \item entries; nested
// environments become the children of the item containing them.
func parseItems(content string) []doctree.ListItem {
	var items []doctree.ListItem
	depth, itemStart := 0, -1
	for _, tok := range listTokens(content) {
		switch tok.kind {
		case "begin":
			depth++
		case "end":
			depth--
		case "item":
			if depth != 0 {
				continue
			}
			if itemStart >= 0 {
				items = append(items, makeItem(content[itemStart:tok.start]))
			}
			itemStart = tok.end
		}
	}
	if itemStart >= 0 {
		items = append(items, makeItem(content[itemStart:]))
	}
	return items
}

func makeItem(body string) doctree.ListItem {
	var text strings.Builder
	var children []doctree.ListItem
	depth, last, innerStart := 0, 0, 0
	for _, tok := range listTokens(body) {
		switch tok.kind {
		case "begin":
			if depth == 0 {
				text.WriteString(body[last:tok.start])
				innerStart = tok.end
			}
			depth++
		case "end":
			depth--
			if depth == 0 {
				children = append(children, parseItems(body[innerStart:tok.start])...)
				last = tok.end
			}
		}
	}
	if depth == 0 {
		text.WriteString(body[last:])
	}
	return doctree.ListItem{Text: strings.TrimSpace(spaceRunRe.ReplaceAllString(text.String(), " ")), Children: children}
}

// introFragment returns the sentence-like fragment closest to the end of
// pre: the text after the last blank line, structural command or sentence
// terminator.
func introFragment(pre string) string {
	if locs := blankLineRe.FindAllStringIndex(pre, -1); len(locs) > 0 {
		pre = pre[locs[len(locs)-1][1]:]
	}
	if locs := breakCmdRe.FindAllStringIndex(pre, -1); len(locs) > 0 {
		last := locs[len(locs)-1]
		if strings.TrimSpace(pre[last[1]:]) != "" {
			pre = pre[last[1]:]
		}
	}
	pre = strings.TrimSpace(pre)
	if locs := sentenceEnd.FindAllStringIndex(pre, -1); len(locs) > 0 {
		pre = pre[locs[len(locs)-1][1]:]
	}
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(pre, " "))
}
