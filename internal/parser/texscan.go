package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// StripComments removes LaTeX comments: a "%" preceded by an even run of
// backslashes, up to the end of its line. Line breaks are kept.
func StripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	slashes := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '%' && slashes%2 == 0:
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end - 1
			slashes = 0
			continue
		case c == '\\':
			slashes++
		default:
			slashes = 0
		}
		b.WriteByte(c)
	}
	return b.String()
}

// texSource is comment-stripped LaTeX text. Offsets reported to the model
// are character (rune) offsets into it.
type texSource struct {
	text   string
	runeAt []int
}

func newTexSource(text string) *texSource {
	s := &texSource{text: text, runeAt: make([]int, len(text)+1)}
	n := 0
	for i := range text {
		s.runeAt[i] = n
		n++
	}
	s.runeAt[len(text)] = n
	// continuation bytes of multi-byte runes map to their rune
	for i := 1; i < len(text); i++ {
		if !utf8.RuneStart(text[i]) {
			s.runeAt[i] = s.runeAt[i-1]
		}
	}
	return s
}

// pos converts a byte offset into a character offset.
func (s *texSource) pos(byteOff int) int {
	if byteOff < 0 {
		return 0
	}
	if byteOff > len(s.text) {
		byteOff = len(s.text)
	}
	return s.runeAt[byteOff]
}

// readGroup reads the brace group opening at text[open] and returns its
// content and the offset just past the closing brace. Escaped braces are
// ignored.
func readGroup(text string, open int) (string, int, bool) {
	if open >= len(text) || text[open] != '{' {
		return "", open, false
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[open+1 : i], i + 1, true
			}
		}
	}
	return "", open, false
}

// command is one occurrence of a LaTeX command with a mandatory argument.
type command struct {
	start, end int // byte span of the whole command
	starred    bool
	arg        string
}

// findCommands locates \name{...} and \name*{...}, skipping an optional
// [..] argument before the mandatory one.
func findCommands(text, name string) []command {
	re := commandRe(name)
	var out []command
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		arg, end, ok := readGroup(text, loc[1]-1)
		if !ok {
			continue
		}
		out = append(out, command{
			start:   loc[0],
			end:     end,
			starred: loc[3] > loc[2],
			arg:     arg,
		})
	}
	return out
}

var commandRes = map[string]*regexp.Regexp{}

func init() {
	for _, name := range []string{"chapter", "section", "includepdf", "label", "textbf", "bibitem", "addcontentsline", "myfigure", "cite"} {
		commandRes[name] = compileCommand(name)
	}
}

func commandRe(name string) *regexp.Regexp {
	if re, ok := commandRes[name]; ok {
		return re
	}
	return compileCommand(name)
}

func compileCommand(name string) *regexp.Regexp {
	return regexp.MustCompile(`\\` + regexp.QuoteMeta(name) + `(\*?)\s*(?:\[[^\]]*\])?\s*\{`)
}

// readArgs reads n consecutive brace groups starting at text[from],
// allowing whitespace between them.
func readArgs(text string, from, n int) ([]string, int, bool) {
	args := make([]string, 0, n)
	pos := from
	for len(args) < n {
		for pos < len(text) && (text[pos] == ' ' || text[pos] == '\n' || text[pos] == '\t' || text[pos] == '\r') {
			pos++
		}
		arg, end, ok := readGroup(text, pos)
		if !ok {
			return nil, from, false
		}
		args = append(args, arg)
		pos = end
	}
	return args, pos, true
}

var (
	styledCmdRe  = regexp.MustCompile(`\\(?:textbf|textit|textsl|textsc|texttt|textrm|emph|underline|uline)\s*\{`)
	styledGrpRe  = regexp.MustCompile(`\{\\(?:bfseries|itshape|mdseries|upshape|bf|it|em|sl|sc|tt)(?:\s+|\{\})`)
	leadSwitchRe = regexp.MustCompile(`^\\(?:bfseries|itshape|mdseries|upshape|bf|it|em|sl|sc|tt)(?:\s+|\{\})`)
	switchRe     = regexp.MustCompile(`\\(?:bfseries|itshape|bf|it|em|normalfont)(?:\s+|\{\}|$)`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// StripMarkup removes bold/italic/emphasis markup, keeping the text inside
// it, turns ties into spaces and collapses whitespace.
func StripMarkup(s string) string {
	for {
		loc := styledCmdRe.FindStringIndex(s)
		if loc == nil {
			break
		}
		inner, end, ok := readGroup(s, loc[1]-1)
		if !ok {
			s = s[:loc[0]] + s[loc[1]:]
			continue
		}
		s = s[:loc[0]] + inner + s[end:]
	}
	for {
		loc := styledGrpRe.FindStringIndex(s)
		if loc == nil {
			break
		}
		inner, end, ok := readGroup(s, loc[0])
		if !ok {
			s = s[:loc[0]] + s[loc[1]:]
			continue
		}
		s = s[:loc[0]] + leadSwitchRe.ReplaceAllString(inner, "") + s[end:]
	}
	s = switchRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "~", " ")
	s = strings.ReplaceAll(s, `\\`, " ")
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}
