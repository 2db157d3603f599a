package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/violation"
)

// Violations recorded while parsing LaTeX sources.
const (
	MsgTitleMissing        = `Не найден титульный лист (\includepdf)`
	MsgTOCMissing          = `Не найдено содержание (\tableofcontents)`
	MsgTitleBeforeDocument = `Титульный лист должен вставляться после \begin{document}`
	MsgTOCBeforeTitle      = `Содержание должно следовать за титульным листом`
	MsgBetweenTitleAndTOC  = `Между титульным листом и содержанием допускается только \setcounter{page}{2}`
	msgMissingContentsLine = `После \chapter*{%s} отсутствует \addcontentsline{toc}{chapter}{...}`
)

// Names folded into the unnumbered chapters when present.
const (
	TitlePageChapter = "ТИТУЛЬНЫЙ ЛИСТ"
	TOCChapter       = "СОДЕРЖАНИЕ"
)

// ContentsLineWindow is how many characters after \chapter*{...} may pass
// before the matching \addcontentsline.
const ContentsLineWindow = 100

// LaTeXParser handles .tex sources.
type LaTeXParser struct{}

func (p *LaTeXParser) Parse(data []byte, filename string, errs *violation.List) (*doctree.Model, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnreadable, filename)
	}
	ex := &latexExtractor{
		src:  newTexSource(StripComments(norm.NFC.String(string(data)))),
		m:    doctree.NewModel(doctree.FormatLaTeX),
		errs: errs,
	}
	ex.structure()
	ex.titleAndTOC()
	ex.contentsLines()
	ex.introKeywords()
	ex.m.Lists = extractLists(ex.src)
	ex.figures()
	ex.tables()
	ex.appendices()
	ex.bibliography()
	return ex.m, nil
}

type latexExtractor struct {
	src  *texSource
	m    *doctree.Model
	errs *violation.List

	chapters []latexChapter
}

type latexChapter struct {
	cmd     command
	key     string
	number  int // 0 when unnumbered
	heading doctree.Heading
}

// structure collects chapters and attaches every section to the nearest
// preceding chapter.
func (ex *latexExtractor) structure() {
	text := ex.src.text
	numbered := 0
	for _, c := range findCommands(text, "chapter") {
		title := StripMarkup(c.arg)
		ch := latexChapter{cmd: c}
		if c.starred {
			ch.key = title
			ch.heading = doctree.Heading{Title: title, Key: title, Offset: ex.src.pos(c.start)}
			ex.m.UnnumberedChapters = append(ex.m.UnnumberedChapters, ch.heading)
		} else {
			numbered++
			ch.number = numbered
			ch.key = doctree.ChapterKey(numbered)
			ch.heading = doctree.Heading{
				Number: strconv.Itoa(numbered),
				Title:  title,
				Key:    ch.key,
				Offset: ex.src.pos(c.start),
			}
			ex.m.NumberedChapters = append(ex.m.NumberedChapters, ch.heading)
		}
		ex.chapters = append(ex.chapters, ch)
	}

	counters := map[string]int{}
	current := -1
	for _, s := range findCommands(text, "section") {
		for current+1 < len(ex.chapters) && ex.chapters[current+1].cmd.start < s.start {
			current++
		}
		key := doctree.Unattached
		chapterNumber := 0
		if current >= 0 {
			key = ex.chapters[current].key
			chapterNumber = ex.chapters[current].number
		}
		title := StripMarkup(s.arg)
		h := doctree.Heading{Title: title, Key: title, Offset: ex.src.pos(s.start)}
		if !s.starred {
			counters[key]++
			h.Number = strconv.Itoa(counters[key])
			if chapterNumber > 0 {
				h.Number = strconv.Itoa(chapterNumber) + "." + h.Number
			}
			h.Key = h.Number + " раздел"
		}
		ex.m.AddSection(key, h)
	}
}

var (
	tocRe          = regexp.MustCompile(`\\tableofcontents`)
	beginDocRe     = regexp.MustCompile(`\\begin\s*\{document\}`)
	setCounterPage = regexp.MustCompile(`^\\setcounter\s*\{page\}\s*\{2\}$`)
)

// titleAndTOC validates the title page insertion and the table of contents
// and folds both into the unnumbered chapters.
func (ex *latexExtractor) titleAndTOC() {
	text := ex.src.text
	includes := findCommands(text, "includepdf")
	tocLoc := tocRe.FindStringIndex(text)
	docLoc := beginDocRe.FindStringIndex(text)

	var title *command
	if len(includes) > 0 {
		title = &includes[0]
	}
	if title == nil {
		ex.errs.Add(MsgTitleMissing)
	}
	if tocLoc == nil {
		ex.errs.Add(MsgTOCMissing)
	}
	if title != nil && docLoc != nil && title.start < docLoc[0] {
		ex.errs.Add(MsgTitleBeforeDocument)
	}
	if title != nil && tocLoc != nil {
		if tocLoc[0] < title.start {
			ex.errs.Add(MsgTOCBeforeTitle)
		} else {
			between := strings.TrimSpace(text[title.end:tocLoc[0]])
			if between != "" && !setCounterPage.MatchString(between) {
				ex.errs.Add(MsgBetweenTitleAndTOC)
			}
		}
	}

	if title != nil {
		ex.m.UnnumberedChapters = append(ex.m.UnnumberedChapters, doctree.Heading{
			Title: TitlePageChapter, Key: TitlePageChapter, Offset: ex.src.pos(title.start),
		})
	}
	if tocLoc != nil {
		ex.m.UnnumberedChapters = append(ex.m.UnnumberedChapters, doctree.Heading{
			Title: TOCChapter, Key: TOCChapter, Offset: ex.src.pos(tocLoc[0]),
		})
	}
}

var contentsLineRe = regexp.MustCompile(`\\addcontentsline\s*\{toc\}\s*\{chapter\}\s*\{`)

// contentsLines requires an \addcontentsline{toc}{chapter}{...} shortly
// after every unnumbered chapter.
func (ex *latexExtractor) contentsLines() {
	text := ex.src.text
	for _, ch := range ex.chapters {
		if !ch.cmd.starred {
			continue
		}
		window := text[ch.cmd.end:]
		if n := runePrefixBytes(window, ContentsLineWindow); n < len(window) {
			window = window[:n]
		}
		if !contentsLineRe.MatchString(window) {
			ex.errs.Addf(msgMissingContentsLine, ch.heading.Title)
		}
	}
}

var boldGroupRe = regexp.MustCompile(`\{\\(?:bfseries|bf)(?:\s+|\{\})`)

// introKeywords collects \textbf{...} and {\bf ...} phrases between the
// introduction chapter and the next chapter.
func (ex *latexExtractor) introKeywords() {
	text := ex.src.text
	start, end := -1, len(text)
	for i, ch := range ex.chapters {
		if start < 0 && strings.EqualFold(ch.heading.Title, "введение") {
			start = ch.cmd.end
			if i+1 < len(ex.chapters) {
				end = ex.chapters[i+1].cmd.start
			}
			break
		}
	}
	if start < 0 {
		ex.errs.Add(MsgIntroNotFound)
		return
	}
	ex.m.IntroFound = true
	block := text[start:end]

	type phrase struct {
		at   int
		text string
	}
	var found []phrase
	for _, c := range findCommands(block, "textbf") {
		found = append(found, phrase{c.start, c.arg})
	}
	for _, loc := range boldGroupRe.FindAllStringIndex(block, -1) {
		inner, _, ok := readGroup(block, loc[0])
		if !ok {
			continue
		}
		found = append(found, phrase{loc[0], leadSwitchRe.ReplaceAllString(inner, "")})
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].at < found[j].at })
	for _, f := range found {
		ex.m.AddIntroKeyword(StripMarkup(f.text))
	}
}

var (
	figureEnvRe    = regexp.MustCompile(`(?s)\\begin\{figure\*?\}(.*?)\\end\{figure\*?\}`)
	tableEnvRe     = regexp.MustCompile(`(?s)\\begin\{table\*?\}(.*?)\\end\{table\*?\}`)
	longtableEnvRe = regexp.MustCompile(`(?s)\\begin\{longtable\}(.*?)\\end\{longtable\}`)
	refRe          = regexp.MustCompile(`\\ref\s*\{([^}]*)\}`)
)

// envLabels returns the \label marks inside every match of envRe.
func (ex *latexExtractor) envLabels(envRe *regexp.Regexp, kind string) []doctree.Mark {
	text := ex.src.text
	var out []doctree.Mark
	for _, loc := range envRe.FindAllStringSubmatchIndex(text, -1) {
		body := text[loc[2]:loc[3]]
		for _, c := range findCommands(body, "label") {
			out = append(out, doctree.Mark{
				ID:     strings.TrimSpace(c.arg),
				Raw:    body[c.start:c.end],
				Offset: ex.src.pos(loc[2] + c.start),
				Kind:   kind,
			})
		}
	}
	return out
}

// refsTo returns \ref marks whose label has the given prefix or is declared.
func (ex *latexExtractor) refsTo(prefix string, labels []doctree.Mark, kind string) []doctree.Mark {
	declared := make(map[string]bool, len(labels))
	for _, l := range labels {
		declared[l.ID] = true
	}
	text := ex.src.text
	var out []doctree.Mark
	for _, loc := range refRe.FindAllStringSubmatchIndex(text, -1) {
		id := strings.TrimSpace(text[loc[2]:loc[3]])
		if !strings.HasPrefix(id, prefix) && !declared[id] {
			continue
		}
		out = append(out, doctree.Mark{ID: id, Raw: text[loc[0]:loc[1]], Offset: ex.src.pos(loc[0]), Kind: kind})
	}
	return out
}

func (ex *latexExtractor) figures() {
	labels := ex.envLabels(figureEnvRe, kindFigure)
	text := ex.src.text
	for _, c := range findCommands(text, "myfigure") {
		args, _, ok := readArgs(text, c.end, 3)
		if !ok {
			continue
		}
		labels = append(labels, doctree.Mark{
			ID:     strings.TrimSpace(args[2]),
			Title:  StripMarkup(args[1]),
			Raw:    text[c.start:c.end],
			Offset: ex.src.pos(c.start),
			Kind:   kindFigure,
		})
	}
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Offset < labels[j].Offset })
	ex.m.Pictures = doctree.CrossRefs{Labels: labels, Refs: ex.refsTo("fig:", labels, kindFigure)}
}

func (ex *latexExtractor) tables() {
	tables := ex.envLabels(tableEnvRe, kindTable)
	longtables := ex.envLabels(longtableEnvRe, kindLongTable)
	ex.m.Tables = doctree.CrossRefs{Labels: tables, Refs: ex.refsTo("table:", tables, kindTable)}
	ex.m.LongTables = doctree.CrossRefs{Labels: longtables, Refs: ex.refsTo("longtable:", longtables, kindLongTable)}
}

var (
	appendixTOCRe   = regexp.MustCompile(`\\addcontentsline\s*\{toc\}\s*\{section\}\s*\{`)
	appendixTitleRe = regexp.MustCompile(`^(?i:приложение)\s+([А-ЯЁ])(?:[^\p{L}]|$)`)
)

// appendices reads appendix titles from their table-of-contents lines and
// marks appendices inserted as PDF. Links come from the in-text phrases.
func (ex *latexExtractor) appendices() {
	text := ex.src.text
	type entry struct {
		mark       doctree.Mark
		start, end int
	}
	var entries []entry
	for _, loc := range appendixTOCRe.FindAllStringIndex(text, -1) {
		arg, end, ok := readGroup(text, loc[1]-1)
		if !ok {
			continue
		}
		title := StripMarkup(arg)
		m := appendixTitleRe.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		entries = append(entries, entry{
			mark: doctree.Mark{
				ID:     m[1],
				Title:  title,
				Raw:    text[loc[0]:end],
				Offset: ex.src.pos(loc[0]),
				Kind:   kindAppendix,
			},
			start: loc[0],
			end:   end,
		})
	}
	for i, e := range entries {
		ex.m.Appendices.Titles = append(ex.m.Appendices.Titles, e.mark)
		limit := len(text)
		if i+1 < len(entries) {
			limit = entries[i+1].start
		}
		if len(findCommands(text[e.end:limit], "includepdf")) > 0 {
			ex.m.Appendices.PDFIncluded[e.mark.ID] = true
		}
	}

	links := findRefs(appendixRefPatterns, text, 0, true)
	for i := range links {
		links[i].Offset = ex.src.pos(links[i].Offset)
	}
	ex.m.Appendices.Links = links
}

var (
	citeRe    = regexp.MustCompile(`\\(?:cite|citep|citet|parencite)\s*(?:\[[^\]]*\])?\s*\{([^}]*)\}`)
	thebibRe  = regexp.MustCompile(`(?s)\\begin\{thebibliography\}(?:\{[^}]*\})?(.*?)\\end\{thebibliography\}`)
	bibitemRe = regexp.MustCompile(`\\bibitem\s*(?:\[[^\]]*\])?\s*\{([^}]*)\}`)
)

func (ex *latexExtractor) bibliography() {
	text := ex.src.text
	for _, loc := range citeRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		for _, key := range strings.Split(text[loc[2]:loc[3]], ",") {
			if key = strings.TrimSpace(key); key != "" {
				ex.m.Bibliography.Citations = append(ex.m.Bibliography.Citations, doctree.Mark{
					ID: key, Raw: raw, Offset: ex.src.pos(loc[0]),
				})
			}
		}
	}

	for _, env := range thebibRe.FindAllStringSubmatchIndex(text, -1) {
		body := text[env[2]:env[3]]
		items := bibitemRe.FindAllStringSubmatchIndex(body, -1)
		for i, it := range items {
			end := len(body)
			if i+1 < len(items) {
				end = items[i+1][0]
			}
			content := strings.ReplaceAll(body[it[1]:end], "\r", "")
			content = strings.TrimSpace(spaceRunRe.ReplaceAllString(content, " "))
			ex.m.Bibliography.Items = append(ex.m.Bibliography.Items, doctree.BibItem{
				Key:     strings.TrimSpace(body[it[2]:it[3]]),
				Content: content,
				Offset:  ex.src.pos(env[2] + it[0]),
			})
		}
	}
}

// runePrefixBytes returns the byte length of the first n runes of s.
func runePrefixBytes(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
