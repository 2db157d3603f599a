package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/normcontrol/internal/doctree"
	"github.com/dgallion1/normcontrol/internal/violation"
)

// MsgIntroNotFound is recorded when no introduction block is found.
const MsgIntroNotFound = "Не найден текст введения"

// DOCXParser handles .docx files.
type DOCXParser struct{}

// docxParagraph is a paragraph with its running index in document order.
type docxParagraph struct {
	index int
	text  string
	para  *docx.Paragraph
}

func (p *DOCXParser) Parse(data []byte, filename string, errs *violation.List) (model *doctree.Model, err error) {
	// go-docx may panic on malformed parts.
	defer func() {
		if r := recover(); r != nil {
			model, err = nil, fmt.Errorf("%w: parse docx: %v", ErrUnreadable, r)
		}
	}()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse docx: %w", ErrUnreadable, err)
	}
	styles, err := loadStyles(data)
	if err != nil {
		styles = emptyStyleSheet()
	}

	ex := newDocxExtractor(filename, styles, errs)
	var body []docxParagraph
	index := 0
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if text != "" {
				body = append(body, docxParagraph{index: index, text: text, para: it})
			}
			index++
		case *docx.Table:
			index = ex.visitTable(it, index)
		case *docx.SectPr:
			if it.PgMar != nil {
				ex.m.PageMargins = &doctree.Margins{
					Top:    it.PgMar.Top,
					Bottom: it.PgMar.Bottom,
					Left:   it.PgMar.Left,
					Right:  it.PgMar.Right,
				}
			}
		}
	}
	for i := range body {
		var next *docxParagraph
		if i+1 < len(body) {
			next = &body[i+1]
		}
		ex.visit(body[i], next)
	}
	return ex.finish(), nil
}

type docxExtractor struct {
	m      *doctree.Model
	styles *styleSheet
	errs   *violation.List

	root        *doctree.DocNode
	chapterNode *doctree.DocNode
	chapterKey  string

	introActive    bool
	inBibliography bool

	list       *doctree.List
	listIndent int
	prevText   string
}

func newDocxExtractor(filename string, styles *styleSheet, errs *violation.List) *docxExtractor {
	m := doctree.NewModel(doctree.FormatDOCX)
	m.Tree = &doctree.DocTree{Title: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))}
	return &docxExtractor{
		m:          m,
		styles:     styles,
		errs:       errs,
		root:       &doctree.DocNode{},
		chapterKey: doctree.Unattached,
	}
}

// visitTable scans table cell paragraphs for references and citations and
// returns the next running paragraph index.
func (ex *docxExtractor) visitTable(t *docx.Table, index int) int {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, para := range cell.Paragraphs {
				if text := docxParagraphText(para); text != "" {
					ex.collectRefs(text, index)
					ex.m.Bibliography.Citations = append(ex.m.Bibliography.Citations, findCitations(text, index)...)
				}
				index++
			}
			for _, nested := range cell.Tables {
				index = ex.visitTable(nested, index)
			}
		}
	}
	return index
}

func (ex *docxExtractor) visit(dp docxParagraph, next *docxParagraph) {
	styleID := paragraphStyleID(dp.para)
	style := ex.paragraphStyle(dp.para, styleID, dp.text)
	node := &doctree.DocNode{Text: dp.text, Index: dp.index, Style: style}

	if ex.inBibliography {
		if !IsUpper(dp.text) {
			ex.addBibItem(dp)
			ex.attach(node)
			return
		}
		ex.inBibliography = false
	}

	ex.collectRefs(dp.text, dp.index)
	ex.m.Bibliography.Citations = append(ex.m.Bibliography.Citations, findCitations(dp.text, dp.index)...)
	ex.collectCaption(dp, next)

	headingStyled := ex.styles.IsHeading(styleID)
	if item, indent, ok := ex.listItem(dp.para, dp.text, headingStyled); ok {
		ex.addListItem(item, indent, dp)
		ex.attach(node)
		return
	}
	ex.closeList()

	toc := isTOCStyle(ex.styles.Name(styleID))
	cls := Classification{Kind: BodyText, Title: dp.text}
	if !toc {
		cls = ClassifyParagraph(dp.text)
	}
	isChapter := cls.Kind == NumberedChapter || cls.Kind == UnnumberedChapter
	ex.trackIntro(dp, headingStyled || isChapter, toc)

	switch cls.Kind {
	case NumberedChapter:
		n, _ := strconv.Atoi(cls.Number)
		h := doctree.Heading{Number: cls.Number, Title: cls.Title, Key: doctree.ChapterKey(n), Offset: dp.index, Style: style}
		ex.m.NumberedChapters = append(ex.m.NumberedChapters, h)
		ex.openChapter(node, h)
	case UnnumberedChapter:
		h := doctree.Heading{Title: cls.Title, Key: cls.Title, Offset: dp.index, Style: style}
		ex.m.UnnumberedChapters = append(ex.m.UnnumberedChapters, h)
		ex.openChapter(node, h)
	case NumberedSection:
		ex.m.AddSection(ex.chapterKey, doctree.Heading{Number: cls.Number, Title: cls.Title, Key: dp.text, Offset: dp.index, Style: style})
		ex.attach(node)
	case UnnumberedSection:
		ex.m.AddSection(ex.chapterKey, doctree.Heading{Title: cls.Title, Key: dp.text, Offset: dp.index, Style: style})
		ex.attach(node)
	default:
		ex.attach(node)
	}

	if !toc && (cls.Kind == UnnumberedChapter || headingStyled) &&
		strings.HasPrefix(strings.ToLower(dp.text), bibliographyHeading) {
		ex.inBibliography = true
	}
	ex.prevText = dp.text
}

func (ex *docxExtractor) openChapter(node *doctree.DocNode, h doctree.Heading) {
	node.Title = node.Text
	ex.root.Children = append(ex.root.Children, node)
	ex.chapterNode = node
	ex.chapterKey = h.Key
}

func (ex *docxExtractor) attach(node *doctree.DocNode) {
	if ex.chapterNode != nil {
		ex.chapterNode.Children = append(ex.chapterNode.Children, node)
		return
	}
	ex.root.Children = append(ex.root.Children, node)
}

func (ex *docxExtractor) collectRefs(text string, index int) {
	ex.m.Pictures.Refs = append(ex.m.Pictures.Refs, findRefs(figureRefPatterns, text, index, false)...)
	ex.m.Tables.Refs = append(ex.m.Tables.Refs, findRefs(tableRefPatterns, text, index, false)...)
	ex.m.Appendices.Links = append(ex.m.Appendices.Links, findRefs(appendixRefPatterns, text, index, false)...)
}

// trackIntro opens the introduction block on a paragraph mentioning
// "введение" and closes it at the next heading. Bold runs inside the block
// become introduction keywords.
func (ex *docxExtractor) trackIntro(dp docxParagraph, isHeading, toc bool) {
	mentions := !toc && strings.Contains(strings.ToLower(dp.text), "введение")
	switch {
	case mentions && (!ex.m.IntroFound || isHeading):
		if ex.m.IntroFound {
			ex.m.IntroKeywords = nil
		}
		ex.m.IntroFound = true
		ex.introActive = true
	case isHeading:
		ex.introActive = false
	case ex.introActive:
		for _, phrase := range boldPhrases(dp.para) {
			ex.m.AddIntroKeyword(phrase)
		}
	}
}

var (
	figureCaptionRe   = regexp.MustCompile(`^(?i:(рисунок|таблица))\s+(\d+(?:\.\d+)?)\s*(?:[-–—]\s*(.*))?$`)
	appendixCaptionRe = regexp.MustCompile(`^(?i:приложение)\s+([А-ЯЁ])(?:[^\p{L}](.*))?$`)
)

// collectCaption records a right-aligned "Рисунок N", "Таблица N" or
// "Приложение X" paragraph followed by a centered title paragraph.
func (ex *docxExtractor) collectCaption(dp docxParagraph, next *docxParagraph) {
	if next == nil || alignment(dp.para) != "right" || alignment(next.para) != "center" {
		return
	}
	raw := dp.text + " " + next.text
	if m := figureCaptionRe.FindStringSubmatch(dp.text); m != nil {
		title := strings.TrimSpace(m[3])
		if title == "" {
			title = next.text
		}
		mark := doctree.Mark{ID: m[2], Title: title, Raw: raw, Offset: dp.index}
		if strings.EqualFold(m[1], "рисунок") {
			mark.Kind = kindFigure
			ex.m.Pictures.Labels = append(ex.m.Pictures.Labels, mark)
		} else {
			mark.Kind = kindTable
			ex.m.Tables.Labels = append(ex.m.Tables.Labels, mark)
		}
		return
	}
	if m := appendixCaptionRe.FindStringSubmatch(dp.text); m != nil {
		title := strings.TrimSpace(m[2])
		if title == "" {
			title = next.text
		}
		ex.m.Appendices.Titles = append(ex.m.Appendices.Titles, doctree.Mark{
			ID: m[1], Title: title, Raw: raw, Offset: dp.index, Kind: kindAppendix,
		})
	}
}

const bibliographyHeading = "список использованных источников"

var bibNumberRe = regexp.MustCompile(`^\d+[.)]?\s+`)

func (ex *docxExtractor) addBibItem(dp docxParagraph) {
	items := ex.m.Bibliography.Items
	ex.m.Bibliography.Items = append(items, doctree.BibItem{
		Key:     strconv.Itoa(len(items) + 1),
		Content: bibNumberRe.ReplaceAllString(dp.text, ""),
		Offset:  dp.index,
	})
}

var listItemRe = regexp.MustCompile(`^(?:\d+[.)](?:\s|$)|[•·▪●◦‣]|[-–—](?:\s|$))\s*`)

// listItem reports whether a paragraph is a list item and returns its text
// without the marker and its nesting indent.
func (ex *docxExtractor) listItem(p *docx.Paragraph, text string, headingStyled bool) (string, int, bool) {
	if headingStyled {
		return "", 0, false
	}
	indent, level := 0, 0
	numbered := false
	if p.Properties != nil {
		if p.Properties.Ind != nil {
			indent = p.Properties.Ind.Left
		}
		if np := p.Properties.NumProperties; np != nil {
			numbered = true
			if np.Ilvl != nil {
				level, _ = strconv.Atoi(np.Ilvl.Val)
			}
		}
	}
	if indent == 0 && level > 0 {
		indent = level * 360
	}
	if loc := listItemRe.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:]), indent, true
	}
	if numbered {
		return text, indent, true
	}
	return "", 0, false
}

func (ex *docxExtractor) addListItem(text string, indent int, dp docxParagraph) {
	if ex.list == nil {
		intro := ""
		if strings.HasSuffix(ex.prevText, ":") || strings.HasSuffix(ex.prevText, ".") {
			intro = ex.prevText
		}
		ex.list = &doctree.List{Intro: intro, Offset: dp.index}
		ex.listIndent = indent
	}
	l := ex.list
	if l.Raw != "" {
		l.Raw += "\n"
	}
	l.Raw += dp.text
	if indent > ex.listIndent && len(l.Items) > 0 {
		last := &l.Items[len(l.Items)-1]
		last.Children = append(last.Children, doctree.ListItem{Text: text})
		l.Nested = true
		return
	}
	l.Items = append(l.Items, doctree.ListItem{Text: text})
}

func (ex *docxExtractor) closeList() {
	if ex.list == nil {
		return
	}
	ex.m.Lists = append(ex.m.Lists, *ex.list)
	ex.list = nil
}

func (ex *docxExtractor) finish() *doctree.Model {
	ex.closeList()
	ex.m.Tree.Children = ex.root.Children
	if !ex.m.IntroFound {
		ex.errs.Add(MsgIntroNotFound)
	}
	return ex.m
}

// paragraphStyle records the attributes of the first run carrying text,
// falling back to paragraph run properties and then the style chain.
func (ex *docxExtractor) paragraphStyle(p *docx.Paragraph, styleID, text string) *doctree.Style {
	s := &doctree.Style{
		Alignment: alignment(p),
		AllCaps:   IsUpper(text),
		StyleName: ex.styles.Name(styleID),
	}
	var paraRPr *docx.RunProperties
	if pp := p.Properties; pp != nil {
		if pp.Ind != nil {
			s.LeftIndent = pp.Ind.Left
		}
		// Exact and at-least rules carry twips, not a line multiple.
		if sp := pp.Spacing; sp != nil && (sp.LineRule == "" || sp.LineRule == "auto") {
			s.LineSpacing = sp.Line
		}
		paraRPr = pp.RunProperties
	}

	var rPr *docx.RunProperties
	for _, r := range paragraphRuns(p) {
		if strings.TrimSpace(runText(r)) != "" {
			rPr = r.RunProperties
			break
		}
	}
	if rPr != nil {
		s.Bold = rPr.Bold != nil
		s.Italic = rPr.Italic != nil
		s.Underline = rPr.Underline != nil && rPr.Underline.Val != "none"
		if rPr.Color != nil && rPr.Color.Val != "auto" {
			s.Color = rPr.Color.Val
		}
	}
	for _, props := range []*docx.RunProperties{rPr, paraRPr} {
		if props == nil {
			continue
		}
		if s.FontSize == 0 && props.Size != nil {
			s.FontSize = halfPoints(props.Size.Val)
		}
		if s.FontName == "" && props.Fonts != nil {
			s.FontName = firstNonEmpty(props.Fonts.ASCII, props.Fonts.HAnsi)
		}
	}
	if s.FontSize == 0 {
		s.FontSize = ex.styles.Size(styleID)
	}
	if s.FontName == "" {
		s.FontName = ex.styles.Font(styleID)
	}
	return s
}

func paragraphStyleID(p *docx.Paragraph) string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

func alignment(p *docx.Paragraph) string {
	if p.Properties == nil || p.Properties.Justification == nil {
		return ""
	}
	switch v := p.Properties.Justification.Val; v {
	case "end", "right":
		return "right"
	case "start", "left":
		return "left"
	case "both", "distribute":
		return "both"
	default:
		return v
	}
}

func isTOCStyle(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "toc") || strings.HasPrefix(lower, "оглавление")
}

// paragraphRuns returns the runs of p, including runs inside hyperlinks.
func paragraphRuns(p *docx.Paragraph) []*docx.Run {
	var runs []*docx.Run
	for _, child := range p.Children {
		switch c := child.(type) {
		case *docx.Run:
			runs = append(runs, c)
		case *docx.Hyperlink:
			runs = append(runs, &c.Run)
		}
	}
	return runs
}

func runText(r *docx.Run) string {
	var buf strings.Builder
	for _, rc := range r.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, r := range paragraphRuns(para) {
		buf.WriteString(runText(r))
	}
	return normalizeText(buf.String())
}

// boldPhrases joins adjacent bold runs of p into lowercase phrases.
func boldPhrases(p *docx.Paragraph) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.ToLower(normalizeText(cur.String())); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range paragraphRuns(p) {
		text := runText(r)
		switch {
		case r.RunProperties != nil && r.RunProperties.Bold != nil:
			cur.WriteString(text)
		case strings.TrimSpace(text) == "" && cur.Len() > 0:
			cur.WriteString(text)
		default:
			flush()
		}
	}
	flush()
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
