package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2docx/internal/docx"
)

// ErrDocumentConversion indicates the HTML could not be mapped to document blocks.
var ErrDocumentConversion = errors.New("HTML to document conversion failed")

// Bullet and checkbox glyphs written in place of list markers.
const (
	bulletMarker    = "• "
	checkedMarker   = "☑ "
	uncheckedMarker = "☐ "
)

// DocumentAppender abstracts HTML to document conversion.
type DocumentAppender interface {
	AppendHTML(ctx context.Context, doc *docx.Document, content string) error
}

// HTMLDocumentConverter maps sanitized HTML onto docx blocks.
// Coverage is partial: styling, images and links degrade to plain text.
type HTMLDocumentConverter struct {
	policy *bluemonday.Policy
}

// NewHTMLDocumentConverter creates a converter sanitizing with bluemonday's
// UGC policy plus GFM task-list checkboxes.
func NewHTMLDocumentConverter() *HTMLDocumentConverter {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	return &HTMLDocumentConverter{policy: p}
}

// AppendHTML appends the blocks of content to doc. content may be a full
// HTML document or a fragment. doc must carry the catalog styles.
func (c *HTMLDocumentConverter) AppendHTML(ctx context.Context, doc *docx.Document, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := bodyHTML(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentConversion, err)
	}
	root, _, err := parseHTML(c.policy.Sanitize(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentConversion, err)
	}

	w := &blockWriter{ctx: ctx, doc: doc, toc: collectHeadings(root)}
	return w.blocks(root)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	bodyNode := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), bodyNode)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// bodyHTML returns the markup inside <body>. Fragments are returned as is,
// so head content such as <title> never reaches the sanitizer.
func bodyHTML(content string) (string, error) {
	root, isFragment, err := parseHTML(content)
	if err != nil {
		return "", err
	}
	if isFragment {
		return content, nil
	}
	body := findElement(root, atom.Body)
	if body == nil {
		return "", nil
	}
	var sb strings.Builder
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&sb, child); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}

// tocHeading is one entry of a [TOC] marker expansion.
type tocHeading struct {
	level int
	text  string
}

// collectHeadings lists h1-h3 in document order.
func collectHeadings(root *html.Node) []tocHeading {
	var out []tocHeading
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.DataAtom); level >= 1 && level <= 3 {
				if text := collapseSpace(textContent(n)); text != "" {
					out = append(out, tocHeading{level: level, text: text})
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(root)
	return out
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func headingRole(level int) docx.Role {
	switch level {
	case 1:
		return docx.RoleHeading1
	case 2:
		return docx.RoleHeading2
	case 3:
		return docx.RoleHeading3
	}
	return docx.RoleHeading4
}

// blockAtoms are elements that start a new paragraph.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Ul: true, atom.Ol: true, atom.Li: true,
	atom.Dl: true, atom.Dt: true, atom.Dd: true, atom.Pre: true, atom.Table: true,
	atom.Hr: true, atom.Blockquote: true, atom.Div: true, atom.Section: true,
	atom.Article: true, atom.Main: true, atom.Header: true, atom.Footer: true,
	atom.Aside: true, atom.Nav: true, atom.Figure: true, atom.Figcaption: true,
	atom.Details: true, atom.Summary: true, atom.Address: true,
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockAtoms[n.DataAtom]
}

// blockWriter walks block-level nodes and appends paragraphs to doc.
type blockWriter struct {
	ctx   context.Context
	doc   *docx.Document
	toc   []tocHeading
	quote int
}

func (w *blockWriter) textRole() docx.Role {
	if w.quote > 0 {
		return docx.RoleBlockQuote
	}
	return docx.RoleNormal
}

// blocks walks the children of n. Inline content between block elements
// becomes its own paragraph.
func (w *blockWriter) blocks(n *html.Node) error {
	var pending runBuilder
	flush := func() error {
		runs := pending.finish()
		pending = runBuilder{}
		if len(runs) == 0 {
			return nil
		}
		return w.doc.AppendRuns(w.textRole(), runs...)
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !isBlock(child) {
			pending.inline(child, runStyle{})
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if err := w.block(child); err != nil {
			return err
		}
	}
	return flush()
}

func (w *blockWriter) block(n *html.Node) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return w.paragraph(headingRole(headingLevel(n.DataAtom)), n)
	case atom.P:
		if strings.TrimSpace(textContent(n)) == TOCMarker && !hasElement(n) {
			return w.tableOfContents()
		}
		return w.paragraph(w.textRole(), n)
	case atom.Ul, atom.Ol:
		return w.list(n, 0)
	case atom.Dl:
		return w.definitions(n)
	case atom.Pre:
		code := strings.TrimRight(textContent(n), "\n")
		return w.doc.AppendRuns(docx.RoleCodeBlock, docx.Run{Text: code, Mono: true})
	case atom.Table:
		return w.table(n)
	case atom.Hr:
		w.doc.AppendBlank()
		return nil
	case atom.Blockquote:
		w.quote++
		defer func() { w.quote-- }()
		return w.blocks(n)
	}
	return w.blocks(n)
}

// paragraph appends n's inline content as one paragraph; empty ones are dropped.
func (w *blockWriter) paragraph(role docx.Role, n *html.Node) error {
	var b runBuilder
	b.children(n, runStyle{})
	runs := b.finish()
	if len(runs) == 0 {
		return nil
	}
	return w.doc.AppendRuns(role, runs...)
}

func (w *blockWriter) tableOfContents() error {
	for _, h := range w.toc {
		text := strings.Repeat("    ", h.level-1) + h.text
		if err := w.doc.AppendParagraph(docx.RoleTOCEntry, text); err != nil {
			return err
		}
	}
	return nil
}

// list appends one ListParagraph per item, indented by a tab per depth.
func (w *blockWriter) list(n *html.Node, depth int) error {
	ordered := n.DataAtom == atom.Ol
	number := 1
	if ordered {
		if start, err := strconv.Atoi(attr(n, "start")); err == nil {
			number = start
		}
	}

	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		marker := bulletMarker
		if ordered {
			marker = strconv.Itoa(number) + ". "
			number++
		}
		if err := w.listItem(li, depth, marker); err != nil {
			return err
		}
	}
	return nil
}

// listItem writes the item's text with its marker; nested lists and
// block children follow as separate paragraphs.
func (w *blockWriter) listItem(li *html.Node, depth int, marker string) error {
	indent := strings.Repeat("\t", depth)
	var pending runBuilder
	first := true
	flush := func() error {
		runs := pending.finish()
		pending = runBuilder{}
		if len(runs) == 0 {
			return nil
		}
		prefix := indent + marker
		if !first {
			prefix = indent + "\t"
		}
		first = false
		return w.doc.AppendRuns(docx.RoleListItem, prependText(prefix, runs)...)
	}

	for child := li.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			switch child.DataAtom {
			case atom.Ul, atom.Ol:
				if err := flush(); err != nil {
					return err
				}
				if err := w.list(child, depth+1); err != nil {
					return err
				}
				continue
			case atom.Pre, atom.Table, atom.Blockquote:
				if err := flush(); err != nil {
					return err
				}
				if err := w.block(child); err != nil {
					return err
				}
				continue
			}
		}
		pending.inline(child, runStyle{})
	}
	return flush()
}

// prependText puts text in front of runs, joining the first run when it
// is unformatted.
func prependText(text string, runs []docx.Run) []docx.Run {
	if first := runs[0]; !first.Bold && !first.Italic && !first.Mono {
		runs[0].Text = text + first.Text
		return runs
	}
	return append([]docx.Run{{Text: text}}, runs...)
}

// definitions maps dt to bold Normal paragraphs and dd to list paragraphs.
func (w *blockWriter) definitions(n *html.Node) error {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		var b runBuilder
		switch child.DataAtom {
		case atom.Dt:
			b.children(child, runStyle{bold: true})
		case atom.Dd:
			b.add("\t", runStyle{}, true)
			b.children(child, runStyle{})
		default:
			continue
		}
		runs := b.finish()
		if len(runs) == 0 {
			continue
		}
		role := docx.RoleNormal
		if child.DataAtom == atom.Dd {
			role = docx.RoleListItem
		}
		if err := w.doc.AppendRuns(role, runs...); err != nil {
			return err
		}
	}
	return nil
}

func (w *blockWriter) table(n *html.Node) error {
	var rows [][]docx.Cell
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				visit(child)
			case atom.Tr:
				rows = append(rows, tableRow(child))
			}
		}
	}
	visit(n)

	if len(rows) == 0 {
		return nil
	}
	if err := w.doc.AppendTable(rows); err != nil {
		if errors.Is(err, docx.ErrEmptyTable) {
			return nil
		}
		return err
	}
	return nil
}

func tableRow(tr *html.Node) []docx.Cell {
	var cells []docx.Cell
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if td.Type != html.ElementNode || (td.DataAtom != atom.Td && td.DataAtom != atom.Th) {
			continue
		}
		var b runBuilder
		b.children(td, runStyle{})
		cells = append(cells, docx.Cell{Runs: b.finish(), Header: td.DataAtom == atom.Th})
	}
	return cells
}

// runStyle is the character formatting in effect during an inline walk.
type runStyle struct {
	bold, italic, mono, pre bool
}

// runBuilder accumulates runs, collapsing HTML whitespace outside <pre>
// and merging neighbours with identical formatting.
type runBuilder struct {
	runs []docx.Run
}

func (b *runBuilder) children(n *html.Node, st runStyle) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.inline(child, st)
	}
}

func (b *runBuilder) inline(n *html.Node, st runStyle) {
	switch n.Type {
	case html.TextNode:
		b.add(n.Data, st, st.pre)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		st.bold = true
	case atom.Em, atom.I:
		st.italic = true
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		st.mono = true
	case atom.Pre:
		st.mono, st.pre = true, true
	case atom.Br:
		b.lineBreak()
		return
	case atom.Img:
		if alt := strings.TrimSpace(attr(n, "alt")); alt != "" {
			b.add("["+alt+"]", st, false)
		}
		return
	case atom.Input:
		if attr(n, "type") == "checkbox" {
			marker := uncheckedMarker
			if hasAttr(n, "checked") {
				marker = checkedMarker
			}
			b.add(marker, runStyle{}, true)
		}
		return
	case atom.A:
		href := attr(n, "href")
		switch {
		case strings.HasPrefix(href, "#fnref"):
			return
		case strings.HasPrefix(href, "#fn"):
			b.add("["+collapseSpace(textContent(n))+"]", st, false)
			return
		}
		b.children(n, st)
		if isExternal(href) && collapseSpace(textContent(n)) != href {
			b.add(" ("+href+")", runStyle{}, false)
		}
		return
	case atom.Script, atom.Style:
		return
	}

	if isBlock(n) && len(b.runs) > 0 {
		b.lineBreak()
	}
	b.children(n, st)
}

func (b *runBuilder) add(text string, st runStyle, verbatim bool) {
	if !verbatim {
		text = collapseSpace(text)
		if b.atLineStart() {
			text = strings.TrimLeft(text, " ")
		}
	}
	if text == "" {
		return
	}
	run := docx.Run{Text: text, Bold: st.bold, Italic: st.italic, Mono: st.mono}
	if n := len(b.runs); n > 0 {
		last := &b.runs[n-1]
		if last.Bold == run.Bold && last.Italic == run.Italic && last.Mono == run.Mono {
			last.Text += run.Text
			return
		}
	}
	b.runs = append(b.runs, run)
}

func (b *runBuilder) lineBreak() {
	b.trimTrailing()
	if len(b.runs) == 0 {
		return
	}
	b.add("\n", runStyle{}, true)
}

// atLineStart reports whether the next text starts a line, so leading
// spaces are dropped.
func (b *runBuilder) atLineStart() bool {
	if len(b.runs) == 0 {
		return true
	}
	text := b.runs[len(b.runs)-1].Text
	return text == "" || strings.HasSuffix(text, " ") || strings.HasSuffix(text, "\n")
}

func (b *runBuilder) trimTrailing() {
	for n := len(b.runs); n > 0; n = len(b.runs) {
		last := &b.runs[n-1]
		last.Text = strings.TrimRight(last.Text, " \u00a0")
		if last.Text != "" {
			return
		}
		b.runs = b.runs[:n-1]
	}
}

// finish returns the runs with trailing whitespace and line breaks removed.
func (b *runBuilder) finish() []docx.Run {
	for {
		b.trimTrailing()
		n := len(b.runs)
		if n == 0 {
			return nil
		}
		last := &b.runs[n-1]
		trimmed := strings.TrimRight(last.Text, "\n")
		if trimmed == last.Text {
			return b.runs
		}
		last.Text = trimmed
	}
}

// collapseSpace replaces runs of HTML whitespace with a single space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

// hasElement reports whether n has any element child.
func hasElement(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func isExternal(href string) bool {
	return strings.HasPrefix(href, "http://") ||
		strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "mailto:")
}
