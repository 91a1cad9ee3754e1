// Package book assembles a book-styled document from Markdown: a title
// page, a copyright page, a table of contents and numbered chapters.
//
// Assembly always starts from a blank document with the built-in style
// catalog. User-supplied templates are not consulted.
package book

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/dateutil"
	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/mdscan"
)

// Front matter defaults applied when Meta leaves a field empty.
const (
	DefaultTitle    = "Untitled"
	DefaultSubtitle = "A Novel"
	DefaultAuthor   = "Anonymous"
)

// ContentsHeading is the heading of the table of contents page.
const ContentsHeading = "Contents"

// Placeholder pagination: front matter takes the first pages and every
// chapter is assumed to span pagesPerChapter pages.
const (
	firstChapterPage = 5
	pagesPerChapter  = 4
)

// ErrCopyrightTemplate indicates the copyright boilerplate could not be
// loaded, parsed or rendered.
var ErrCopyrightTemplate = errors.New("copyright template")

// Meta is the front matter of a book.
type Meta struct {
	Title    string
	Subtitle string
	Author   string
	Year     string // literal, "auto" or "auto:FORMAT"; empty = current year
}

// copyrightData is the data passed to the copyright template.
type copyrightData struct {
	Title  string
	Author string
	Year   string
}

// Assembler builds book documents.
// It holds no per-document state and is safe for concurrent use.
type Assembler struct {
	texts assets.AssetLoader
	now   func() time.Time
}

// NewAssembler creates an Assembler. A nil loader uses the embedded texts and
// a nil clock uses time.Now.
func NewAssembler(texts assets.AssetLoader, now func() time.Time) *Assembler {
	if texts == nil {
		texts = assets.NewEmbeddedLoader()
	}
	if now == nil {
		now = time.Now
	}
	return &Assembler{texts: texts, now: now}
}

// PageNumber returns the placeholder page number listed in the table of
// contents for the chapter at 1-based position.
func PageNumber(position int) int {
	return firstChapterPage + pagesPerChapter*position
}

// Assemble builds the book and serializes it as a .docx package.
func (a *Assembler) Assemble(markdown string, meta Meta) ([]byte, error) {
	doc, err := a.Build(markdown, meta)
	if err != nil {
		return nil, err
	}
	return doc.Bytes()
}

// Build assembles the book document without serializing it.
func (a *Assembler) Build(markdown string, meta Meta) (*docx.Document, error) {
	meta = a.withDefaults(meta)
	now := a.now()

	year, err := dateutil.Resolve(meta.Year, now)
	if err != nil {
		return nil, err
	}
	copyright, err := a.copyright(copyrightData{Title: meta.Title, Author: meta.Author, Year: year})
	if err != nil {
		return nil, err
	}

	doc := docx.New()
	doc.Properties = docx.Properties{Title: meta.Title, Author: meta.Author, Created: now}
	docx.ApplyBaseMargins(doc)
	docx.EnsureRegistered(doc)

	w := &writer{doc: doc}

	// Title page
	w.paragraph(docx.RoleTitle, meta.Title)
	w.paragraph(docx.RoleSubtitle, meta.Subtitle)
	w.paragraph(docx.RoleAuthor, "By\n"+meta.Author)
	w.pageBreak()

	// Copyright page
	w.paragraph(docx.RoleCopyright, copyright)
	w.pageBreak()

	// Contents
	w.paragraph(docx.RoleTitle, ContentsHeading)
	for i, title := range mdscan.ChapterTitles(markdown) {
		w.paragraph(docx.RoleTOCEntry, title+"\t"+strconv.Itoa(PageNumber(i+1)))
	}
	w.pageBreak()

	// Body. Chapters are numbered by position so repeated titles keep
	// distinct numbers matching the contents page.
	chapter := 0
	for line := range mdscan.Scan(markdown) {
		switch line.Kind {
		case mdscan.Heading:
			switch line.Level {
			case 1:
				chapter++
				w.paragraph(docx.RoleChapterTitle, fmt.Sprintf("Chapter %d\n%s", chapter, line.Text))
			case 2:
				w.paragraph(docx.RoleHeading2, line.Text)
			default:
				w.paragraph(docx.RoleHeading3, line.Text)
			}
		case mdscan.Blank:
			w.blank()
		default:
			w.paragraph(docx.RoleBodyParagraph, line.Text)
		}
	}

	if w.err != nil {
		return nil, w.err
	}
	return doc, nil
}

func (a *Assembler) withDefaults(meta Meta) Meta {
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Subtitle = strings.TrimSpace(meta.Subtitle)
	meta.Author = strings.TrimSpace(meta.Author)
	if meta.Title == "" {
		meta.Title = DefaultTitle
	}
	if meta.Subtitle == "" {
		meta.Subtitle = DefaultSubtitle
	}
	if meta.Author == "" {
		meta.Author = DefaultAuthor
	}
	return meta
}

func (a *Assembler) copyright(data copyrightData) (string, error) {
	src, err := a.texts.LoadText(assets.CopyrightText)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyrightTemplate, err)
	}
	tmpl, err := template.New(assets.CopyrightText).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyrightTemplate, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCopyrightTemplate, err)
	}
	return strings.TrimRight(sb.String(), "\r\n"), nil
}

// writer appends to a document and keeps the first error.
type writer struct {
	doc *docx.Document
	err error
}

func (w *writer) paragraph(role docx.Role, text string) {
	if w.err != nil {
		return
	}
	w.err = w.doc.AppendParagraph(role, text)
}

func (w *writer) blank() {
	if w.err == nil {
		w.doc.AppendBlank()
	}
}

func (w *writer) pageBreak() {
	if w.err == nil {
		w.doc.AppendPageBreak()
	}
}
