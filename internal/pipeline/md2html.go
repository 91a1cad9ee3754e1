package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

const (
	documentHead = "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Document</title>\n</head>\n<body>\n"
	documentTail = "</body>\n</html>"
)

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter renders Markdown with goldmark. The resulting HTML is
// an intermediate form for AppendHTML, not a publishing target.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter enables GFM, footnotes, definition lists and
// class-based chroma highlighting. Heading IDs feed the [TOC] expansion.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{md: goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// No html.WithUnsafe: raw HTML in the source is dropped.
		goldmark.WithRendererOptions(html.WithXHTML()),
	)}
}

// ToHTML renders content as a complete HTML document. goldmark has no
// cancellation hook, so ctx is checked around the render.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(documentHead) + len(content)*2 + len(documentTail))
	b.WriteString(documentHead)
	if err := c.md.Convert([]byte(content), &b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	b.WriteString(documentTail)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}
