package pipeline

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TOCMarker is the paragraph that asks for a table of contents.
// It passes through goldmark as a literal <p>[TOC]</p>.
const TOCMarker = "[TOC]"

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// !!! type "optional title"
	admonitionHeader = regexp.MustCompile(`^!!!\s+([\w-]+)(?:\s+"(.*?)")?\s*$`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = norm.NFC.String(content)
	content = convertAdmonitions(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertAdmonitions rewrites admonition blocks as blockquotes:
//
//	!!! note "Heads up"
//	    Body text.
//
// becomes
//
//	> **Heads up**
//	>
//	> Body text.
//
// The body is every following line indented by four spaces or a tab, blank
// lines included while more indented lines follow. An explicit empty title
// ("") drops the title line; no title uses the capitalized type.
// Lines inside fenced code blocks are left alone.
func convertAdmonitions(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	fence := ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if marker := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
			out = append(out, line)
			continue
		}
		if fence != "" {
			out = append(out, line)
			continue
		}

		m := admonitionHeader.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		title := capitalize(m[1])
		if strings.Contains(line, `"`) {
			title = strings.TrimSpace(m[2])
		}

		var body []string
		j := i + 1
		for j < len(lines) {
			if text, ok := unindent(lines[j]); ok {
				body = append(body, text)
				j++
				continue
			}
			if strings.TrimSpace(lines[j]) == "" && j+1 < len(lines) && isIndented(lines[j+1]) {
				body = append(body, "")
				j++
				continue
			}
			break
		}
		i = j - 1

		if title != "" {
			out = append(out, "> **"+title+"**")
			if len(body) > 0 {
				out = append(out, ">")
			}
		}
		for _, b := range body {
			if b == "" {
				out = append(out, ">")
				continue
			}
			out = append(out, "> "+b)
		}
		if title == "" && len(body) == 0 {
			out = append(out, ">")
		}
		out = append(out, "")
	}

	return strings.Join(out, "\n")
}

// fenceMarker returns the ``` or ~~~ run opening line, or "".
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return ""
	}
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == c {
			n++
		}
		if n >= 3 {
			return trimmed[:n]
		}
	}
	return ""
}

func isIndented(line string) bool {
	_, ok := unindent(line)
	return ok
}

// unindent strips one level of admonition indentation.
func unindent(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "    "):
		return line[4:], true
	case strings.HasPrefix(line, "\t"):
		return line[1:], true
	}
	return "", false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ReplaceAll(s[size:], "-", " ")
}
