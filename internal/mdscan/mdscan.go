// Package mdscan classifies Markdown source line by line into headings,
// blank lines and body text.
//
// It is deliberately shallow: only ATX headings of level 1 to 3 are
// recognized, and every other line is body text taken literally. Block
// constructs such as lists, code fences or emphasis are not interpreted.
package mdscan

import (
	"iter"
	"strings"
)

// MaxHeadingLevel is the deepest heading level recognized.
const MaxHeadingLevel = 3

// Kind classifies a line.
type Kind int

// Line kinds.
const (
	Body Kind = iota
	Blank
	Heading
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Blank:
		return "blank"
	default:
		return "body"
	}
}

// Line is one classified source line.
// Level is set only for headings. Text is the heading text after the marker
// or the trimmed body line, both with surrounding whitespace removed.
type Line struct {
	Kind  Kind
	Level int
	Text  string
}

// Scan returns a lazy sequence of the classified lines of text.
// Each range over the sequence re-reads text from the start.
// CRLF and lone CR line endings are treated as LF, and a trailing newline
// does not produce an extra blank line.
func Scan(text string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		normalized := normalizeNewlines(text)
		for raw := range strings.Lines(normalized) {
			if !yield(Classify(strings.TrimSuffix(raw, "\n"))) {
				return
			}
		}
	}
}

// Classify classifies a single line without its terminator.
// A heading marker must start the line: indented markers are body text.
func Classify(line string) Line {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Line{Kind: Blank}
	}
	if level, text, ok := parseHeading(line); ok {
		return Line{Kind: Heading, Level: level, Text: text}
	}
	return Line{Kind: Body, Text: trimmed}
}

// ChapterTitles returns the text of every level-1 heading in order.
// Duplicate titles are kept so positions line up with Scan.
func ChapterTitles(text string) []string {
	var titles []string
	for line := range Scan(text) {
		if line.Kind == Heading && line.Level == 1 {
			titles = append(titles, line.Text)
		}
	}
	return titles
}

// parseHeading matches a line starting with 1 to MaxHeadingLevel '#'
// characters immediately followed by a space.
func parseHeading(line string) (level int, text string, ok bool) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > MaxHeadingLevel || n >= len(line) || line[n] != ' ' {
		return 0, "", false
	}
	return n, strings.TrimSpace(line[n+1:]), true
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
