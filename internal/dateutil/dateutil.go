// Package dateutil resolves the date stamp printed on a book's copyright
// page from a literal value or an "auto" expression evaluated against a
// caller-supplied clock.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat reports an unusable "auto:FORMAT" expression.
var ErrInvalidFormat = errors.New("invalid date format")

// maxFormatLength bounds user-supplied format strings.
const maxFormatLength = 50

// autoKeyword selects the clock; "auto" alone prints the year.
const autoKeyword = "auto"

// tokens is searched in order, so longer tokens come first.
var tokens = [...]struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

var presets = map[string]string{
	"year":     "YYYY",
	"month":    "MMMM YYYY",
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Resolve turns a copyright year setting into display text.
//
//	""  or "auto"   current year
//	"auto:FORMAT"   now formatted with YYYY, YY, MMMM, MMM, MM, M, DD, D
//	"auto:iso"      named preset (year, month, iso, european, us, long)
//	anything else   returned trimmed, as written
func Resolve(value string, now time.Time) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = autoKeyword
	}

	head, format, hasFormat := strings.Cut(value, ":")
	if !strings.EqualFold(head, autoKeyword) {
		if strings.HasPrefix(strings.ToLower(value), autoKeyword) {
			return "", fmt.Errorf("%w: %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidFormat, value)
		}
		return value, nil
	}
	if !hasFormat {
		format = presets["year"]
	}
	if preset, ok := presets[strings.ToLower(format)]; ok {
		format = preset
	}

	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return now.Format(layout), nil
}

// Layout converts a token format into a time.Format layout. Text inside
// square brackets is copied literally; other characters pass through.
func Layout(format string) (string, error) {
	switch {
	case format == "":
		return "", fmt.Errorf("%w: empty format", ErrInvalidFormat)
	case len(format) > maxFormatLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidFormat, maxFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if literal, ok := strings.CutPrefix(rest, "["); ok {
			text, after, closed := strings.Cut(literal, "]")
			if !closed {
				return "", fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidFormat, format)
			}
			b.WriteString(text)
			rest = after
			continue
		}
		rest = writeToken(&b, rest)
	}
	return b.String(), nil
}

// writeToken consumes one token, or one byte when none matches.
func writeToken(b *strings.Builder, s string) string {
	for _, t := range tokens {
		if after, ok := strings.CutPrefix(s, t.token); ok {
			b.WriteString(t.layout)
			return after
		}
	}
	b.WriteByte(s[0])
	return s[1:]
}
