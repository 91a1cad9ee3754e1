package md2docx

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2docx/internal/docx"
)

// MIMEType is the content type of the produced documents.
const MIMEType = docx.MIMEType

// Strategy selects how Markdown becomes a document.
type Strategy string

// Conversion strategies.
const (
	// StrategyPandoc shells out to pandoc for full Markdown fidelity.
	StrategyPandoc Strategy = "pandoc"
	// StrategyHTML renders Markdown to HTML in-process and maps the HTML
	// onto document styles, optionally inside a template.
	StrategyHTML Strategy = "html"
	// StrategyBook assembles a novel-style document: title page,
	// copyright page, contents and numbered chapters.
	StrategyBook Strategy = "book"
)

// DefaultStrategy is used when Input.Strategy is empty.
const DefaultStrategy = StrategyPandoc

var strategyNames = map[string]Strategy{
	"pandoc": StrategyPandoc,
	"full":   StrategyPandoc,
	"html":   StrategyHTML,
	"book":   StrategyBook,
}

// Strategies returns the accepted strategy names, aliases included.
func Strategies() []string {
	return []string{"pandoc", "full", "html", "book"}
}

// ParseStrategy maps a case-insensitive name to a Strategy.
// An empty name yields DefaultStrategy.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultStrategy, nil
	}
	s, ok := strategyNames[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Input is one conversion request.
type Input struct {
	Markdown string
	Strategy Strategy // empty = DefaultStrategy
	Template []byte   // .docx reference document; empty = none. Ignored by StrategyBook.

	// Book front matter, used by StrategyBook. Title and Author also fill
	// the document properties of StrategyHTML output.
	Title    string
	Author   string
	Subtitle string
	Year     string // literal, "auto" or "auto:FORMAT"; empty = current year
}

// Result is a successful conversion.
type Result struct {
	DOCX        []byte
	Strategy    Strategy
	ContentType string
	RequestID   string
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout    time.Duration
	assetPath  string
	pandocPath string
}

// Defaults used when no option overrides them.
const (
	DefaultTimeout    = 2 * time.Minute
	DefaultPandocPath = "pandoc"
)

// WithTimeout sets the per-conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2docx: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPandocPath sets the pandoc executable, looked up in PATH when it has
// no separator.
func WithPandocPath(path string) Option {
	return func(c *Converter) {
		if path != "" {
			c.cfg.pandocPath = path
		}
	}
}

// WithCommandRunner replaces the process runner used by StrategyPandoc.
func WithCommandRunner(r CommandRunner) Option {
	return func(c *Converter) {
		c.runner = r
	}
}

// WithAssetPath overrides the embedded book texts with files under path.
// Missing files fall back to the embedded versions.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithClock sets the clock used for default years and document timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}
