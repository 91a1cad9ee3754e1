package md2docx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-md2docx/internal/assets"
	"github.com/alnah/go-md2docx/internal/book"
	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.DocumentAppender     = (*pipeline.HTMLDocumentConverter)(nil)
	_ CommandRunner                 = (*ExecRunner)(nil)
)

// Converter dispatches Markdown to one of the conversion strategies.
// It holds only immutable configuration and is safe for concurrent use;
// every call builds its own document and temp directory.
type Converter struct {
	cfg           converterConfig
	logger        *zap.Logger
	runner        CommandRunner
	now           func() time.Time
	texts         assets.AssetLoader
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	appender      pipeline.DocumentAppender
	pandoc        *PandocConverter
	book          *book.Assembler
}

// NewConverter creates a Converter with default configuration.
// Returns ErrInvalidAssetPath if WithAssetPath names an unusable directory.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:           converterConfig{timeout: DefaultTimeout, pandocPath: DefaultPandocPath},
		logger:        zap.NewNop(),
		now:           time.Now,
		texts:         assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.CommonMarkPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		appender:      pipeline.NewHTMLDocumentConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.texts = resolver
	}

	c.pandoc = NewPandocConverter(c.cfg.pandocPath, c.runner)
	c.book = book.NewAssembler(c.texts, c.now)
	return c, nil
}

// Convert runs one strategy over input and returns the .docx package.
// Every failure is a *ConversionError; blank Markdown fails with
// ErrEmptyInput before any strategy runs. Panics inside a strategy are
// recovered as ErrUnexpectedTransform.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := c.logger.With(zap.String("request_id", requestID))

	strategy, parseErr := ParseStrategy(string(input.Strategy))

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ConversionError{
				Kind:     KindUnexpectedTransform,
				Strategy: strategy,
				Err:      fmt.Errorf("internal error: %v", r),
			}
		}
		c.logResult(log, strategy, start, result, err)
	}()

	if parseErr != nil {
		e := newError(KindUnexpectedTransform, parseErr, hints.ForUnknownStrategy(Strategies()))
		e.Strategy = input.Strategy
		return nil, e
	}
	if strings.TrimSpace(input.Markdown) == "" {
		e := newError(KindEmptyInput, nil, hints.ForEmptyInput())
		e.Strategy = strategy
		return nil, e
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	log.Debug("conversion started",
		zap.String("strategy", string(strategy)),
		zap.Int("markdown_bytes", len(input.Markdown)),
		zap.Int("template_bytes", len(input.Template)),
	)

	var data []byte
	switch strategy {
	case StrategyPandoc:
		data, err = c.pandoc.Convert(ctx, input.Markdown, input.Template)
	case StrategyHTML:
		data, err = c.convertHTML(ctx, input)
	case StrategyBook:
		if len(input.Template) > 0 {
			log.Info("template ignored by book strategy")
		}
		data, err = c.convertBook(input)
	}
	if err != nil {
		return nil, classify(err, strategy)
	}

	return &Result{
		DOCX:        data,
		Strategy:    strategy,
		ContentType: MIMEType,
		RequestID:   requestID,
	}, nil
}

// convertHTML renders Markdown through goldmark and maps the HTML onto the
// template, or onto a blank document carrying the style catalog.
func (c *Converter) convertHTML(ctx context.Context, input Input) ([]byte, error) {
	var tmpl *docx.Template
	if len(input.Template) > 0 {
		var err error
		if tmpl, err = docx.OpenTemplate(input.Template); err != nil {
			return nil, newError(KindMalformedTemplate, err, hints.ForMalformedTemplate())
		}
	}

	md := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	htmlContent, err := c.htmlConverter.ToHTML(ctx, md)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	doc := docx.New()
	docx.EnsureRegistered(doc)
	doc.Properties = docx.Properties{Title: input.Title, Author: input.Author, Created: c.now()}

	if err := c.appender.AppendHTML(ctx, doc, htmlContent); err != nil {
		return nil, fmt.Errorf("building document: %w", err)
	}

	if tmpl != nil {
		data, err := tmpl.Merge(doc)
		if errors.Is(err, docx.ErrMalformedTemplate) {
			return nil, newError(KindMalformedTemplate, err, hints.ForMalformedTemplate())
		}
		return data, err
	}
	return doc.Bytes()
}

func (c *Converter) convertBook(input Input) ([]byte, error) {
	return c.book.Assemble(input.Markdown, book.Meta{
		Title:    input.Title,
		Subtitle: input.Subtitle,
		Author:   input.Author,
		Year:     input.Year,
	})
}

// classify wraps stray errors as *ConversionError and stamps the strategy.
func classify(err error, strategy Strategy) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		ce.Strategy = strategy
		return ce
	}

	e := newError(KindUnexpectedTransform, err, "")
	e.Strategy = strategy
	if errors.Is(err, context.DeadlineExceeded) {
		e.Hint = hints.ForTimeout()
	}
	return e
}

func (c *Converter) logResult(log *zap.Logger, strategy Strategy, start time.Time, result *Result, err error) {
	fields := []zap.Field{
		zap.String("strategy", string(strategy)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		log.Warn("conversion failed",
			append(fields, zap.Stringer("kind", KindOf(err)), zap.Error(err))...)
		return
	}
	log.Info("conversion finished", append(fields, zap.Int("docx_bytes", len(result.DOCX)))...)
}
