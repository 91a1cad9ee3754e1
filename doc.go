// Package md2docx converts Markdown documents to Word (.docx) files.
//
// # Quick Start
//
// Create a converter and convert markdown:
//
//	conv, err := md2docx.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, md2docx.Input{
//	    Markdown: "# Hello\n\nWorld",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.docx", result.DOCX, 0644)
//
// A Converter holds no per-request state and is safe for concurrent use.
//
// # Strategies
//
// Input.Strategy picks one of three conversion paths:
//
//   - StrategyPandoc (alias "full", the default) writes the markdown to a
//     scratch directory and runs pandoc. Input.Template is passed as
//     --reference-doc.
//   - StrategyHTML renders markdown to HTML with Goldmark (GFM, footnotes,
//     definition lists, syntax highlighting), sanitizes it and maps each
//     element onto a paragraph style. With a template the body is appended
//     after the template's own content and takes on its styles.
//   - StrategyBook splits the markdown on level-1 headings into chapters and
//     adds a title page, a copyright page and a table of contents.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := md2docx.NewConverter(
//	    md2docx.WithTimeout(30 * time.Second),
//	    md2docx.WithPandocPath("/opt/pandoc/bin/pandoc"),
//	    md2docx.WithLogger(logger),
//	    md2docx.WithAssetPath("/path/to/custom/assets"),
//	)
//
// Asset directory structure:
//
//	assets/
//	└── texts/
//	    └── copyright.tmpl
//
// # Errors
//
// Convert returns a *ConversionError whose Kind is one of EmptyInput,
// ExternalToolUnavailable, ExternalToolFailed, MalformedTemplate or
// UnexpectedTransformError. Match kinds with errors.Is against the sentinel
// errors:
//
//	if errors.Is(err, md2docx.ErrExternalToolUnavailable) {
//	    // pandoc is not installed
//	}
//
// ConversionError.Hint holds remediation text and Diagnostic the captured
// stderr of a failed pandoc run.
//
// # External Tools
//
// StrategyPandoc requires pandoc in PATH, or at the path given to
// WithPandocPath. The other strategies run entirely in-process.
package md2docx
