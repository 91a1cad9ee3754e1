package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrInvalidFlags wraps flag parsing failures.
var ErrInvalidFlags = errors.New("invalid flags")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// conversionFlags select and tune the conversion strategy.
type conversionFlags struct {
	strategy   string
	template   string
	pandocPath string
	timeout    string
	assetPath  string
}

// bookFlags holds book front matter.
type bookFlags struct {
	title    string
	subtitle string
	author   string
	year     string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	conversion conversionFlags
	book       bookFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common       commonFlags
	addr         string
	maxBodyBytes int64
	rateLimit    int
	conversion   conversionFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

// addConversionFlags adds strategy flags to a FlagSet.
func addConversionFlags(fs *flag.FlagSet, f *conversionFlags) {
	fs.StringVarP(&f.strategy, "strategy", "s", "", "conversion strategy: pandoc, html, book")
	fs.StringVar(&f.template, "template", "", ".docx template (pandoc reference doc, html base document)")
	fs.StringVar(&f.pandocPath, "pandoc-path", "", "pandoc executable")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addBookFlags adds book front matter flags to a FlagSet.
func addBookFlags(fs *flag.FlagSet, f *bookFlags) {
	fs.StringVar(&f.title, "title", "", "document title (\"\" = file name)")
	fs.StringVar(&f.subtitle, "subtitle", "", "book subtitle")
	fs.StringVar(&f.author, "author", "", "author name")
	fs.StringVar(&f.year, "year", "", "copyright year: literal, \"auto\" or \"auto:FORMAT\"")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
// Parsing and shell completion both build from it.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addConversionFlags(fs, &f.conversion)
	addBookFlags(fs, &f.book)
	return fs
}

// newServeFlagSet registers every serve flag on a fresh FlagSet.
func newServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default \":8080\")")
	fs.Int64Var(&f.maxBodyBytes, "max-body", 0, "request body limit in bytes")
	fs.IntVar(&f.rateLimit, "rate-limit", 0, "requests per minute per client IP")

	addCommonFlags(fs, &f.common)
	addConversionFlags(fs, &f.conversion)
	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, flagError(err, func() { printConvertUsage(usage) })
	}

	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, usage io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newServeFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, flagError(err, func() { printServeUsage(usage) })
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrInvalidFlags, fs.Arg(0))
	}

	return f, nil
}

// flagError prints usage and passes flag.ErrHelp through untouched so
// callers can exit 0 on --help.
func flagError(err error, printUsage func()) error {
	printUsage()
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidFlags, err)
}
