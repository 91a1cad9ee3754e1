package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadTemplate = errors.New("failed to read template file")
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input md2docx.Input) (*md2docx.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*md2docx.Converter)(nil)

// conversionParams groups parameters shared by every file of a batch.
type conversionParams struct {
	strategy md2docx.Strategy
	template []byte
	book     config.BookConfig
}

// runConvertCmd parses flags and runs the convert command.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeConversionFlags(&flags.conversion, cfg)
	mergeBookFlags(&flags.book, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	conv, err := buildConverter(cfg, flags.common.verbose, env)
	if err != nil {
		return err
	}

	strategy, err := md2docx.ParseStrategy(cfg.Conversion.Strategy)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForUnknownStrategy(md2docx.Strategies()))
	}

	template, err := loadTemplate(cfg.Conversion.Template)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	files, err := discoverFiles(inputPath, resolveOutputDir(flags.output, cfg))
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	params := &conversionParams{
		strategy: strategy,
		template: template,
		book:     cfg.Book,
	}

	workers := resolveWorkers(flags.workers, envCfg.Workers)
	results := convertBatch(ctx, conv, workers, files, params)

	failed := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return newBatchError(results, failed)
	}

	return nil
}

// resolveConfig loads the config named by flag or MD2DOCX_CONFIG and applies
// environment overrides. No name means defaults.
func resolveConfig(flagConfig string, envCfg *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeConversionFlags merges CLI flags into config. CLI values override config values.
func mergeConversionFlags(flags *conversionFlags, cfg *config.Config) {
	setIf(&cfg.Conversion.Strategy, flags.strategy)
	setIf(&cfg.Conversion.Template, flags.template)
	setIf(&cfg.Conversion.PandocPath, flags.pandocPath)
	setIf(&cfg.Conversion.Timeout, flags.timeout)
	setIf(&cfg.Assets.BasePath, flags.assetPath)
}

// mergeBookFlags merges front matter flags into config.
func mergeBookFlags(flags *bookFlags, cfg *config.Config) {
	setIf(&cfg.Book.Title, flags.title)
	setIf(&cfg.Book.Subtitle, flags.subtitle)
	setIf(&cfg.Book.Author, flags.author)
	setIf(&cfg.Book.Year, flags.year)
}

// buildConverter creates the converter from a validated config.
func buildConverter(cfg *config.Config, verbose bool, env *Environment) (CLIConverter, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	logger, err := env.logger(verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return env.NewConverter(
		md2docx.WithTimeout(timeout),
		md2docx.WithLogger(logger),
		md2docx.WithPandocPath(cfg.Conversion.PandocPath),
		md2docx.WithAssetPath(cfg.Assets.BasePath),
		md2docx.WithClock(env.Now),
	)
}

// loadTemplate reads the .docx template, if any. Content is validated by
// the converter.
func loadTemplate(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadTemplate, err)
	}
	return data, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}
