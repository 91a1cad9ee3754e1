package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-md2docx/internal/config"
)

const envPrefix = "MD2DOCX_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // MD2DOCX_CONFIG: config file name or path
	Strategy   string // MD2DOCX_STRATEGY: pandoc, html, book
	PandocPath string // MD2DOCX_PANDOC: pandoc executable
	Timeout    string // MD2DOCX_TIMEOUT: per-conversion timeout

	// Tier 2 - I/O
	InputDir  string // MD2DOCX_INPUT_DIR: default input directory
	OutputDir string // MD2DOCX_OUTPUT_DIR: default output directory
	Template  string // MD2DOCX_TEMPLATE: .docx template path
	AssetPath string // MD2DOCX_ASSET_PATH: asset override directory

	// Tier 3 - Book front matter
	BookTitle    string // MD2DOCX_BOOK_TITLE
	BookSubtitle string // MD2DOCX_BOOK_SUBTITLE
	BookAuthor   string // MD2DOCX_BOOK_AUTHOR
	BookYear     string // MD2DOCX_BOOK_YEAR

	// Tier 4 - Runtime
	Workers int    // MD2DOCX_WORKERS: parallel workers
	Addr    string // MD2DOCX_ADDR: serve listen address
}

// knownEnvVars lists valid MD2DOCX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2DOCX_CONFIG":        true,
	"MD2DOCX_STRATEGY":      true,
	"MD2DOCX_PANDOC":        true,
	"MD2DOCX_TIMEOUT":       true,
	"MD2DOCX_INPUT_DIR":     true,
	"MD2DOCX_OUTPUT_DIR":    true,
	"MD2DOCX_TEMPLATE":      true,
	"MD2DOCX_ASSET_PATH":    true,
	"MD2DOCX_BOOK_TITLE":    true,
	"MD2DOCX_BOOK_SUBTITLE": true,
	"MD2DOCX_BOOK_AUTHOR":   true,
	"MD2DOCX_BOOK_YEAR":     true,
	"MD2DOCX_WORKERS":       true,
	"MD2DOCX_ADDR":          true,
	"MD2DOCX_CONTAINER":     true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:   getenv("MD2DOCX_CONFIG"),
		Strategy:     getenv("MD2DOCX_STRATEGY"),
		PandocPath:   getenv("MD2DOCX_PANDOC"),
		Timeout:      getenv("MD2DOCX_TIMEOUT"),
		InputDir:     getenv("MD2DOCX_INPUT_DIR"),
		OutputDir:    getenv("MD2DOCX_OUTPUT_DIR"),
		Template:     getenv("MD2DOCX_TEMPLATE"),
		AssetPath:    getenv("MD2DOCX_ASSET_PATH"),
		BookTitle:    getenv("MD2DOCX_BOOK_TITLE"),
		BookSubtitle: getenv("MD2DOCX_BOOK_SUBTITLE"),
		BookAuthor:   getenv("MD2DOCX_BOOK_AUTHOR"),
		BookYear:     getenv("MD2DOCX_BOOK_YEAR"),
		Addr:         getenv("MD2DOCX_ADDR"),
	}

	if workers := getenv("MD2DOCX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2DOCX_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are merged afterwards
// by mergeFlags, giving: flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setIf(&cfg.Conversion.Strategy, env.Strategy)
	setIf(&cfg.Conversion.PandocPath, env.PandocPath)
	setIf(&cfg.Conversion.Timeout, env.Timeout)
	setIf(&cfg.Conversion.Template, env.Template)

	setIf(&cfg.Input.DefaultDir, env.InputDir)
	setIf(&cfg.Output.DefaultDir, env.OutputDir)
	setIf(&cfg.Assets.BasePath, env.AssetPath)

	setIf(&cfg.Book.Title, env.BookTitle)
	setIf(&cfg.Book.Subtitle, env.BookSubtitle)
	setIf(&cfg.Book.Author, env.BookAuthor)
	setIf(&cfg.Book.Year, env.BookYear)

	setIf(&cfg.Server.Addr, env.Addr)
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
