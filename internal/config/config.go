package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits for multi-tenant safety.
const (
	MaxTitleLength    = 200  // Book title
	MaxSubtitleLength = 200  // Book subtitle
	MaxNameLength     = 100  // Author name
	MaxDateLength     = 30   // "2025", "auto:MMMM YYYY"
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxStrategyLength = 10   // "pandoc", "html", "book"
	MaxAddrLength     = 255  // host:port
)

// Strategies lists the strategy names accepted in conversion.strategy.
var Strategies = []string{"pandoc", "full", "html", "book"}

// Defaults for fields left empty.
const (
	DefaultStrategy          = "pandoc"
	DefaultTimeout           = 2 * time.Minute
	DefaultAddr              = ":8080"
	DefaultMaxBodyBytes      = 10 << 20
	DefaultRequestsPerMinute = 60
)

// Config holds all configuration for document generation.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Conversion ConversionConfig `yaml:"conversion"`
	Book       BookConfig       `yaml:"book"`
	Assets     AssetsConfig     `yaml:"assets"`
	Server     ServerConfig     `yaml:"server"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// ConversionConfig selects and tunes the conversion strategy.
type ConversionConfig struct {
	Strategy   string `yaml:"strategy"`   // pandoc|full, html, book (default: pandoc)
	Template   string `yaml:"template"`   // Path to a .docx template (pandoc and html only)
	PandocPath string `yaml:"pandocPath"` // Empty = look up "pandoc" in PATH
	Timeout    string `yaml:"timeout"`    // Go duration, e.g. "90s" (default: 2m)
}

// BookConfig holds front matter for the book strategy.
type BookConfig struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"` // Default: "A Novel"
	Author   string `yaml:"author"`
	Year     string `yaml:"year"` // Literal, "auto" or "auto:FORMAT" (default: current year)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// ServerConfig tunes the HTTP endpoint started by "serve".
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	MaxBodyBytes      int64  `yaml:"maxBodyBytes"`
	RequestsPerMinute int    `yaml:"requestsPerMinute"`
}

// TimeoutDuration parses Conversion.Timeout, returning DefaultTimeout when empty.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Conversion.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Conversion.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: conversion.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: conversion.timeout: must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., env overrides, API adapters).
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"conversion.strategy", c.Conversion.Strategy, MaxStrategyLength},
		{"conversion.template", c.Conversion.Template, MaxPathLength},
		{"conversion.pandocPath", c.Conversion.PandocPath, MaxPathLength},
		{"book.title", c.Book.Title, MaxTitleLength},
		{"book.subtitle", c.Book.Subtitle, MaxSubtitleLength},
		{"book.author", c.Book.Author, MaxNameLength},
		{"book.year", c.Book.Year, MaxDateLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if s := c.Conversion.Strategy; s != "" && !slices.Contains(Strategies, strings.ToLower(s)) {
		return fmt.Errorf("%w: conversion.strategy: %q (must be one of %s)",
			ErrInvalidValue, s, strings.Join(Strategies, ", "))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes: must not be negative", ErrInvalidValue)
	}
	if c.Server.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: server.requestsPerMinute: must not be negative", ErrInvalidValue)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Conversion: ConversionConfig{Strategy: DefaultStrategy},
		Server: ServerConfig{
			Addr:              DefaultAddr,
			MaxBodyBytes:      DefaultMaxBodyBytes,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields omitted from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations resolveConfigPath tries for name,
// in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-md2docx", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2docx/
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
