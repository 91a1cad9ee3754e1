package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-md2docx/internal/config"
)

func getenvFrom(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Reading MD2DOCX_* variables
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	got := loadEnvConfig(getenvFrom(map[string]string{
		"MD2DOCX_CONFIG":        "work",
		"MD2DOCX_STRATEGY":      "html",
		"MD2DOCX_PANDOC":        "/opt/pandoc",
		"MD2DOCX_TIMEOUT":       "45s",
		"MD2DOCX_INPUT_DIR":     "in",
		"MD2DOCX_OUTPUT_DIR":    "out",
		"MD2DOCX_TEMPLATE":      "ref.docx",
		"MD2DOCX_ASSET_PATH":    "assets",
		"MD2DOCX_BOOK_TITLE":    "T",
		"MD2DOCX_BOOK_SUBTITLE": "S",
		"MD2DOCX_BOOK_AUTHOR":   "A",
		"MD2DOCX_BOOK_YEAR":     "2020",
		"MD2DOCX_WORKERS":       "3",
		"MD2DOCX_ADDR":          ":9000",
	}))

	want := &envConfig{
		ConfigPath:   "work",
		Strategy:     "html",
		PandocPath:   "/opt/pandoc",
		Timeout:      "45s",
		InputDir:     "in",
		OutputDir:    "out",
		Template:     "ref.docx",
		AssetPath:    "assets",
		BookTitle:    "T",
		BookSubtitle: "S",
		BookAuthor:   "A",
		BookYear:     "2020",
		Workers:      3,
		Addr:         ":9000",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvConfig_InvalidWorkers(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"abc", "0", "-2", ""} {
		got := loadEnvConfig(getenvFrom(map[string]string{"MD2DOCX_WORKERS": v}))
		if got.Workers != 0 {
			t.Errorf("MD2DOCX_WORKERS=%q gave %d, want 0", v, got.Workers)
		}
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides config file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Book.Title = "From File"
	cfg.Book.Author = "File Author"

	applyEnvConfig(&envConfig{
		Strategy:  "book",
		BookTitle: "From Env",
		OutputDir: "out",
		Addr:      "127.0.0.1:9999",
	}, cfg)

	if cfg.Conversion.Strategy != "book" {
		t.Errorf("Strategy = %q", cfg.Conversion.Strategy)
	}
	if cfg.Book.Title != "From Env" {
		t.Errorf("Title = %q, env should override file", cfg.Book.Title)
	}
	if cfg.Book.Author != "File Author" {
		t.Errorf("Author = %q, unset env must keep file value", cfg.Book.Author)
	}
	if cfg.Output.DefaultDir != "out" {
		t.Errorf("OutputDir = %q", cfg.Output.DefaultDir)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"MD2DOCX_STRATEGY=html",
		"MD2DOCX_AUTOR=typo",
		"MD2PDF_STYLE=other-tool",
		"HOME=/root",
		"MD2DOCX_EMPTY=",
	})

	out := buf.String()
	if !strings.Contains(out, "MD2DOCX_AUTOR") || !strings.Contains(out, "MD2DOCX_EMPTY") {
		t.Errorf("missing warnings:\n%s", out)
	}
	if strings.Contains(out, "MD2DOCX_STRATEGY") || strings.Contains(out, "MD2PDF_STYLE") || strings.Contains(out, "HOME") {
		t.Errorf("unexpected warning:\n%s", out)
	}
}
