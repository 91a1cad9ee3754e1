package assets

// Notes:
// - The symlink escape test is skipped where symlinks cannot be created
//   (some Windows runners).

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeText creates {dir}/texts/{name}.tmpl with content.
func writeText(t *testing.T, dir, name, content string) {
	t.Helper()

	textsDir := filepath.Join(dir, "texts")
	if err := os.MkdirAll(textsDir, 0o755); err != nil {
		t.Fatalf("failed to create texts dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(textsDir, name+".tmpl"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write text: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestLoadText - Embedded texts
// ---------------------------------------------------------------------------

func TestLoadText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		textName    string
		wantErr     error
		wantContain []string
	}{
		{
			name:        "copyright boilerplate",
			textName:    CopyrightText,
			wantContain: []string{"{{.Year}}", "{{.Author}}", "All rights reserved"},
		},
		{
			name:     "nonexistent text",
			textName: "nonexistent",
			wantErr:  ErrTextNotFound,
		},
		{
			name:     "empty name",
			textName: "",
			wantErr:  ErrInvalidAssetName,
		},
		{
			name:     "path traversal",
			textName: "../secret",
			wantErr:  ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content, err := LoadText(tt.textName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadText(%q) error = %v, want %v", tt.textName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadText(%q) unexpected error: %v", tt.textName, err)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(content, want) {
					t.Errorf("LoadText(%q) missing %q", tt.textName, want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFilesystemLoader - Custom directory loading
// ---------------------------------------------------------------------------

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if loader == nil {
			t.Fatal("NewFilesystemLoader() returned nil")
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		filePath := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(filePath, []byte("test"), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := NewFilesystemLoader(filePath)
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_LoadText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeText(t, dir, "copyright", "(c) {{.Author}}")

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	got, err := loader.LoadText("copyright")
	if err != nil {
		t.Fatalf("LoadText() error = %v", err)
	}
	if got != "(c) {{.Author}}" {
		t.Errorf("LoadText() = %q", got)
	}

	if _, err := loader.LoadText("missing"); !errors.Is(err, ErrTextNotFound) {
		t.Errorf("LoadText(missing) error = %v, want ErrTextNotFound", err)
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeText(t, outside, "secret", "secret")

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "texts"), 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "texts", "copyright.tmpl")
	if err := os.Symlink(filepath.Join(outside, "texts", "secret.tmpl"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if _, err := loader.LoadText("copyright"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadText() error = %v, want ErrPathTraversal", err)
	}
}

// ---------------------------------------------------------------------------
// TestAssetResolver - Custom-first fallback
// ---------------------------------------------------------------------------

func TestAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if r.HasCustomLoader() {
			t.Error("HasCustomLoader() = true for empty path")
		}
		got, err := r.LoadText(CopyrightText)
		if err != nil || !strings.Contains(got, "All rights reserved") {
			t.Errorf("LoadText() = %q, %v", got, err)
		}
	})

	t.Run("custom overrides embedded", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeText(t, dir, CopyrightText, "custom {{.Year}}")

		r, err := NewAssetResolver(dir)
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		got, err := r.LoadText(CopyrightText)
		if err != nil {
			t.Fatalf("LoadText() error = %v", err)
		}
		if got != "custom {{.Year}}" {
			t.Errorf("LoadText() = %q, want custom content", got)
		}
	})

	t.Run("falls back when custom missing", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		got, err := r.LoadText(CopyrightText)
		if err != nil || !strings.Contains(got, "All rights reserved") {
			t.Errorf("LoadText() = %q, %v", got, err)
		}
	})

	t.Run("validation error does not fall back", func(t *testing.T) {
		t.Parallel()

		r, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if _, err := r.LoadText("../x"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadText() error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("invalid base path", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}
