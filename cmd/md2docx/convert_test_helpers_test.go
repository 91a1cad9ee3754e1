package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	md2docx "github.com/alnah/go-md2docx"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock converter and environment
// ---------------------------------------------------------------------------

// mockConverter is a test double for CLIConverter.
type mockConverter struct {
	mu          sync.Mutex
	calls       []md2docx.Input
	convertFunc func(ctx context.Context, input md2docx.Input) (*md2docx.Result, error)
}

func newMockConverter() *mockConverter {
	return &mockConverter{}
}

func (m *mockConverter) Convert(ctx context.Context, input md2docx.Input) (*md2docx.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	if m.convertFunc != nil {
		return m.convertFunc(ctx, input)
	}

	return &md2docx.Result{
		DOCX:        []byte("PK mock docx"),
		Strategy:    input.Strategy,
		ContentType: md2docx.MIMEType,
		RequestID:   "req-test",
	}, nil
}

func (m *mockConverter) getCalls() []md2docx.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]md2docx.Input{}, m.calls...)
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	vars   map[string]string
	opts   int // options passed to the last NewConverter call
}

func newTestEnv(mock *mockConverter) *testEnv {
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		vars:   map[string]string{},
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return te.vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(te.vars))
			for k, v := range te.vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Logger: zap.NewNop(),
		NewConverter: func(opts ...md2docx.Option) (CLIConverter, error) {
			te.opts = len(opts)
			return mock, nil
		},
	}
	return te
}

// setupTestDir creates a temp directory with the given file structure.
// Files map paths to content. Returns the temp directory path.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return tempDir
}

// runConvertArgs parses args like the convert command and runs it.
func runConvertArgs(t *testing.T, te *testEnv, args ...string) error {
	t.Helper()
	return runConvertCmd(context.Background(), args, te.Environment)
}
