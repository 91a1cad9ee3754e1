package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "basic heading",
			input:        "# Hello World",
			wantContains: []string{"<!DOCTYPE html>", "<h1", "Hello World", "</h1>"},
		},
		{
			name:         "multiple headings with IDs",
			input:        "# First\n## Second\n### Third",
			wantContains: []string{"<h1", "<h2", "<h3", `id="`},
		},
		{
			name:         "soft breaks stay soft",
			input:        "Line one\nLine two",
			wantContains: []string{"<p>Line one\nLine two</p>"},
			wantNot:      []string{"<br"},
		},
		{
			name:         "GFM table",
			input:        "| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<thead>", "<tbody>", "<th>", "<td>"},
		},
		{
			name:         "task list",
			input:        "- [x] done\n- [ ] todo",
			wantContains: []string{`type="checkbox"`, "checked"},
		},
		{
			name:         "footnote",
			input:        "Text[^1].\n\n[^1]: The note.",
			wantContains: []string{"#fn:1", "The note."},
		},
		{
			name:         "definition list",
			input:        "Term\n: Definition",
			wantContains: []string{"<dl>", "<dt>Term</dt>", "<dd>Definition</dd>"},
		},
		{
			name:         "highlighted code uses classes",
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{"<pre", "chroma", "main"},
			wantNot:      []string{"style=\"color"},
		},
		{
			name:         "TOC marker kept as text",
			input:        "[TOC]",
			wantContains: []string{"<p>[TOC]</p>"},
		},
		{
			name:    "raw HTML omitted",
			input:   "<script>alert(1)</script>",
			wantNot: []string{"<script>"},
		},
	}

	converter := NewGoldmarkConverter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := converter.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() unexpected error: %v", err)
			}

			for _, want := range tt.wantContains {
				if !strings.Contains(result, want) {
					t.Errorf("ToHTML() result should contain %q\nGot:\n%s", want, result)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(result, notWant) {
					t.Errorf("ToHTML() result should NOT contain %q\nGot:\n%s", notWant, result)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_ContextCancellation(t *testing.T) {
	t.Parallel()

	converter := NewGoldmarkConverter()

	t.Run("cancelled context returns error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := converter.ToHTML(ctx, "# Test")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("deadline exceeded returns error", func(t *testing.T) {
		t.Parallel()

		// Already expired to avoid flaky timing
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		_, err := converter.ToHTML(ctx, "# Test")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})
}
