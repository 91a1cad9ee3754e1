package md2docx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/process"
)

// Scratch file names inside the per-conversion temp directory.
const (
	scratchInput     = "input.md"
	scratchOutput    = "output.docx"
	scratchReference = "reference.docx"
	tempDirPrefix    = "go-md2docx"
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	// Run executes name with args until it exits or ctx ends.
	// A missing executable is reported as ErrCommandNotFound.
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The child runs in its
// own process group, killed as a whole when ctx ends.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrCommandNotFound, name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- executable chosen by the operator
	process.Configure(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errors.Is(err, exec.ErrNotFound) {
		err = fmt.Errorf("%w: %s: %v", ErrCommandNotFound, name, err)
	}
	return stdout.String(), stderr.String(), err
}

// PandocConverter converts Markdown to .docx by invoking the pandoc CLI.
type PandocConverter struct {
	Runner CommandRunner
	Path   string
}

// NewPandocConverter creates a PandocConverter. An empty path means
// DefaultPandocPath and a nil runner means ExecRunner.
func NewPandocConverter(path string, runner CommandRunner) *PandocConverter {
	if path == "" {
		path = DefaultPandocPath
	}
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &PandocConverter{Runner: runner, Path: path}
}

// Convert writes markdown (and template, if any) to a private temp
// directory, runs pandoc and returns the produced package. The directory is
// removed on every path.
// Failures are *ConversionError values of kind MalformedTemplate,
// ExternalToolUnavailable or ExternalToolFailed; context errors are
// returned unwrapped.
func (c *PandocConverter) Convert(ctx context.Context, markdown string, template []byte) ([]byte, error) {
	if len(template) > 0 {
		if _, err := docx.OpenTemplate(template); err != nil {
			return nil, newError(KindMalformedTemplate, err, hints.ForMalformedTemplate())
		}
	}

	var out []byte
	err := fileutil.WithTempDir(tempDirPrefix, func(dir string) error {
		inPath, err := fileutil.WriteScratch(dir, scratchInput, []byte(markdown))
		if err != nil {
			return err
		}
		outPath := filepath.Join(dir, scratchOutput)

		args := []string{inPath, "-f", "markdown", "-t", "docx", "--standalone", "-o", outPath}
		if len(template) > 0 {
			refPath, err := fileutil.WriteScratch(dir, scratchReference, template)
			if err != nil {
				return err
			}
			args = append(args, "--reference-doc="+refPath)
		}

		_, stderr, err := c.Runner.Run(ctx, c.Path, args...)
		switch {
		case errors.Is(err, ErrCommandNotFound):
			return newError(KindExternalToolUnavailable, err, hints.ForPandocMissing())
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			e := newError(KindExternalToolFailed, err, hints.ForPandocFailed())
			e.Diagnostic = stderr
			return e
		}

		out, err = os.ReadFile(outPath) // #nosec G304 -- path inside our temp dir
		if err != nil {
			e := newError(KindExternalToolFailed, fmt.Errorf("pandoc wrote no output: %w", err), hints.ForPandocFailed())
			e.Diagnostic = stderr
			return e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
