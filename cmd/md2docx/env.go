package main

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	md2docx "github.com/alnah/go-md2docx"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, process environment and converter construction.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	Logger  *zap.Logger // used when --verbose is off

	// NewConverter builds the converter shared by every file of a run.
	NewConverter func(opts ...md2docx.Option) (CLIConverter, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:          time.Now,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Getenv:       os.Getenv,
		Environ:      os.Environ,
		Logger:       zap.NewNop(),
		NewConverter: newLibraryConverter,
	}
}

func newLibraryConverter(opts ...md2docx.Option) (CLIConverter, error) {
	return md2docx.NewConverter(opts...)
}

// logger returns a development logger when verbose is set, the injected
// logger otherwise.
func (e *Environment) logger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	if e.Logger == nil {
		return zap.NewNop(), nil
	}
	return e.Logger, nil
}
