package main

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()

	t.Run("Now returns real time", func(t *testing.T) {
		before := time.Now()
		got := env.Now()
		after := time.Now()

		if got.Before(before) || got.After(after) {
			t.Errorf("Now() = %v, should be between %v and %v", got, before, after)
		}
	})

	t.Run("Stdout is os.Stdout", func(t *testing.T) {
		if env.Stdout != os.Stdout {
			t.Error("Stdout should be os.Stdout")
		}
	})

	t.Run("Stderr is os.Stderr", func(t *testing.T) {
		if env.Stderr != os.Stderr {
			t.Error("Stderr should be os.Stderr")
		}
	})

	t.Run("NewConverter builds library converter", func(t *testing.T) {
		conv, err := env.NewConverter()
		if err != nil {
			t.Fatalf("NewConverter() error = %v", err)
		}
		if conv == nil {
			t.Error("converter should not be nil")
		}
	})
}

func TestEnvironment_Logger(t *testing.T) {
	t.Parallel()

	injected := zap.NewExample()

	t.Run("quiet uses injected logger", func(t *testing.T) {
		t.Parallel()

		env := &Environment{Logger: injected}
		got, err := env.logger(false)
		if err != nil {
			t.Fatal(err)
		}
		if got != injected {
			t.Error("expected injected logger")
		}
	})

	t.Run("nil logger falls back to nop", func(t *testing.T) {
		t.Parallel()

		got, err := (&Environment{}).logger(false)
		if err != nil || got == nil {
			t.Fatalf("logger() = %v, %v", got, err)
		}
	})

	t.Run("verbose builds development logger", func(t *testing.T) {
		t.Parallel()

		env := &Environment{Logger: injected}
		got, err := env.logger(true)
		if err != nil {
			t.Fatal(err)
		}
		if got == injected {
			t.Error("verbose should not reuse the injected logger")
		}
		if !got.Core().Enabled(zap.DebugLevel) {
			t.Error("development logger should enable debug level")
		}
	})
}
