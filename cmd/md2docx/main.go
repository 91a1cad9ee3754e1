package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	md2docx "github.com/alnah/go-md2docx"
)

// Version is set at build time via ldflags.
var Version = "dev"

var commands = []string{"convert", "serve", "doctor", "version", "help", "completion"}

func main() {
	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if slices.Contains(os.Args, "--verbose") || slices.Contains(os.Args, "-v") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
// A bare markdown path is shorthand for "convert <path>".
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		if !looksLikeMarkdown(cmd) {
			fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
			printUsage(env.Stderr)
			return ExitUsage
		}
		cmd, rest = "convert", args[1:]
	}

	var err error
	switch cmd {
	case "convert":
		err = runConvertCmd(ctx, rest, env)
	case "serve":
		err = runServeCmd(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "go-md2docx %s\n", Version)
	case "help":
		runHelp(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		printError(env, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// printError writes err with its hint. Batch failures were already
// reported per file.
func printError(env *Environment, err error) {
	var be *batchError
	if errors.As(err, &be) {
		fmt.Fprintln(env.Stderr, err)
		return
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, md2docx.HintOf(err))
}

// isCommand reports whether arg names a command. Matching is case sensitive.
func isCommand(arg string) bool {
	return slices.Contains(commands, arg)
}

// looksLikeMarkdown reports whether arg ends in a markdown extension.
func looksLikeMarkdown(arg string) bool {
	return isMarkdownExt(filepath.Ext(arg))
}
