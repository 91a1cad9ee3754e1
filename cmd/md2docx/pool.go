package main

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalidWorkerCount is returned for --workers outside [0, MaxWorkers].
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// MaxWorkers caps concurrent conversions. Each pandoc run is a separate
// process, so the cap bounds child processes as much as goroutines.
const MaxWorkers = 32

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}

// resolveWorkers determines how many files convert at once.
// Priority: explicit flag > env > GOMAXPROCS-based calculation.
func resolveWorkers(flagWorkers, envWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	if envWorkers > 0 {
		return min(envWorkers, MaxWorkers)
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	n := runtime.GOMAXPROCS(0) / 2
	return max(1, min(n, 8))
}
