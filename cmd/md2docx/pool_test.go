package main

import (
	"errors"
	"runtime"
	"testing"
)

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{1, false},
		{MaxWorkers, false},
		{MaxWorkers + 1, true},
	}

	for _, tt := range tests {
		err := validateWorkers(tt.n)
		if tt.wantErr && !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("validateWorkers(%d) = %v, want ErrInvalidWorkerCount", tt.n, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("validateWorkers(%d) unexpected error: %v", tt.n, err)
		}
	}
}

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		flagWorkers int
		envWorkers  int
		want        int
	}{
		{"flag wins", 4, 6, 4},
		{"env used without flag", 0, 6, 6},
		{"env capped", 0, MaxWorkers * 2, MaxWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveWorkers(tt.flagWorkers, tt.envWorkers); got != tt.want {
				t.Errorf("resolveWorkers(%d, %d) = %d, want %d", tt.flagWorkers, tt.envWorkers, got, tt.want)
			}
		})
	}
}

func TestResolveWorkers_Auto(t *testing.T) {
	t.Parallel()

	got := resolveWorkers(0, 0)
	if got < 1 || got > 8 {
		t.Errorf("resolveWorkers(0, 0) = %d, want within [1, 8]", got)
	}
	if want := max(1, min(runtime.GOMAXPROCS(0)/2, 8)); got != want {
		t.Errorf("resolveWorkers(0, 0) = %d, want %d", got, want)
	}
}
