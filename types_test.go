package md2docx

import (
	"errors"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Strategy
		wantErr error
	}{
		{"", StrategyPandoc, nil},
		{"pandoc", StrategyPandoc, nil},
		{"full", StrategyPandoc, nil},
		{"  HTML ", StrategyHTML, nil},
		{"Book", StrategyBook, nil},
		{"latex", "", ErrUnknownStrategy},
		{"docx", "", ErrUnknownStrategy},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseStrategy(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseStrategy(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStrategies_AllParse(t *testing.T) {
	t.Parallel()

	for _, name := range Strategies() {
		if _, err := ParseStrategy(name); err != nil {
			t.Errorf("Strategies() lists %q but ParseStrategy rejects it: %v", name, err)
		}
	}
}

func TestOptions_IgnoreZeroValues(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, WithLogger(nil), WithPandocPath(""), WithClock(nil))

	if c.logger == nil {
		t.Error("WithLogger(nil) cleared the logger")
	}
	if c.cfg.pandocPath != DefaultPandocPath {
		t.Errorf("pandocPath = %q, want default", c.cfg.pandocPath)
	}
	if c.now == nil {
		t.Error("WithClock(nil) cleared the clock")
	}
}
