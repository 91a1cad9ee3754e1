//go:build !windows

package process

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestConfigure_CancelKillsGroup(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// The shell forks a sleeping child; both must die with the group.
	cmd := exec.CommandContext(ctx, "sh", "-c", "sleep 30 & wait")
	Configure(cmd)
	if !cmd.SysProcAttr.Setpgid {
		t.Fatal("Setpgid not set")
	}

	start := time.Now()
	err := cmd.Run()
	if err == nil {
		t.Fatal("Run() succeeded, want cancellation error")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run() took %v after cancel", elapsed)
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v", ctx.Err())
	}
}
