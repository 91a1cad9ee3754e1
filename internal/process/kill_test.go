package process

// Notes:
// - KillProcessGroup: only an invalid PID is exercised directly. PID 0 would
//   kill the current process group and real PIDs are unsafe targets.
// - Group kill on cancel is exercised with a real child in the unix test.

import (
	"os/exec"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

// ---------------------------------------------------------------------------
// TestConfigure - Command wiring
// ---------------------------------------------------------------------------

func TestConfigure_SetsCancelAndWaitDelay(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	Configure(cmd)

	if cmd.Cancel == nil {
		t.Error("Cancel not set")
	}
	if cmd.WaitDelay != waitDelay {
		t.Errorf("WaitDelay = %v, want %v", cmd.WaitDelay, waitDelay)
	}
}
