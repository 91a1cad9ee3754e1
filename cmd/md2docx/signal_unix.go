//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop a conversion batch or drain the server.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
