// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup starts child processes in their own process group so the
// whole tree (ffmpeg and anything it forks) can be signalled at once.
package procgroup

import (
	"os/exec"
	"time"

	"github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/metrics"
)

// Set configures the command to start in a new process group.
// Mandatory for Kill and Terminate to reach grandchildren.
func Set(cmd *exec.Cmd) {
	set(cmd)
}

// Kill sends sig to the process group of cmd. A nil command, an unstarted
// command, or an already exited group is not an error.
func Kill(cmd *exec.Cmd, sig Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return kill(cmd.Process.Pid, sig)
}

// Terminate stops the process group of cmd: SIGTERM first, SIGKILL once grace
// expires. waitCh must deliver the result of cmd.Wait; Terminate consumes it
// and returns that result.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	logger := log.WithComponent("procgroup")
	pid := cmd.Process.Pid

	metrics.IncProcessTerminate("SIGTERM", signalResult(Kill(cmd, SIGTERM)))

	select {
	case err := <-waitCh:
		return err
	case <-time.After(grace):
	}

	logger.Warn().
		Str("event", "procgroup.sigkill").
		Int(log.FieldPID, pid).
		Dur("grace", grace).
		Msg("grace period exceeded, sending SIGKILL to process group")
	metrics.IncProcessTerminate("SIGKILL", signalResult(Kill(cmd, SIGKILL)))

	// SIGKILL cannot be ignored, so Wait returns.
	return <-waitCh
}

func signalResult(err error) string {
	if err == nil {
		return "sent"
	}
	return "error"
}
