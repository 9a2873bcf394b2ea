// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build windows

package procgroup

import (
	"os"
	"os/exec"
	"syscall"
)

// Signal is the platform signal type.
type Signal = syscall.Signal

const (
	SIGTERM = syscall.SIGTERM
	SIGKILL = syscall.SIGKILL
)

func set(*exec.Cmd) {}

// Windows has no process groups in this sense; SIGTERM is a no-op and the
// caller escalates to SIGKILL after the grace period.
func kill(pid int, sig Signal) error {
	if pid <= 0 || sig != SIGKILL {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Kill(); err != nil && err != os.ErrProcessDone {
		return err
	}
	return nil
}
