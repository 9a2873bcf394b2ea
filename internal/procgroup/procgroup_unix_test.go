// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build unix

package procgroup

import (
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startGroup(t *testing.T, script string) (*exec.Cmd, <-chan error) {
	t.Helper()
	cmd := exec.Command("sh", "-c", script)
	Set(cmd)
	require.NoError(t, cmd.Start())

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()
	return cmd, waitCh
}

func TestSetMakesGroupLeader(t *testing.T) {
	cmd, waitCh := startGroup(t, "sleep 5")
	t.Cleanup(func() { _ = Terminate(cmd, waitCh, 10*time.Millisecond) })

	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	require.NoError(t, err)
	assert.Equal(t, cmd.Process.Pid, pgid)
}

func TestTerminateKillsWholeGroup(t *testing.T) {
	cmd, waitCh := startGroup(t, "sleep 100 & sleep 100")
	pid := cmd.Process.Pid

	err := Terminate(cmd, waitCh, time.Second)
	require.Error(t, err, "a signalled process reports a non-nil wait error")

	// The backgrounded sleep may take a moment to be reaped by init.
	require.Eventually(t, func() bool {
		return syscall.Kill(-pid, syscall.Signal(0)) == syscall.ESRCH
	}, 2*time.Second, 10*time.Millisecond, "process group should be gone")
}

func TestTerminateEscalatesToSIGKILL(t *testing.T) {
	cmd, waitCh := startGroup(t, "trap '' TERM; while :; do sleep 0.05; done")
	time.Sleep(50 * time.Millisecond) // let the shell install the trap

	start := time.Now()
	err := Terminate(cmd, waitCh, 100*time.Millisecond)
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.Equal(t, syscall.SIGKILL, status.Signal())
}

func TestKillNilAndExited(t *testing.T) {
	assert.NoError(t, Kill(nil, SIGTERM))
	assert.NoError(t, Kill(&exec.Cmd{}, SIGTERM))

	cmd, waitCh := startGroup(t, "exit 0")
	require.NoError(t, <-waitCh)
	assert.NoError(t, Kill(cmd, SIGTERM))
}

func TestTerminateNil(t *testing.T) {
	assert.NoError(t, Terminate(nil, nil, time.Millisecond))
}
