// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/metrics"
	"github.com/ManuGH/hlsforge/internal/procgroup"
	"github.com/rs/zerolog"
)

const (
	// DefaultKillTimeout is the SIGTERM grace period before SIGKILL.
	DefaultKillTimeout = 5 * time.Second
	// DiagnosticLines is the stderr tail attached to failures.
	DiagnosticLines = 20

	maxChunkSize = 1 << 20
)

// ProcessState is the lifecycle state of an encoder process.
type ProcessState int32

const (
	Running ProcessState = iota
	Succeeded
	Failed
)

func (s ProcessState) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("ProcessState(%d)", int32(s))
	}
}

// ExitStatus describes how a process ended.
type ExitStatus struct {
	Code      int
	Reason    string // success, error, canceled
	StartedAt time.Time
	EndedAt   time.Time
}

// ExitError is returned by Process.Wait when the encoder did not exit cleanly.
// Code is the process exit code, or -1 when it was killed by a signal.
type ExitError struct {
	Code        int
	Diagnostics []string
	Err         error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ffmpeg exited with code %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Spec describes one encoder invocation.
type Spec struct {
	Args []string
	// Duration of the input in seconds; progress is only reported when > 0.
	Duration   float64
	OnProgress ProgressFunc
	// Verbose logs every non-progress stderr chunk at debug level.
	Verbose bool
	// Logger carries correlation fields; defaults to the ffmpeg component logger.
	Logger *zerolog.Logger
}

// Runner launches encoder processes from an injected binary path.
type Runner struct {
	binPath     string
	killTimeout time.Duration
	ringSize    int
}

// Option configures a Runner.
type Option func(*Runner)

// WithKillTimeout sets the grace period between SIGTERM and SIGKILL on cancellation.
func WithKillTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.killTimeout = d
		}
	}
}

// NewRunner creates a runner for binPath ("ffmpeg" when empty).
func NewRunner(binPath string, opts ...Option) *Runner {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	r := &Runner{
		binPath:     binPath,
		killTimeout: DefaultKillTimeout,
		ringSize:    DefaultRingSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BinPath returns the encoder binary this runner executes.
func (r *Runner) BinPath() string { return r.binPath }

// Start launches one encoder process in its own process group. Cancelling ctx
// terminates the group; the outcome is then reported through Wait.
func (r *Runner) Start(ctx context.Context, spec Spec) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := log.WithContext(ctx, log.WithComponent("ffmpeg"))
	if spec.Logger != nil {
		logger = *spec.Logger
	}

	// #nosec G204 -- binary is operator-configured, args are built by BuildHLSArgs
	cmd := exec.Command(r.binPath, spec.Args...)
	procgroup.Set(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		metrics.IncFFmpegStart("error")
		return nil, fmt.Errorf("failed to pipe stderr: %w", err)
	}

	p := &Process{
		cmd:    cmd,
		spec:   spec,
		ring:   NewLineRing(r.ringSize),
		done:   make(chan struct{}),
		logger: logger,
	}

	if err := cmd.Start(); err != nil {
		metrics.IncFFmpegStart("error")
		return nil, fmt.Errorf("ffmpeg start failed: %w", err)
	}
	metrics.IncFFmpegStart("ok")
	p.startedAt = time.Now()

	logger.Info().
		Str("event", "ffmpeg.start").
		Int(log.FieldPID, cmd.Process.Pid).
		Str("command", cmd.String()).
		Msg("starting ffmpeg process")

	// All stderr must be drained before cmd.Wait closes the pipe.
	var ioWg sync.WaitGroup
	ioWg.Add(1)
	go func() {
		defer ioWg.Done()
		p.consume(stderr)
	}()

	waitCh := make(chan error, 1)
	go func() {
		ioWg.Wait()
		waitCh <- cmd.Wait()
	}()

	go p.supervise(ctx, waitCh, r.killTimeout)
	return p, nil
}

// Process is a running encoder. All methods are safe for concurrent use.
type Process struct {
	cmd       *exec.Cmd
	spec      Spec
	ring      *LineRing
	logger    zerolog.Logger
	startedAt time.Time

	state atomic.Int32
	done  chan struct{}

	// written once before done is closed
	status ExitStatus
	err    error
}

// PID returns the operating system process ID.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// State returns the current lifecycle state.
func (p *Process) State() ProcessState { return ProcessState(p.state.Load()) }

// Done is closed once the process has exited and its output is drained.
func (p *Process) Done() <-chan struct{} { return p.done }

// Wait blocks until the process has exited. A non-nil error is an *ExitError;
// after cancellation it also matches the context error with errors.Is.
func (p *Process) Wait() (ExitStatus, error) {
	<-p.done
	return p.status, p.err
}

// Diagnostics returns up to n of the most recent stderr lines.
func (p *Process) Diagnostics(n int) []string {
	return p.ring.LastN(n)
}

func (p *Process) supervise(ctx context.Context, waitCh <-chan error, grace time.Duration) {
	var waitErr error
	canceled := false

	select {
	case waitErr = <-waitCh:
	case <-ctx.Done():
		canceled = true
		p.logger.Info().
			Str("event", "ffmpeg.cancel").
			Int(log.FieldPID, p.PID()).
			Msg("context done, terminating ffmpeg process group")
		waitErr = procgroup.Terminate(p.cmd, waitCh, grace)
	}

	p.finish(waitErr, canceled, ctx.Err())
}

func (p *Process) finish(waitErr error, canceled bool, ctxErr error) {
	status := ExitStatus{StartedAt: p.startedAt, EndedAt: time.Now()}

	switch {
	case waitErr == nil:
		// A clean exit that raced with cancellation still counts as success.
		status.Reason = "success"
		p.state.Store(int32(Succeeded))
	default:
		status.Code = exitCode(waitErr)
		cause := waitErr
		status.Reason = "error"
		if canceled {
			status.Reason = "canceled"
			cause = ctxErr
		}
		p.err = &ExitError{
			Code:        status.Code,
			Diagnostics: p.ring.LastN(DiagnosticLines),
			Err:         cause,
		}
		p.state.Store(int32(Failed))
	}
	p.status = status
	metrics.IncFFmpegExit(status.Reason)

	evt := p.logger.Info()
	if status.Reason == "error" {
		evt = p.logger.Warn()
	}
	evt.Str("event", "ffmpeg.exit").
		Int(log.FieldPID, p.PID()).
		Int(log.FieldExitCode, status.Code).
		Str("reason", status.Reason).
		Dur("runtime", status.EndedAt.Sub(status.StartedAt)).
		Msg("ffmpeg process exited")

	close(p.done)
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (p *Process) consume(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChunkSize)
	scanner.Split(ScanChunks)

	for scanner.Scan() {
		chunk := strings.TrimSpace(scanner.Text())
		if chunk == "" {
			continue
		}
		p.ring.Add(chunk)
		if !p.handleProgress(chunk) && p.spec.Verbose {
			p.logger.Debug().Str(log.FieldStderr, chunk).Msg("ffmpeg")
		}
	}
	if err := scanner.Err(); err != nil {
		p.logger.Warn().Err(err).Str("event", "ffmpeg.stderr_scan_failed").Msg("stderr scan aborted, discarding remainder")
		// Keep the pipe drained so the encoder never blocks on a full buffer.
		_, _ = io.Copy(io.Discard, stderr)
	}
}

// handleProgress reports whether chunk carried a progress event.
func (p *Process) handleProgress(chunk string) bool {
	if p.spec.Duration <= 0 {
		return false
	}
	elapsed, ok := ParseElapsedSeconds(chunk)
	if !ok {
		return false
	}
	metrics.IncProgressEvent()
	if p.spec.OnProgress != nil {
		p.notify(Progress{
			Elapsed:  elapsed,
			Duration: p.spec.Duration,
			Percent:  Percent(elapsed, p.spec.Duration),
		})
	}
	return true
}

func (p *Process) notify(ev Progress) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error().
				Str("event", "ffmpeg.observer_panic").
				Interface("panic", rec).
				Msg("progress observer panicked")
		}
	}()
	p.spec.OnProgress(ev)
}
