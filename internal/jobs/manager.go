// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/ManuGH/hlsforge/internal/ffmpeg"
	hflog "github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/platform/fs"
	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/ManuGH/hlsforge/internal/transcode"
)

const (
	// ProgressInterval bounds how often progress is written to the store.
	ProgressInterval = time.Second
	persistTimeout   = 5 * time.Second
)

// Transcoder is the part of *transcode.Transcoder the manager needs.
type Transcoder interface {
	Transcode(ctx context.Context, input, output string, opts transcode.Options) (string, error)
	Cleanup(output string) fs.Report
}

// Config bounds the manager.
type Config struct {
	MaxConcurrent int
	// JobTimeout cancels a job that runs longer; zero disables it.
	JobTimeout time.Duration
	ShowLogs   bool
	// OutputRoot confines job outputs. Request.Output is resolved relative
	// to it and may not name the root itself; with no root every job is
	// rejected.
	OutputRoot string
}

// Manager accepts jobs and runs them in the background.
type Manager struct {
	tr    Transcoder
	store Store
	cfg   Config
	sem   *semaphore.Weighted

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.Mutex
	active map[string]string // output dir -> job id
	closed bool
}

// NewManager creates a manager. MaxConcurrent below 1 is treated as 1.
func NewManager(tr Transcoder, store Store, cfg Config) *Manager {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		tr:      tr,
		store:   store,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		baseCtx: ctx,
		cancel:  cancel,
		active:  make(map[string]string),
	}
}

// Submit validates req, records the job as pending and starts it. A second
// job for an output directory that is still being written is rejected with
// ErrOutputBusy.
func (m *Manager) Submit(ctx context.Context, req Request) (Record, error) {
	if strings.TrimSpace(req.Input) == "" {
		return Record{}, fmt.Errorf("%w: input is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Output) == "" {
		return Record{}, fmt.Errorf("%w: output is required", ErrInvalidRequest)
	}
	if len(req.Renditions) > 0 {
		if err := rendition.Validate(req.Renditions); err != nil {
			return Record{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	output, err := m.resolveOutput(req.Output)
	if err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec := Record{
		ID:        uuid.NewString(),
		Input:     req.Input,
		Output:    output,
		State:     transcode.StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Record{}, ErrShuttingDown
	}
	if owner, busy := m.active[output]; busy {
		m.mu.Unlock()
		return Record{}, fmt.Errorf("%w: %s (job %s)", ErrOutputBusy, output, owner)
	}
	m.active[output] = rec.ID
	m.wg.Add(1)
	m.mu.Unlock()

	if err := m.store.Create(ctx, rec); err != nil {
		m.release(output)
		m.wg.Done()
		return Record{}, fmt.Errorf("persist job: %w", err)
	}

	logger := hflog.WithComponentFromContext(ctx, "jobs")
	logger.Info().
		Str(hflog.FieldEvent, "jobs.submitted").
		Str(hflog.FieldJobID, rec.ID).
		Str(hflog.FieldInput, rec.Input).
		Str(hflog.FieldOutputDir, rec.Output).
		Msg("job accepted")

	reqID := hflog.RequestIDFromContext(ctx)
	go m.run(rec, req.Renditions, reqID)
	return rec, nil
}

// resolveOutput maps a client supplied output onto a directory strictly
// below OutputRoot. Failed encodes purge their output, so anything outside
// the root must never reach the transcoder.
func (m *Manager) resolveOutput(rel string) (string, error) {
	if m.cfg.OutputRoot == "" {
		return "", fmt.Errorf("%w: no output root configured", ErrInvalidRequest)
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: output must be relative to the output root: %s", ErrInvalidRequest, rel)
	}
	if filepath.Clean(rel) == "." {
		return "", fmt.Errorf("%w: output must name a directory below the output root", ErrInvalidRequest)
	}
	output, err := fs.ConfineRelPath(m.cfg.OutputRoot, rel)
	if err != nil {
		return "", fmt.Errorf("%w: output: %w", ErrInvalidRequest, err)
	}
	// A symlink below the root may still point back at the root itself.
	if root, err := filepath.EvalSymlinks(m.cfg.OutputRoot); err == nil {
		if abs, err := filepath.Abs(root); err == nil && abs == output {
			return "", fmt.Errorf("%w: output resolves to the output root", ErrInvalidRequest)
		}
	}
	return output, nil
}

func (m *Manager) release(output string) {
	m.mu.Lock()
	delete(m.active, output)
	m.mu.Unlock()
}

func (m *Manager) run(rec Record, renditions []rendition.Rendition, requestID string) {
	defer m.wg.Done()
	defer m.release(rec.Output)

	ctx := hflog.ContextWithJobID(m.baseCtx, rec.ID)
	if requestID != "" {
		ctx = hflog.ContextWithRequestID(ctx, requestID)
	}
	logger := hflog.WithComponentFromContext(ctx, "jobs")

	if err := m.sem.Acquire(ctx, 1); err != nil {
		rec.State = transcode.StateCanceled
		rec.Error = "canceled before start: " + err.Error()
		m.persist(rec)
		return
	}
	defer m.sem.Release(1)

	if m.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.JobTimeout)
		defer cancel()
	}

	var (
		mu       sync.Mutex
		progress = rate.Sometimes{Interval: ProgressInterval}
	)
	opts := transcode.Options{
		Renditions: renditions,
		ShowLogs:   m.cfg.ShowLogs,
		JobID:      rec.ID,
		OnState: func(s transcode.State) {
			if s.IsTerminal() {
				return
			}
			mu.Lock()
			rec.State = s
			snap := rec
			mu.Unlock()
			m.persist(snap)
		},
		OnProgress: func(p ffmpeg.Progress) {
			mu.Lock()
			rec.Percent = p.Percent
			snap := rec
			mu.Unlock()
			progress.Do(func() { m.persist(snap) })
		},
	}

	manifest, err := m.tr.Transcode(ctx, rec.Input, rec.Output, opts)

	// Transcode returns only after the encoder's stderr is drained, so no
	// observer call can race the final write.
	mu.Lock()
	defer mu.Unlock()
	switch {
	case err == nil:
		rec.State = transcode.StateSucceeded
		rec.Manifest = manifest
		rec.Percent = 100
	case errors.Is(err, transcode.ErrCanceled):
		rec.State = transcode.StateCanceled
		rec.Error = err.Error()
		report := m.tr.Cleanup(rec.Output)
		logger.Info().
			Str(hflog.FieldEvent, "jobs.canceled_cleanup").
			Int("removed", report.Removed).
			Int("failed", report.Failed).
			Bool("dir_removed", report.DirRemoved).
			Msg("cleaned up canceled job output")
	default:
		rec.State = transcode.StateFailed
		rec.Error = err.Error()
		var encErr *transcode.EncodeError
		if errors.As(err, &encErr) {
			rec.ExitCode = encErr.ExitCode
		}
	}
	m.persist(rec)
}

func (m *Manager) persist(rec Record) {
	rec.UpdatedAt = time.Now().UTC()
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := m.store.Update(ctx, rec); err != nil {
		logger := hflog.WithComponent("jobs")
		logger.Error().
			Str(hflog.FieldEvent, "jobs.persist_failed").
			Str(hflog.FieldJobID, rec.ID).
			Err(err).
			Msg("failed to persist job record")
	}
}

// Get returns one job record.
func (m *Manager) Get(ctx context.Context, id string) (Record, error) {
	return m.store.Get(ctx, id)
}

// List returns the newest job records.
func (m *Manager) List(ctx context.Context, limit int) ([]Record, error) {
	return m.store.List(ctx, limit)
}

// Recover marks jobs left unfinished by a previous process as failed. Their
// encoders died with that process.
func (m *Manager) Recover(ctx context.Context) (int, error) {
	records, err := m.store.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range records {
		if rec.State.IsTerminal() {
			continue
		}
		rec.State = transcode.StateFailed
		rec.Error = "interrupted by restart"
		rec.UpdatedAt = time.Now().UTC()
		if err := m.store.Update(ctx, rec); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		logger := hflog.WithComponentFromContext(ctx, "jobs")
		logger.Warn().
			Str(hflog.FieldEvent, "jobs.recovered").
			Int("count", n).
			Msg("marked interrupted jobs as failed")
	}
	return n, nil
}

// Shutdown rejects new jobs, cancels running ones and waits for them to
// finish their cleanup.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs shutdown: %w", ctx.Err())
	}
}
