// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package transcode turns one input file into an HLS ABR package: a master
// playlist plus one variant playlist and segment set per rendition.
package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/hlsforge/internal/ffmpeg"
	hflog "github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/metrics"
	"github.com/ManuGH/hlsforge/internal/platform/fs"
	"github.com/ManuGH/hlsforge/internal/playlist"
	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/ManuGH/hlsforge/internal/telemetry"
)

// Config wires a Transcoder. Encoder, Prober and Purger override the
// ffmpeg-backed defaults built from the binary paths.
type Config struct {
	FFmpegBin   string
	FFprobeBin  string
	KillTimeout time.Duration
	Settings    ffmpeg.EncoderSettings
	// Renditions is the ladder used when a job names none; nil means
	// rendition.DefaultLadder().
	Renditions []rendition.Rendition
	// RemoveDir removes the output directory itself after a failed encode.
	RemoveDir bool

	Encoder Encoder
	Prober  Prober
	Purger  Purger
}

// Options are per-job knobs.
type Options struct {
	// Renditions overrides the transcoder's ladder when non-empty.
	Renditions []rendition.Rendition
	// ShowLogs writes progress and encoder diagnostics to the log. Progress
	// is parsed and OnProgress called either way.
	ShowLogs   bool
	OnProgress ffmpeg.ProgressFunc
	// OnState observes job state transitions.
	OnState func(State)
	// JobID correlates logs and spans; a uuid is generated when empty.
	JobID string
}

// Transcoder runs transcode jobs. It is safe for concurrent use; callers
// must not run two jobs against the same output directory at once.
type Transcoder struct {
	encoder  Encoder
	prober   Prober
	purger   Purger
	settings ffmpeg.EncoderSettings
	defaults []rendition.Rendition
	tracer   trace.Tracer
}

// New creates a Transcoder from cfg.
func New(cfg Config) *Transcoder {
	t := &Transcoder{
		encoder:  cfg.Encoder,
		prober:   cfg.Prober,
		purger:   cfg.Purger,
		settings: cfg.Settings,
		defaults: cfg.Renditions,
		tracer:   telemetry.Tracer("hlsforge.transcode"),
	}
	if t.encoder == nil {
		t.encoder = RunnerEncoder{Runner: ffmpeg.NewRunner(cfg.FFmpegBin, ffmpeg.WithKillTimeout(cfg.KillTimeout))}
	}
	if t.prober == nil {
		t.prober = ffmpeg.NewProber(cfg.FFprobeBin)
	}
	if t.purger == nil {
		t.purger = fs.NewCleaner(cfg.RemoveDir)
	}
	if len(t.defaults) == 0 {
		t.defaults = rendition.DefaultLadder()
	}
	return t
}

// DefaultRenditions returns a copy of the ladder used when a job names none.
func (t *Transcoder) DefaultRenditions() []rendition.Rendition {
	return rendition.Resolve(nil, t.defaults)
}

// Cleanup purges a job's output with the transcoder's cleanup policy. Callers
// use it after ErrCanceled.
func (t *Transcoder) Cleanup(output string) fs.Report {
	return t.purger.Purge(output)
}

// Transcode packages input into output and returns the absolute path of the
// master playlist. Every failure is reported exactly once through the error.
func (t *Transcoder) Transcode(ctx context.Context, input, output string, opts Options) (manifest string, err error) {
	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}
	ctx = hflog.ContextWithJobID(ctx, jobID)

	renditions := rendition.Resolve(opts.Renditions, t.defaults)
	ctx, span := t.tracer.Start(ctx, "transcode.job",
		trace.WithAttributes(telemetry.JobAttributes(jobID, input, output, len(renditions))...))
	defer span.End()

	logger := hflog.WithContext(ctx, hflog.WithComponent("transcode")).With().
		Str(hflog.FieldInput, input).
		Str(hflog.FieldOutputDir, output).
		Logger()

	job := &Job{
		ID:         jobID,
		InputPath:  input,
		OutputPath: output,
		Renditions: renditions,
		onState:    opts.OnState,
		logger:     logger,
	}

	started := time.Now()
	metrics.JobsActive.Inc()
	defer func() {
		metrics.JobsActive.Dec()
		state := job.State()
		if !state.IsTerminal() {
			state = StateFailed
		}
		metrics.RecordJob(state.String(), time.Since(started).Seconds())
		span.SetAttributes(attribute.String(telemetry.JobStateKey, state.String()))
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(telemetry.ErrorAttributes(errorKind(err))...)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}()

	fail := func(e error) (string, error) {
		if errors.Is(e, ErrCanceled) {
			job.fire(EventCancel)
			logger.Warn().Str(hflog.FieldEvent, "transcode.canceled").Err(e).Msg("transcode canceled")
		} else {
			job.fire(EventFail)
			logger.Error().Str(hflog.FieldEvent, "transcode.failed").Err(e).Msg("transcode failed")
		}
		return "", e
	}

	if err := rendition.Validate(renditions); err != nil {
		return fail(err)
	}
	for _, r := range renditions {
		span.AddEvent("rendition", trace.WithAttributes(telemetry.RenditionAttributes(r)...))
	}

	absOut, err := filepath.Abs(output)
	if err != nil {
		return fail(&FilesystemError{Op: "resolve", Path: output, Err: err})
	}
	job.OutputPath = absOut
	logger = logger.With().Str(hflog.FieldOutputDir, absOut).Logger()
	job.logger = logger

	job.fire(EventPrepare)

	created, err := fs.EnsureDir(absOut)
	if err != nil {
		return fail(&FilesystemError{Op: "mkdir", Path: absOut, Err: err})
	}
	if created {
		logger.Debug().Str(hflog.FieldEvent, "transcode.dir_created").Msg("created output directory")
	}

	args := ffmpeg.BuildHLSArgs(input, absOut, renditions, t.settings)

	duration, manifest, err := t.prepare(ctx, input, absOut, renditions)
	if err != nil {
		if ctx.Err() != nil {
			return fail(canceled(ctx.Err()))
		}
		return fail(err)
	}
	job.Duration = duration
	span.SetAttributes(attribute.Float64(telemetry.JobDurationSecKey, duration))

	job.fire(EventEncode)
	logger.Info().
		Str(hflog.FieldEvent, "transcode.encode_start").
		Int(hflog.FieldRenditions, len(renditions)).
		Float64(hflog.FieldDuration, duration).
		Msg("starting encode")

	procLogger := logger
	proc, err := t.encoder.Start(ctx, ffmpeg.Spec{
		Args:       args,
		Duration:   duration,
		OnProgress: t.progressObserver(logger, input, opts),
		Verbose:    opts.ShowLogs,
		Logger:     &procLogger,
	})
	if err != nil {
		if ctx.Err() != nil {
			return fail(canceled(ctx.Err()))
		}
		t.purger.Purge(absOut)
		return fail(&EncodeError{ExitCode: -1, Err: err})
	}

	status, err := proc.Wait()
	if err != nil {
		if ctx.Err() != nil {
			return fail(canceled(ctx.Err()))
		}
		encErr := &EncodeError{ExitCode: status.Code, Err: err}
		var exitErr *ffmpeg.ExitError
		if errors.As(err, &exitErr) {
			encErr.ExitCode = exitErr.Code
			encErr.Diagnostics = exitErr.Diagnostics
		}
		span.SetAttributes(attribute.Int(telemetry.FFmpegExitCodeKey, encErr.ExitCode))
		if opts.ShowLogs && len(encErr.Diagnostics) > 0 {
			logger.Error().
				Str(hflog.FieldEvent, "transcode.encoder_stderr").
				Strs(hflog.FieldStderr, encErr.Diagnostics).
				Int(hflog.FieldExitCode, encErr.ExitCode).
				Msg("encoder diagnostics")
		}
		t.purger.Purge(absOut)
		return fail(encErr)
	}

	job.fire(EventSucceed)
	logger.Info().
		Str(hflog.FieldEvent, "transcode.done").
		Str(hflog.FieldPlaylistPath, manifest).
		Dur("took", time.Since(started)).
		Msg("transcode complete")
	return manifest, nil
}

// prepare writes the master playlist and probes the input concurrently. A
// written manifest is removed again when the probe fails.
func (t *Transcoder) prepare(ctx context.Context, input, outputDir string, renditions []rendition.Rendition) (float64, string, error) {
	var (
		duration float64
		manifest string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := playlist.WriteMaster(gctx, outputDir, renditions)
		if err != nil {
			return &FilesystemError{Op: "write", Path: filepath.Join(outputDir, playlist.MasterFileName), Err: err}
		}
		manifest = p
		return nil
	})
	g.Go(func() error {
		d, err := t.prober.Duration(gctx, input)
		if err != nil {
			return &ProbeError{Input: input, Err: err}
		}
		duration = d
		return nil
	})
	if err := g.Wait(); err != nil {
		if manifest != "" {
			if rmErr := os.Remove(manifest); rmErr != nil && !os.IsNotExist(rmErr) {
				logger := hflog.WithComponentFromContext(ctx, "transcode")
				logger.Warn().
					Str(hflog.FieldEvent, "transcode.manifest_remove_failed").
					Str(hflog.FieldPath, manifest).
					Err(rmErr).
					Msg("failed to remove manifest")
			}
		}
		return 0, "", err
	}
	return duration, manifest, nil
}

func (t *Transcoder) progressObserver(logger zerolog.Logger, input string, opts Options) ffmpeg.ProgressFunc {
	return func(p ffmpeg.Progress) {
		if opts.ShowLogs {
			logger.Info().
				Str(hflog.FieldEvent, "transcode.progress").
				Float64(hflog.FieldPercent, p.Percent).
				Float64(hflog.FieldElapsed, p.Elapsed).
				Msgf("File %s Percent complete: %s", input, p.PercentText())
		}
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}
}
