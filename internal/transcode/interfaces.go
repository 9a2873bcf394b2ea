// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcode

import (
	"context"

	"github.com/ManuGH/hlsforge/internal/ffmpeg"
	"github.com/ManuGH/hlsforge/internal/platform/fs"
)

// Encoder launches encoder processes.
type Encoder interface {
	Start(ctx context.Context, spec ffmpeg.Spec) (Process, error)
}

// Process is a started encoder run.
type Process interface {
	Wait() (ffmpeg.ExitStatus, error)
}

// Prober reports input duration in seconds (0 when unknown).
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Purger removes the output of a failed job.
type Purger interface {
	Purge(dir string) fs.Report
}

// RunnerEncoder adapts *ffmpeg.Runner to Encoder.
type RunnerEncoder struct {
	Runner *ffmpeg.Runner
}

func (r RunnerEncoder) Start(ctx context.Context, spec ffmpeg.Spec) (Process, error) {
	p, err := r.Runner.Start(ctx, spec)
	if err != nil {
		return nil, err
	}
	return p, nil
}
