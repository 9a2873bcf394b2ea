// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package jobs runs transcode jobs in the background, bounds how many run at
// once and keeps their history in a Store.
package jobs

import (
	"errors"
	"time"

	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/ManuGH/hlsforge/internal/transcode"
)

var (
	// ErrNotFound is returned for unknown job IDs.
	ErrNotFound = errors.New("job not found")
	// ErrOutputBusy is returned when another active job writes to the same
	// output directory.
	ErrOutputBusy = errors.New("output directory is in use by another job")
	// ErrInvalidRequest is returned for malformed submissions.
	ErrInvalidRequest = errors.New("invalid job request")
	// ErrShuttingDown is returned by Submit after Shutdown.
	ErrShuttingDown = errors.New("job manager is shutting down")
)

// Request describes a job submission.
type Request struct {
	Input      string                `json:"input"`
	Output     string                `json:"output"`
	Renditions []rendition.Rendition `json:"renditions,omitempty"`
}

// Record is the persisted view of a job.
type Record struct {
	ID       string          `json:"id"`
	Input    string          `json:"input"`
	Output   string          `json:"output"`
	State    transcode.State `json:"state"`
	Percent  float64         `json:"percent"`
	Manifest string          `json:"manifest,omitempty"`
	Error    string          `json:"error,omitempty"`
	// ExitCode is the encoder exit code of a failed encode.
	ExitCode  int       `json:"exit_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
