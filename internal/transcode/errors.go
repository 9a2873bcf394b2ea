// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcode

import (
	"errors"
	"fmt"

	"github.com/ManuGH/hlsforge/internal/rendition"
)

var (
	// ErrProbe classifies duration probe failures.
	ErrProbe = errors.New("probe failed")
	// ErrFilesystem classifies output directory and manifest failures.
	ErrFilesystem = errors.New("filesystem error")
	// ErrEncode classifies encoder start failures and unclean exits.
	ErrEncode = errors.New("encode failed")
	// ErrCanceled is returned when the caller's context ends the job. The
	// output directory is left as is; the caller owns its cleanup.
	ErrCanceled = errors.New("transcode canceled")
)

// ProbeError wraps a duration probe failure.
type ProbeError struct {
	Input string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Input, e.Err)
}

func (e *ProbeError) Unwrap() []error { return []error{ErrProbe, e.Err} }

// FilesystemError wraps a failed filesystem operation on the output.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() []error { return []error{ErrFilesystem, e.Err} }

// EncodeError reports a failed encoder run. ExitCode is -1 when the process
// could not be started or was killed by a signal.
type EncodeError struct {
	ExitCode    int
	Diagnostics []string
	Err         error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode failed (exit code %d): %v", e.ExitCode, e.Err)
}

func (e *EncodeError) Unwrap() []error { return []error{ErrEncode, e.Err} }

func canceled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

// errorKind names the failure class of err for span attributes.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, ErrProbe):
		return "probe"
	case errors.Is(err, ErrFilesystem):
		return "filesystem"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, rendition.ErrInvalidRendition), errors.Is(err, rendition.ErrInvalidBitrate):
		return "invalid_rendition"
	default:
		return "unknown"
	}
}
