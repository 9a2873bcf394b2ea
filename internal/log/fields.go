// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldJobID     = "job_id"
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPID       = "pid"
	FieldExitCode  = "exit_code"
	FieldStderr    = "stderr"

	// Media fields
	FieldInput      = "input"
	FieldRendition  = "rendition"
	FieldRenditions = "renditions"
	FieldDuration   = "duration_sec"
	FieldElapsed    = "elapsed_sec"
	FieldPercent    = "percent"

	// Path fields
	FieldPath         = "path"
	FieldOutputDir    = "output_dir"
	FieldPlaylistPath = "playlist_path"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
