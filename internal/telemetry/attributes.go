// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/ManuGH/hlsforge/internal/rendition"
)

// Attribute keys for transcode spans. Paths are recorded on spans only; they
// never become metric labels.
const (
	JobIDKey          = "job.id"
	JobInputKey       = "job.input"
	JobOutputKey      = "job.output"
	JobRenditionsKey  = "job.renditions"
	JobStateKey       = "job.state"
	JobDurationSecKey = "job.input_duration_sec"

	RenditionResolutionKey = "rendition.resolution"
	RenditionProfileKey    = "rendition.profile"
	RenditionBitrateKey    = "rendition.video_bitrate"
	RenditionPlaylistKey   = "rendition.playlist"

	FFmpegExitCodeKey = "ffmpeg.exit_code"
	ErrorTypeKey      = "error.type"
)

// JobAttributes creates transcode job span attributes.
func JobAttributes(jobID, input, output string, renditions int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(JobInputKey, input),
		attribute.String(JobOutputKey, output),
		attribute.Int(JobRenditionsKey, renditions),
	}
	if jobID != "" {
		attrs = append(attrs, attribute.String(JobIDKey, jobID))
	}
	return attrs
}

// RenditionAttributes describes one rendition of a job.
func RenditionAttributes(r rendition.Rendition) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RenditionResolutionKey, r.Resolution()),
		attribute.String(RenditionProfileKey, r.Profile),
		attribute.String(RenditionBitrateKey, r.VideoBitrate),
		attribute.String(RenditionPlaylistKey, r.PlaylistFile()),
	}
}

// ErrorAttributes classifies a failed span.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ErrorTypeKey, errorType),
	}
}
