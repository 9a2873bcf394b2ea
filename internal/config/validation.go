// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/ManuGH/hlsforge/internal/validate"
)

// Validate checks the whole configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("LogLevel", cfg.LogLevel, []string{"trace", "debug", "info", "warn", "error"})
	v.OneOf("LogFormat", cfg.LogFormat, []string{"json", "console"})
	v.NotEmpty("DataDir", cfg.DataDir)

	v.NotEmpty("FFmpeg.Bin", cfg.FFmpeg.Bin)
	v.NotEmpty("FFmpeg.FFprobeBin", cfg.FFmpeg.FFprobeBin)
	v.PositiveDuration("FFmpeg.KillTimeout", cfg.FFmpeg.KillTimeout)

	v.NotEmpty("Encoder.VideoCodec", cfg.Encoder.VideoCodec)
	v.NotEmpty("Encoder.AudioCodec", cfg.Encoder.AudioCodec)
	v.Positive("Encoder.AudioSampleRate", cfg.Encoder.AudioSampleRate)
	v.Range("Encoder.CRF", cfg.Encoder.CRF, 0, 63)
	v.Positive("Encoder.GOP", cfg.Encoder.GOP)
	v.NonNegative("Encoder.SceneThreshold", cfg.Encoder.SceneThreshold)

	if len(cfg.Renditions) > 0 {
		v.Custom("Renditions", len(cfg.Renditions), rendition.Validate(cfg.Renditions))
	}

	v.ListenAddr("Server.ListenAddr", cfg.Server.ListenAddr)
	v.NonNegative("Server.RateLimitRPM", cfg.Server.RateLimitRPM)
	v.Range("Server.MaxConcurrentJobs", cfg.Server.MaxConcurrentJobs, 1, 64)
	v.PositiveDuration("Server.JobTimeout", cfg.Server.JobTimeout)
	v.NotEmpty("Server.DBPath", cfg.Server.DBPath)
	v.NotEmpty("Server.OutputRoot", cfg.Server.OutputRoot)

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
