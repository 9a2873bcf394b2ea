// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/hlsforge/internal/ffmpeg"
)

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	enc := ffmpeg.DefaultEncoderSettings()
	return AppConfig{
		LogLevel:   "info",
		LogFormat:  "json",
		LogService: "hlsforge",
		DataDir:    "/var/lib/hlsforge",
		FFmpeg: FFmpegConfig{
			Bin:         "ffmpeg",
			KillTimeout: ffmpeg.DefaultKillTimeout,
		},
		Encoder: EncoderConfig{
			VideoCodec:      enc.VideoCodec,
			AudioCodec:      enc.AudioCodec,
			AudioSampleRate: enc.AudioSampleRate,
			CRF:             *enc.CRF,
			GOP:             enc.GOP,
			SceneThreshold:  enc.SceneThreshold,
		},
		Cleanup: CleanupConfig{RemoveDir: true},
		Server: ServerConfig{
			ListenAddr:        ":8080",
			RateLimitRPM:      120,
			MaxConcurrentJobs: 2,
			JobTimeout:        6 * time.Hour,
			DBPath:            "jobs.db",
			OutputRoot:        "output",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
	}
}
