// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for hlsforge.
//
// Precedence, lowest to highest: built-in defaults, the YAML file, HLSFORGE_*
// environment variables. The result is validated as a whole.
package config

import (
	"time"

	"github.com/ManuGH/hlsforge/internal/ffmpeg"
	"github.com/ManuGH/hlsforge/internal/rendition"
)

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Version    string `yaml:"-"`
	LogLevel   string `yaml:"logLevel"`
	LogFormat  string `yaml:"logFormat"`
	LogService string `yaml:"logService"`
	DataDir    string `yaml:"dataDir"`

	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Encoder EncoderConfig `yaml:"encoder"`

	// Renditions overrides the built-in default ladder when non-empty.
	Renditions []rendition.Rendition `yaml:"renditions,omitempty"`

	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// FFmpegConfig holds the encoder and probe binaries.
type FFmpegConfig struct {
	Bin        string `yaml:"bin"`
	FFprobeBin string `yaml:"ffprobeBin"`
	// KillTimeout is the SIGTERM grace period on cancellation.
	KillTimeout time.Duration `yaml:"killTimeout"`
}

// EncoderConfig holds the values shared by every rendition.
type EncoderConfig struct {
	VideoCodec      string `yaml:"videoCodec"`
	AudioCodec      string `yaml:"audioCodec"`
	AudioSampleRate int    `yaml:"audioSampleRate"`
	CRF             int    `yaml:"crf"`
	GOP             int    `yaml:"gop"`
	SceneThreshold  int    `yaml:"sceneThreshold"`
}

// Settings converts the config section into builder settings.
func (e EncoderConfig) Settings() ffmpeg.EncoderSettings {
	crf := e.CRF
	return ffmpeg.EncoderSettings{
		VideoCodec:      e.VideoCodec,
		AudioCodec:      e.AudioCodec,
		AudioSampleRate: e.AudioSampleRate,
		CRF:             &crf,
		GOP:             e.GOP,
		SceneThreshold:  e.SceneThreshold,
	}
}

// CleanupConfig controls purging of failed job outputs.
type CleanupConfig struct {
	// RemoveDir removes the output directory itself after its files.
	RemoveDir bool `yaml:"removeDir"`
}

// ServerConfig configures the job API.
type ServerConfig struct {
	ListenAddr        string        `yaml:"listenAddr"`
	RateLimitRPM      int           `yaml:"rateLimitRPM"`
	MaxConcurrentJobs int           `yaml:"maxConcurrentJobs"`
	JobTimeout        time.Duration `yaml:"jobTimeout"`
	// DBPath is relative to DataDir unless absolute.
	DBPath string `yaml:"dbPath"`
	// OutputRoot confines API job outputs; relative to DataDir unless absolute.
	OutputRoot string `yaml:"outputRoot"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// EffectiveRenditions returns the configured ladder or the built-in default.
func (c AppConfig) EffectiveRenditions() []rendition.Rendition {
	return rendition.Resolve(c.Renditions, rendition.DefaultLadder())
}
