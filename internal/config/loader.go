// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence.
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every environment key the loader looked at.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. An empty configPath skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load builds the configuration: defaults, then the strict YAML file, then
// environment overrides, then derived values, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)

	cfg.FFmpeg.FFprobeBin = ResolveFFprobeBin(cfg.FFmpeg.FFprobeBin, cfg.FFmpeg.Bin)
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.Server.DBPath != "" && !filepath.IsAbs(cfg.Server.DBPath) {
		cfg.Server.DBPath = filepath.Join(cfg.DataDir, cfg.Server.DBPath)
	}
	if cfg.Server.OutputRoot != "" && !filepath.IsAbs(cfg.Server.OutputRoot) {
		cfg.Server.OutputRoot = filepath.Join(cfg.DataDir, cfg.Server.OutputRoot)
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path over cfg. Keys absent from the file keep their
// current value. Unknown keys and multiple documents are rejected.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	p := EnvPrefix

	cfg.LogLevel = l.envString(p+"LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = l.envString(p+"LOG_FORMAT", cfg.LogFormat)
	cfg.LogService = l.envString(p+"LOG_SERVICE", cfg.LogService)
	cfg.DataDir = l.envString(p+"DATA_DIR", cfg.DataDir)

	cfg.FFmpeg.Bin = l.envString(p+"FFMPEG_BIN", cfg.FFmpeg.Bin)
	cfg.FFmpeg.FFprobeBin = l.envString(p+"FFPROBE_BIN", cfg.FFmpeg.FFprobeBin)
	cfg.FFmpeg.KillTimeout = l.envDuration(p+"FFMPEG_KILL_TIMEOUT", cfg.FFmpeg.KillTimeout)

	cfg.Encoder.VideoCodec = l.envString(p+"ENCODER_VIDEO_CODEC", cfg.Encoder.VideoCodec)
	cfg.Encoder.AudioCodec = l.envString(p+"ENCODER_AUDIO_CODEC", cfg.Encoder.AudioCodec)
	cfg.Encoder.AudioSampleRate = l.envInt(p+"ENCODER_AUDIO_SAMPLE_RATE", cfg.Encoder.AudioSampleRate)
	cfg.Encoder.CRF = l.envInt(p+"ENCODER_CRF", cfg.Encoder.CRF)
	cfg.Encoder.GOP = l.envInt(p+"ENCODER_GOP", cfg.Encoder.GOP)
	cfg.Encoder.SceneThreshold = l.envInt(p+"ENCODER_SC_THRESHOLD", cfg.Encoder.SceneThreshold)

	cfg.Cleanup.RemoveDir = l.envBool(p+"CLEANUP_REMOVE_DIR", cfg.Cleanup.RemoveDir)

	cfg.Server.ListenAddr = l.envString(p+"LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Server.RateLimitRPM = l.envInt(p+"RATE_LIMIT_RPM", cfg.Server.RateLimitRPM)
	cfg.Server.MaxConcurrentJobs = l.envInt(p+"MAX_CONCURRENT_JOBS", cfg.Server.MaxConcurrentJobs)
	cfg.Server.JobTimeout = l.envDuration(p+"JOB_TIMEOUT", cfg.Server.JobTimeout)
	cfg.Server.DBPath = l.envString(p+"DB_PATH", cfg.Server.DBPath)
	cfg.Server.OutputRoot = l.envString(p+"OUTPUT_ROOT", cfg.Server.OutputRoot)

	cfg.Telemetry.Enabled = l.envBool(p+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(p+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(p+"TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(p+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString(p+"TELEMETRY_ENVIRONMENT", cfg.Telemetry.Environment)
}
