// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/metrics"
)

const maxProbeStderr = 4096

// Prober reads media duration with ffprobe.
type Prober struct {
	BinPath string
}

// NewProber returns a Prober for the given ffprobe binary ("ffprobe" when empty).
func NewProber(binPath string) *Prober {
	if binPath == "" {
		binPath = "ffprobe"
	}
	return &Prober{BinPath: binPath}
}

type probeData struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// Duration returns the input duration in seconds. An unknown duration (absent
// or "N/A", as for live captures) yields 0 with a nil error; callers then run
// without percentage progress. Exec failures and undecodable output are errors.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	start := time.Now()
	defer func() { metrics.ObserveProbe(time.Since(start).Seconds()) }()

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}

	// #nosec G204 -- binary is operator-configured; path is passed as a single argv entry
	cmd := exec.CommandContext(ctx, p.BinPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w (stderr: %s)", err, truncate(stderr.String(), maxProbeStderr))
	}

	var data probeData
	if err := json.Unmarshal(out, &data); err != nil {
		return 0, fmt.Errorf("ffprobe json decode: %w", err)
	}

	if d, ok := parseDuration(data.Format.Duration); ok {
		return d, nil
	}
	for _, s := range data.Streams {
		if d, ok := parseDuration(s.Duration); ok {
			return d, nil
		}
	}

	logger := log.WithContext(ctx, log.WithComponent("probe"))
	logger.Warn().
		Str("event", "probe.duration_unknown").
		Str(log.FieldInput, path).
		Msg("input duration unknown, progress percentage disabled")
	return 0, nil
}

func parseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, false
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || !(d > 0) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
