// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Progress is one progress observation derived from encoder stats output.
type Progress struct {
	Elapsed  float64 // seconds of output encoded so far
	Duration float64 // input duration in seconds
	Percent  float64 // Elapsed/Duration in [0,100]
}

// PercentText renders Percent with two decimals ("50.00").
func (p Progress) PercentText() string {
	return FormatPercent(p.Percent)
}

// ProgressFunc observes progress events. It runs on the stderr reader
// goroutine and must not block for long.
type ProgressFunc func(Progress)

// Percent returns elapsed/duration as a percentage clamped to [0,100].
// A non-positive duration yields 0.
func Percent(elapsed, duration float64) float64 {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return 0
	}
	p := elapsed / duration * 100
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// FormatPercent formats a percentage with two decimals.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// ParseElapsedSeconds extracts the last time=HH:MM:SS[.ms] token from an
// encoder stats chunk. It reports false when no usable token is present
// (absent, N/A, negative or malformed).
func ParseElapsedSeconds(chunk string) (float64, bool) {
	idx := strings.LastIndex(chunk, "time=")
	if idx < 0 {
		return 0, false
	}
	val := chunk[idx+len("time="):]
	if end := strings.IndexAny(val, " \t\r\n"); end >= 0 {
		val = val[:end]
	}
	return parseClock(val)
}

// parseClock parses "HH:MM:SS.mm".
func parseClock(val string) (float64, bool) {
	parts := strings.Split(val, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var total float64
	for i, mult := range [3]float64{3600, 60, 1} {
		if !isDecimal(parts[i]) {
			return 0, false
		}
		f, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return 0, false
		}
		total += f * mult
	}
	return total, true
}

// isDecimal reports whether v is digits with at most one decimal point. It
// keeps ParseFloat from accepting NaN, Inf, signs and exponents.
func isDecimal(v string) bool {
	digits, dots := 0, 0
	for _, c := range v {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// ScanChunks is a bufio.SplitFunc that splits on '\r' or '\n'. ffmpeg
// rewrites its stats line in place with carriage returns, so line-based
// scanning would only see progress at exit.
func ScanChunks(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
