// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rendition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidBitrate is returned for bitrate strings the encoder would not accept.
var ErrInvalidBitrate = errors.New("invalid bitrate")

// ParseBandwidth converts an encoder bitrate ("3000k", "5M", "128000") into bits
// per second. A "k" or "K" suffix multiplies by 1000 and "M" by 1000000; a bare
// integer is returned unchanged. A lowercase "m" means milli to ffmpeg and is
// rejected.
func ParseBandwidth(s string) (int64, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidBitrate)
	}

	mult := int64(1)
	switch v[len(v)-1] {
	case 'k', 'K':
		mult = 1000
		v = v[:len(v)-1]
	case 'M':
		mult = 1000 * 1000
		v = v[:len(v)-1]
	}
	if !isDecimal(v) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBitrate, s)
	}

	if !strings.Contains(v, ".") {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBitrate, s, err)
		}
		if n <= 0 {
			return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidBitrate, s)
		}
		if n > math.MaxInt64/mult {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidBitrate, s)
		}
		return n * mult, nil
	}

	// Fractional values such as "1.5M" are valid for ffmpeg, but only with a
	// unit; a fractional bit count is not.
	if mult == 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBitrate, s)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBitrate, s, err)
	}
	bps := f * float64(mult)
	if bps >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidBitrate, s)
	}
	n := int64(bps)
	if n <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidBitrate, s)
	}
	return n, nil
}

// isDecimal reports whether v is digits with at most one decimal point.
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
