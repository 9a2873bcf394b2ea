// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"strings"
	"sync"
)

// DefaultRingSize is the stderr tail kept per process.
const DefaultRingSize = 256

// LineRing is a thread-safe ring buffer holding the last N lines of output.
type LineRing struct {
	mu    sync.RWMutex
	lines []string
	head  int // next write position
	count int
}

// NewLineRing creates a LineRing with the given capacity.
func NewLineRing(capacity int) *LineRing {
	if capacity < 1 {
		capacity = DefaultRingSize
	}
	return &LineRing{lines: make([]string, capacity)}
}

// Add appends one line, evicting the oldest when full. Empty lines are dropped.
func (r *LineRing) Add(line string) {
	if line == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.head] = line
	r.head = (r.head + 1) % len(r.lines)
	if r.count < len(r.lines) {
		r.count++
	}
}

// Write implements io.Writer. Input is split on '\r' and '\n'.
func (r *LineRing) Write(p []byte) (int, error) {
	for _, line := range strings.FieldsFunc(string(p), func(c rune) bool { return c == '\r' || c == '\n' }) {
		r.Add(line)
	}
	return len(p), nil
}

// Len returns the number of lines held.
func (r *LineRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// LastN returns up to n of the most recent lines, oldest first.
func (r *LineRing) LastN(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	size := len(r.lines)
	start := (r.head - n + size) % size
	for i := 0; i < n; i++ {
		out[i] = r.lines[(start+i)%size]
	}
	return out
}
