// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rendition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRendition classifies every rendition plan rejection.
var ErrInvalidRendition = errors.New("invalid rendition")

// ReservedTitle is the basename of the multivariant playlist.
const ReservedTitle = "index"

// Validate checks a resolved plan. Colliding titles would make the encoder
// silently overwrite one rendition's output with another's, so they are rejected.
func Validate(list []Rendition) error {
	if len(list) == 0 {
		return fmt.Errorf("%w: empty rendition list", ErrInvalidRendition)
	}

	segments := make(map[string]int, len(list))
	playlists := make(map[string]int, len(list))

	for i, r := range list {
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("%w: #%d: dimensions must be positive (got %dx%d)", ErrInvalidRendition, i, r.Width, r.Height)
		}
		if strings.TrimSpace(r.Profile) == "" {
			return fmt.Errorf("%w: #%d: missing profile", ErrInvalidRendition, i)
		}
		if v, ok := r.HLSTime.Float(); !ok || v <= 0 {
			return fmt.Errorf("%w: #%d: hls_time %q must be a positive number", ErrInvalidRendition, i, r.HLSTime)
		}
		for _, f := range []struct{ name, value string }{
			{"bv", r.VideoBitrate},
			{"maxrate", r.MaxRate},
			{"bufsize", r.BufSize},
			{"ba", r.AudioBitrate},
		} {
			if _, err := ParseBandwidth(f.value); err != nil {
				return fmt.Errorf("%w: #%d: %s: %w", ErrInvalidRendition, i, f.name, err)
			}
		}

		if err := checkTitle(r.SegmentTitle); err != nil {
			return fmt.Errorf("%w: #%d: ts_title: %w", ErrInvalidRendition, i, err)
		}
		if err := checkTitle(r.PlaylistTitle); err != nil {
			return fmt.Errorf("%w: #%d: master_title: %w", ErrInvalidRendition, i, err)
		}
		if r.PlaylistTitle == ReservedTitle {
			return fmt.Errorf("%w: #%d: master_title %q is reserved for the multivariant playlist", ErrInvalidRendition, i, ReservedTitle)
		}

		if prev, dup := segments[r.SegmentTitle]; dup {
			return fmt.Errorf("%w: ts_title %q used by #%d and #%d", ErrInvalidRendition, r.SegmentTitle, prev, i)
		}
		segments[r.SegmentTitle] = i
		if prev, dup := playlists[r.PlaylistTitle]; dup {
			return fmt.Errorf("%w: master_title %q used by #%d and #%d", ErrInvalidRendition, r.PlaylistTitle, prev, i)
		}
		playlists[r.PlaylistTitle] = i
	}
	return nil
}

func checkTitle(title string) error {
	switch {
	case title == "":
		return errors.New("empty")
	case title == "." || title == "..":
		return fmt.Errorf("%q is not a file name", title)
	case strings.ContainsAny(title, `/\`):
		return fmt.Errorf("%q contains a path separator", title)
	case strings.ContainsRune(title, 0):
		return fmt.Errorf("%q contains NUL", title)
	}
	return nil
}
