// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package rendition defines the target quality ladder of an HLS package.
package rendition

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Rendition is one target quality variant. It is treated as immutable once a
// plan has been resolved.
type Rendition struct {
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
	Profile string `yaml:"profile" json:"profile"`

	// HLSTime is the segment duration handed to the encoder verbatim.
	HLSTime Text `yaml:"hls_time" json:"hls_time"`

	VideoBitrate string `yaml:"bv" json:"bv"`
	MaxRate      string `yaml:"maxrate" json:"maxrate"`
	BufSize      string `yaml:"bufsize" json:"bufsize"`
	AudioBitrate string `yaml:"ba" json:"ba"`

	// SegmentTitle is the base filename of the media segments (<title>_%03d.ts).
	SegmentTitle string `yaml:"ts_title" json:"ts_title"`
	// PlaylistTitle is the base filename of the rendition's own playlist.
	PlaylistTitle string `yaml:"master_title" json:"master_title"`
}

// PlaylistFile is the canonical sub-playlist filename. The encoder writes it and
// the multivariant playlist references it, so both must derive it from here.
func (r Rendition) PlaylistFile() string {
	return r.PlaylistTitle + ".m3u8"
}

// SegmentPattern is the printf-style segment filename used by the HLS muxer.
func (r Rendition) SegmentPattern() string {
	return r.SegmentTitle + "_%03d.ts"
}

// Resolution renders the WxH string used in manifests.
func (r Rendition) Resolution() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Text is a scalar that accepts both strings and numbers in JSON and YAML
// documents ("4" and 4 both decode to "4").
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*t = Text(n.String())
	return nil
}

// Float returns the numeric value, if any.
func (t Text) Float() (float64, bool) {
	f, err := strconv.ParseFloat(string(t), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (t Text) String() string { return string(t) }

// Resolve returns the effective rendition list: the caller's list when it is
// non-empty, otherwise a copy of defaults.
func Resolve(list, defaults []Rendition) []Rendition {
	src := list
	if len(src) == 0 {
		src = defaults
	}
	out := make([]Rendition, len(src))
	copy(out, src)
	return out
}
