// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rendition

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallsBackToDefaults(t *testing.T) {
	defaults := DefaultLadder()

	assert.Equal(t, defaults, Resolve(nil, defaults))
	assert.Equal(t, defaults, Resolve([]Rendition{}, defaults))

	custom := []Rendition{defaults[0]}
	assert.Equal(t, custom, Resolve(custom, defaults))
}

func TestResolveReturnsCopy(t *testing.T) {
	defaults := DefaultLadder()
	got := Resolve(nil, defaults)
	got[0].Width = 1
	assert.Equal(t, 640, defaults[0].Width)

	again := DefaultLadder()
	assert.Equal(t, 640, again[0].Width)
}

func TestDefaultLadderIsValid(t *testing.T) {
	ladder := DefaultLadder()
	require.Len(t, ladder, 4)
	require.NoError(t, Validate(ladder))

	for _, r := range ladder {
		assert.Equal(t, "main", r.Profile)
		assert.Equal(t, Text("10"), r.HLSTime)
		assert.Equal(t, r.SegmentTitle, r.PlaylistTitle)
	}
	assert.Equal(t, "1080p.m3u8", ladder[3].PlaylistFile())
	assert.Equal(t, "360p_%03d.ts", ladder[0].SegmentPattern())
	assert.Equal(t, "1920x1080", ladder[3].Resolution())
}

func TestValidate(t *testing.T) {
	base := DefaultLadder()[0]

	tests := []struct {
		name   string
		mutate func([]Rendition) []Rendition
	}{
		{"empty", func([]Rendition) []Rendition { return nil }},
		{"zero width", func(l []Rendition) []Rendition { l[0].Width = 0; return l }},
		{"missing profile", func(l []Rendition) []Rendition { l[0].Profile = " "; return l }},
		{"bad hls_time", func(l []Rendition) []Rendition { l[0].HLSTime = "ten"; return l }},
		{"bad bitrate", func(l []Rendition) []Rendition { l[0].MaxRate = "fast"; return l }},
		{"path in title", func(l []Rendition) []Rendition { l[0].SegmentTitle = "../escape"; return l }},
		{"dotdot title", func(l []Rendition) []Rendition { l[0].PlaylistTitle = ".."; return l }},
		{"reserved title", func(l []Rendition) []Rendition { l[0].PlaylistTitle = ReservedTitle; return l }},
		{"duplicate segment title", func(l []Rendition) []Rendition {
			dup := l[0]
			dup.PlaylistTitle = "other"
			return append(l, dup)
		}},
		{"duplicate playlist title", func(l []Rendition) []Rendition {
			dup := l[0]
			dup.SegmentTitle = "other"
			return append(l, dup)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mutate([]Rendition{base}))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRendition)
		})
	}
}

func TestValidateAllowsSharedTitleAcrossKinds(t *testing.T) {
	a := DefaultLadder()[0]
	b := DefaultLadder()[1]
	a.SegmentTitle, a.PlaylistTitle = "low", "mid"
	b.SegmentTitle, b.PlaylistTitle = "mid", "low"
	assert.NoError(t, Validate([]Rendition{a, b}))
}

func TestTextAcceptsNumbersInJSON(t *testing.T) {
	var r Rendition
	require.NoError(t, json.Unmarshal([]byte(`{"hls_time": 4}`), &r))
	assert.Equal(t, Text("4"), r.HLSTime)

	require.NoError(t, json.Unmarshal([]byte(`{"hls_time": "6"}`), &r))
	assert.Equal(t, Text("6"), r.HLSTime)

	assert.Error(t, json.Unmarshal([]byte(`{"hls_time": true}`), &r))
}

func TestLoadFile(t *testing.T) {
	doc := `
renditions:
  - width: 1280
    height: 720
    profile: high
    hls_time: 4
    bv: 3000k
    maxrate: 3210k
    bufsize: 4500k
    ba: 128k
    ts_title: 720p
    master_title: 720p
`
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	got, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "high", got[0].Profile)
	assert.Equal(t, Text("4"), got[0].HLSTime)
	assert.Equal(t, "3000k", got[0].VideoBitrate)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("renditions:\n  - width: 1\n    vbitrate: 1k\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vbitrate")
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrInvalidRendition)
}

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, DefaultLadder()))

	got, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, DefaultLadder(), got)
}
