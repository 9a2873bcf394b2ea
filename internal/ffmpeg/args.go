// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/ManuGH/hlsforge/internal/rendition"
)

const (
	// GlobalFlagCount is the number of leading global flags (-hide_banner -y).
	GlobalFlagCount = 2
	// InputArgCount is the size of the single "-i <input>" pair.
	InputArgCount = 2
	// RenditionBlockLen is the fixed number of arguments emitted per rendition.
	RenditionBlockLen = 33

	defaultCRF = 10
)

// EncoderSettings are the values shared by every rendition block. They change
// argument values only, never the shape of a block.
type EncoderSettings struct {
	VideoCodec      string
	AudioCodec      string
	AudioSampleRate int
	// CRF is a pointer because 0 is a valid (lossless) value; nil selects 10.
	CRF             *int
	GOP             int
	SceneThreshold  int
}

// DefaultEncoderSettings returns libx264/aac at 48 kHz, CRF 10, a 48-frame GOP
// and scene-cut detection disabled.
func DefaultEncoderSettings() EncoderSettings {
	crf := defaultCRF
	return EncoderSettings{
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		AudioSampleRate: 48000,
		CRF:             &crf,
		GOP:             48,
		SceneThreshold:  0,
	}
}

func (e EncoderSettings) normalized() EncoderSettings {
	def := DefaultEncoderSettings()
	if e.VideoCodec == "" {
		e.VideoCodec = def.VideoCodec
	}
	if e.AudioCodec == "" {
		e.AudioCodec = def.AudioCodec
	}
	if e.AudioSampleRate <= 0 {
		e.AudioSampleRate = def.AudioSampleRate
	}
	if e.CRF == nil {
		e.CRF = def.CRF
	}
	if e.GOP <= 0 {
		e.GOP = def.GOP
	}
	return e
}

// ExpectedArgCount is the length BuildHLSArgs returns for n renditions.
func ExpectedArgCount(n int) int {
	return GlobalFlagCount + InputArgCount + n*RenditionBlockLen
}

// BuildHLSArgs constructs the ffmpeg argv (without the binary) that encodes
// input into one HLS rendition per entry, in list order, below outputDir.
// It is pure: identical inputs produce identical slices.
func BuildHLSArgs(input, outputDir string, renditions []rendition.Rendition, enc EncoderSettings) []string {
	enc = enc.normalized()
	args := make([]string, 0, ExpectedArgCount(len(renditions)))

	args = append(args, "-hide_banner", "-y")
	args = append(args, "-i", input)

	for _, r := range renditions {
		args = append(args,
			"-vf", fmt.Sprintf("scale=w=%d:h=%d:force_original_aspect_ratio=decrease", r.Width, r.Height),
			"-hls_flags", "split_by_time",
			"-c:a", enc.AudioCodec,
			"-ar", strconv.Itoa(enc.AudioSampleRate),
			"-c:v", enc.VideoCodec,
			"-profile:v", r.Profile,
			"-crf", strconv.Itoa(*enc.CRF),
			"-sc_threshold", strconv.Itoa(enc.SceneThreshold),
			"-g", strconv.Itoa(enc.GOP),
			"-hls_time", r.HLSTime.String(),
			"-hls_playlist_type", "vod",
			"-b:v", r.VideoBitrate,
			"-maxrate", r.MaxRate,
			"-bufsize", r.BufSize,
			"-b:a", r.AudioBitrate,
			"-hls_segment_filename", filepath.Join(outputDir, r.SegmentPattern()),
			filepath.Join(outputDir, r.PlaylistFile()),
		)
	}
	return args
}
