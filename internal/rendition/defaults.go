// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rendition

// defaultLadder is the built-in ladder used when a job names no renditions.
var defaultLadder = []Rendition{
	{
		Width: 640, Height: 360, Profile: "main", HLSTime: "10",
		VideoBitrate: "800k", MaxRate: "856k", BufSize: "1200k", AudioBitrate: "96k",
		SegmentTitle: "360p", PlaylistTitle: "360p",
	},
	{
		Width: 842, Height: 480, Profile: "main", HLSTime: "10",
		VideoBitrate: "1400k", MaxRate: "1498k", BufSize: "2100k", AudioBitrate: "128k",
		SegmentTitle: "480p", PlaylistTitle: "480p",
	},
	{
		Width: 1280, Height: 720, Profile: "main", HLSTime: "10",
		VideoBitrate: "2800k", MaxRate: "2996k", BufSize: "4200k", AudioBitrate: "128k",
		SegmentTitle: "720p", PlaylistTitle: "720p",
	},
	{
		Width: 1920, Height: 1080, Profile: "main", HLSTime: "10",
		VideoBitrate: "5000k", MaxRate: "5350k", BufSize: "7500k", AudioBitrate: "192k",
		SegmentTitle: "1080p", PlaylistTitle: "1080p",
	},
}

// DefaultLadder returns a fresh copy of the built-in ladder.
func DefaultLadder() []Rendition {
	out := make([]Rendition, len(defaultLadder))
	copy(out, defaultLadder)
	return out
}
