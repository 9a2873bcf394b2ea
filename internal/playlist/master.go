// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playlist renders the HLS multivariant playlist that ties the
// per-rendition playlists of a job together.
package playlist

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ManuGH/hlsforge/internal/rendition"
)

// MasterFileName is the name of the multivariant playlist inside a job's
// output directory.
const MasterFileName = rendition.ReservedTitle + ".m3u8"

// BuildMaster renders the multivariant playlist for renditions: a two-line
// header followed by one STREAM-INF/URI pair per rendition, in list order.
// Every line is newline-terminated. The URI is the rendition's PlaylistFile,
// the same name the encoder is told to write.
func BuildMaster(renditions []rendition.Rendition) (string, error) {
	var buf bytes.Buffer
	if err := WriteMasterTo(&buf, renditions); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteMasterTo writes the multivariant playlist to w. Nothing is written when
// a bitrate cannot be parsed.
func WriteMasterTo(w io.Writer, renditions []rendition.Rendition) error {
	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U\n")
	buf.WriteString("#EXT-X-VERSION:3\n")
	for _, r := range renditions {
		bw, err := rendition.ParseBandwidth(r.VideoBitrate)
		if err != nil {
			return fmt.Errorf("rendition %s: %w", r.PlaylistTitle, err)
		}
		fmt.Fprintf(buf, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s\n", bw, r.Resolution())
		buf.WriteString(r.PlaylistFile() + "\n")
	}
	_, err := io.Copy(w, buf)
	return err
}
