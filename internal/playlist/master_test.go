// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMasterSingle(t *testing.T) {
	got, err := BuildMaster([]rendition.Rendition{{
		Width: 1280, Height: 720, VideoBitrate: "3000k", PlaylistTitle: "720p",
	}})
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U\n"+
		"#EXT-X-VERSION:3\n"+
		"#EXT-X-STREAM-INF:BANDWIDTH=3000000,RESOLUTION=1280x720\n"+
		"720p.m3u8\n", got)
}

func TestBuildMasterLineCountAndOrder(t *testing.T) {
	ladder := rendition.DefaultLadder()
	for n := 0; n <= len(ladder); n++ {
		got, err := BuildMaster(ladder[:n])
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(got, "\n"))

		lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
		require.Len(t, lines, 2+2*n)
		for i, r := range ladder[:n] {
			assert.True(t, strings.HasPrefix(lines[2+2*i], "#EXT-X-STREAM-INF:"))
			assert.Contains(t, lines[2+2*i], "RESOLUTION="+r.Resolution())
			assert.Equal(t, r.PlaylistFile(), lines[3+2*i])
		}
	}
}

func TestBuildMasterBandwidth(t *testing.T) {
	got, err := BuildMaster([]rendition.Rendition{{Width: 640, Height: 360, VideoBitrate: "800k", PlaylistTitle: "360p"}})
	require.NoError(t, err)
	assert.Contains(t, got, "BANDWIDTH=800000,")
}

func TestBuildMasterRejectsBadBitrate(t *testing.T) {
	_, err := BuildMaster([]rendition.Rendition{{Width: 1, Height: 1, VideoBitrate: "fast"}})
	assert.ErrorIs(t, err, rendition.ErrInvalidBitrate)
}

func TestBuildMasterDefaultsEqualExplicit(t *testing.T) {
	implicit, err := BuildMaster(rendition.Resolve(nil, rendition.DefaultLadder()))
	require.NoError(t, err)
	explicit, err := BuildMaster(rendition.DefaultLadder())
	require.NoError(t, err)
	assert.Equal(t, explicit, implicit)
}

func TestWriteMaster(t *testing.T) {
	dir := t.TempDir()
	ladder := rendition.DefaultLadder()

	path, err := WriteMaster(context.Background(), dir, ladder)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.m3u8"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, _ := BuildMaster(ladder)
	assert.Equal(t, want, string(data))

	// Idempotent: a second write yields identical bytes and no temp leftovers.
	_, err = WriteMaster(context.Background(), dir, ladder)
	require.NoError(t, err)
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteMasterFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteMaster(context.Background(), dir, []rendition.Rendition{{VideoBitrate: "bad"}})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteMasterMissingDir(t *testing.T) {
	_, err := WriteMaster(context.Background(), filepath.Join(t.TempDir(), "missing"), rendition.DefaultLadder())
	assert.Error(t, err)
}

func TestWriteMasterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WriteMaster(ctx, t.TempDir(), rendition.DefaultLadder())
	assert.ErrorIs(t, err, context.Canceled)
}
