// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hlsforge/internal/ffmpeg"
	hflog "github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/playlist"
	"github.com/ManuGH/hlsforge/internal/rendition"
)

func twoRungs() []rendition.Rendition {
	ladder := rendition.DefaultLadder()
	return ladder[:2]
}

func TestTranscodeSuccess(t *testing.T) {
	ffmpegBin := fakeBinary(t, "ffmpeg", touchOutputs+`
printf 'frame=1 time=00:00:45.00 bitrate=1k\r' >&2
printf 'frame=2 time=00:01:30.00 bitrate=1k\r' >&2
exit 0`)
	ffprobeBin := fakeBinary(t, "ffprobe", probe180)

	out := filepath.Join(t.TempDir(), "out")
	tr := New(Config{FFmpegBin: ffmpegBin, FFprobeBin: ffprobeBin, Settings: ffmpeg.DefaultEncoderSettings()})

	var (
		mu       sync.Mutex
		states   []State
		progress []string
	)
	manifest, err := tr.Transcode(context.Background(), "input.mp4", out, Options{
		Renditions: twoRungs(),
		OnState: func(s State) {
			mu.Lock()
			defer mu.Unlock()
			states = append(states, s)
		},
		OnProgress: func(p ffmpeg.Progress) {
			mu.Lock()
			defer mu.Unlock()
			progress = append(progress, p.PercentText())
		},
	})
	require.NoError(t, err)

	absOut, err := filepath.Abs(out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(absOut, playlist.MasterFileName), manifest)

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.FileExists(t, filepath.Join(absOut, "360p.m3u8"))
	assert.FileExists(t, filepath.Join(absOut, "480p_000.ts"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StatePreparing, StateEncoding, StateSucceeded}, states)
	assert.Equal(t, []string{"25.00", "50.00"}, progress)
}

func TestTranscodeEncodeFailureLeavesNoFiles(t *testing.T) {
	script := touchOutputs + `
echo "Error while opening encoder" >&2
echo "Conversion failed!" >&2
exit 1`

	t.Run("keep directory", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out")
		tr := New(Config{
			FFmpegBin:  fakeBinary(t, "ffmpeg", script),
			FFprobeBin: fakeBinary(t, "ffprobe", probe180),
			RemoveDir:  false,
		})

		manifest, err := tr.Transcode(context.Background(), "input.mp4", out, Options{Renditions: twoRungs()})
		require.Error(t, err)
		assert.Empty(t, manifest)
		assert.ErrorIs(t, err, ErrEncode)

		var encErr *EncodeError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, 1, encErr.ExitCode)
		assert.Contains(t, encErr.Diagnostics, "Conversion failed!")

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("remove directory", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out")
		tr := New(Config{
			FFmpegBin:  fakeBinary(t, "ffmpeg", script),
			FFprobeBin: fakeBinary(t, "ffprobe", probe180),
			RemoveDir:  true,
		})

		_, err := tr.Transcode(context.Background(), "input.mp4", out, Options{})
		require.ErrorIs(t, err, ErrEncode)
		assert.NoDirExists(t, out)
	})
}

func TestTranscodeProbeFailureRemovesManifest(t *testing.T) {
	enc := &recordingEncoder{}
	out := t.TempDir()
	tr := New(Config{
		Encoder: enc,
		Prober: proberFunc(func(context.Context, string) (float64, error) {
			return 0, errors.New("moov atom not found")
		}),
	})

	var states []State
	_, err := tr.Transcode(context.Background(), "broken.mp4", out, Options{
		OnState: func(s State) { states = append(states, s) },
	})
	require.ErrorIs(t, err, ErrProbe)

	var probeErr *ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, "broken.mp4", probeErr.Input)

	assert.NoFileExists(t, filepath.Join(out, playlist.MasterFileName))
	assert.Empty(t, enc.calls(), "encoder must not start after a failed probe")
	assert.Equal(t, []State{StatePreparing, StateFailed}, states)
}

func TestTranscodeNilRenditionsMatchesDefaultLadder(t *testing.T) {
	out := t.TempDir()
	run := func(renditions []rendition.Rendition) ([]string, string) {
		enc := &recordingEncoder{}
		tr := New(Config{Encoder: enc, Prober: fixedDuration(60), Purger: &countingPurger{}})
		manifest, err := tr.Transcode(context.Background(), "in.mp4", out, Options{Renditions: renditions})
		require.NoError(t, err)
		data, err := os.ReadFile(manifest)
		require.NoError(t, err)
		calls := enc.calls()
		require.Len(t, calls, 1)
		return calls[0].Args, string(data)
	}

	implicitArgs, implicitManifest := run(nil)
	explicitArgs, explicitManifest := run(rendition.DefaultLadder())

	if diff := cmp.Diff(explicitArgs, implicitArgs); diff != "" {
		t.Errorf("args mismatch (-explicit +implicit):\n%s", diff)
	}
	assert.Equal(t, explicitManifest, implicitManifest)
	assert.Len(t, implicitArgs, ffmpeg.ExpectedArgCount(len(rendition.DefaultLadder())))
}

func TestTranscodeInvalidRenditionCreatesNothing(t *testing.T) {
	enc := &recordingEncoder{}
	out := filepath.Join(t.TempDir(), "out")
	tr := New(Config{Encoder: enc, Prober: fixedDuration(10)})

	bad := twoRungs()
	bad[1].PlaylistTitle = bad[0].PlaylistTitle

	_, err := tr.Transcode(context.Background(), "in.mp4", out, Options{Renditions: bad})
	require.ErrorIs(t, err, rendition.ErrInvalidRendition)
	assert.NoDirExists(t, out)
	assert.Empty(t, enc.calls())
}

func TestTranscodeMissingParentIsFilesystemError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "out")
	tr := New(Config{Encoder: &recordingEncoder{}, Prober: fixedDuration(10)})

	_, err := tr.Transcode(context.Background(), "in.mp4", out, Options{})
	require.ErrorIs(t, err, ErrFilesystem)

	var fsErr *FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "mkdir", fsErr.Op)
}

func TestTranscodeStartFailurePurgesOutput(t *testing.T) {
	purger := &countingPurger{}
	out := t.TempDir()
	tr := New(Config{
		Encoder: &recordingEncoder{startErr: errors.New("exec: \"ffmpeg\": executable file not found")},
		Prober:  fixedDuration(10),
		Purger:  purger,
	})

	_, err := tr.Transcode(context.Background(), "in.mp4", out, Options{})
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, -1, encErr.ExitCode)
	assert.Equal(t, []string{out}, purger.dirs)
}

func TestTranscodeCanceledKeepsOutput(t *testing.T) {
	ffmpegBin := fakeBinary(t, "ffmpeg", touchOutputs+`
printf 'frame=1 time=00:00:18.00 bitrate=1k\r' >&2
sleep 30`)
	out := t.TempDir()
	tr := New(Config{
		FFmpegBin:   ffmpegBin,
		FFprobeBin:  fakeBinary(t, "ffprobe", probe180),
		KillTimeout: time.Second,
		RemoveDir:   true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	_, err := tr.Transcode(ctx, "in.mp4", out, Options{
		Renditions: twoRungs(),
		OnProgress: func(ffmpeg.Progress) { cancel() },
	})
	require.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)

	// The caller owns cleanup after cancellation.
	assert.FileExists(t, filepath.Join(out, playlist.MasterFileName))
	assert.FileExists(t, filepath.Join(out, "360p.m3u8"))

	report := tr.Cleanup(out)
	assert.Zero(t, report.Failed)
	assert.True(t, report.DirRemoved)
	assert.NoDirExists(t, out)
}

func TestTranscodeShowLogs(t *testing.T) {
	ffmpegBin := fakeBinary(t, "ffmpeg", touchOutputs+`
printf 'frame=2 time=00:01:30.00 bitrate=1k\r' >&2
exit 0`)
	ffprobeBin := fakeBinary(t, "ffprobe", probe180)

	run := func(show bool) string {
		buf := &syncBuffer{}
		hflog.Configure(hflog.Config{Level: "info", Output: buf})
		t.Cleanup(func() { hflog.Configure(hflog.Config{}) })

		tr := New(Config{FFmpegBin: ffmpegBin, FFprobeBin: ffprobeBin})
		_, err := tr.Transcode(context.Background(), "movie.mp4", t.TempDir(), Options{
			Renditions: twoRungs(),
			ShowLogs:   show,
		})
		require.NoError(t, err)
		return buf.String()
	}

	assert.Contains(t, run(true), "File movie.mp4 Percent complete: 50.00")
	assert.NotContains(t, run(false), "Percent complete")
}

func TestDefaultRenditionsReturnsCopy(t *testing.T) {
	custom := twoRungs()
	tr := New(Config{Renditions: custom, Encoder: &recordingEncoder{}, Prober: fixedDuration(1)})

	got := tr.DefaultRenditions()
	require.Len(t, got, 2)
	got[0].Width = 1
	assert.Equal(t, custom[0].Width, tr.DefaultRenditions()[0].Width)
}
