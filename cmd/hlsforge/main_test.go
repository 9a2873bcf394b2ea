// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hlsforge/internal/jobs"
	"github.com/ManuGH/hlsforge/internal/playlist"
	"github.com/ManuGH/hlsforge/internal/rendition"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fakeBinary(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries are shell scripts")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)) // #nosec G306
	return path
}

const touchOutputs = `for a in "$@"; do
  case "$a" in
    *.m3u8) printf '#EXTM3U\n' > "$a" ;;
  esac
done`

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hlsforge "))
}

func TestRenditionsPrintsDefaultLadder(t *testing.T) {
	t.Setenv("HLSFORGE_DATA_DIR", t.TempDir())
	out, err := run(t, "renditions")
	require.NoError(t, err)

	got, err := rendition.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, rendition.DefaultLadder(), got)
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("HLSFORGE_DATA_DIR", t.TempDir())
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("logLevel: debug\n"), 0o600))
	out, err := run(t, "--config", good, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("noSuchKey: 1\n"), 0o600))
	_, err = run(t, "--config", bad, "config", "validate")
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("logFormat: xml\nencoder:\n  crf: 99\n"), 0o600))
	out, err = run(t, "--config", invalid, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "  LogFormat: ")
	assert.Contains(t, out, "  Encoder.CRF: ")

	_, err = run(t, "--log-level", "loud", "config", "validate")
	assert.ErrorContains(t, err, "--log-level")
}

func TestTranscodeCommand(t *testing.T) {
	t.Setenv("HLSFORGE_DATA_DIR", t.TempDir())
	t.Setenv("HLSFORGE_FFMPEG_BIN", fakeBinary(t, "ffmpeg", touchOutputs+"\nexit 0"))
	t.Setenv("HLSFORGE_FFPROBE_BIN", fakeBinary(t, "ffprobe", `printf '{"format":{"duration":"12.5"}}'`))

	ladder := filepath.Join(t.TempDir(), "ladder.yaml")
	var buf bytes.Buffer
	require.NoError(t, rendition.Encode(&buf, rendition.DefaultLadder()[:1]))
	require.NoError(t, os.WriteFile(ladder, buf.Bytes(), 0o600))

	out := filepath.Join(t.TempDir(), "pkg")
	stdout, err := run(t, "transcode", "--renditions", ladder, "--show-logs=false", "in.mp4", out)
	require.NoError(t, err)

	abs, err := filepath.Abs(out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(abs, playlist.MasterFileName), strings.TrimSpace(stdout))
	assert.FileExists(t, filepath.Join(abs, "360p.m3u8"))
}

func TestTranscodeTimeoutCleansUp(t *testing.T) {
	t.Setenv("HLSFORGE_DATA_DIR", t.TempDir())
	t.Setenv("HLSFORGE_FFMPEG_BIN", fakeBinary(t, "ffmpeg", touchOutputs+"\nsleep 30"))
	t.Setenv("HLSFORGE_FFPROBE_BIN", fakeBinary(t, "ffprobe", `printf '{"format":{"duration":"60"}}'`))
	t.Setenv("HLSFORGE_FFMPEG_KILL_TIMEOUT", "1s")

	out := filepath.Join(t.TempDir(), "pkg")
	_, err := run(t, "transcode", "--timeout", "300ms", "in.mp4", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
	assert.NoDirExists(t, out, "cleanup removes the partial package")
}

func TestStorageVerify(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "jobs.db")
	store, err := jobs.NewSqliteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := run(t, "storage", "verify", "--path", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (quick)")

	_, err = run(t, "storage", "verify", "--path", dbPath, "--mode", "deep")
	assert.ErrorContains(t, err, "invalid mode")
}
