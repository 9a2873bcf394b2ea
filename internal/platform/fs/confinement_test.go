// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfineRelPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "720p.m3u8"), []byte("#EXTM3U\n"), 0o600))
	if runtime.GOOS != "windows" {
		require.NoError(t, os.Symlink("..", filepath.Join(root, "up")))
	}

	tests := []struct {
		name       string
		target     string
		wantErr    bool
		wantSuffix string
	}{
		{name: "existing file", target: "720p.m3u8", wantSuffix: "720p.m3u8"},
		{name: "new file", target: "1080p_%03d.ts", wantSuffix: "1080p_%03d.ts"},
		{name: "nested new file", target: "sub/x.ts", wantSuffix: filepath.Join("sub", "x.ts")},
		{name: "dotdot prefix in name", target: "..720p", wantSuffix: "..720p"},
		{name: "parent traversal", target: "../escape.ts", wantErr: true},
		{name: "absolute", target: "/etc/passwd", wantErr: true},
		{name: "backslash", target: `a\b`, wantErr: true},
	}
	if runtime.GOOS != "windows" {
		tests = append(tests, struct {
			name       string
			target     string
			wantErr    bool
			wantSuffix string
		}{name: "symlink escape", target: "up/escape.ts", wantErr: true})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConfineRelPath(root, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got))
			assert.Equal(t, tt.wantSuffix, got[len(got)-len(tt.wantSuffix):])
		})
	}
}

func TestConfineRelPathMissingRoot(t *testing.T) {
	_, err := ConfineRelPath(filepath.Join(t.TempDir(), "missing"), "a.ts")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
