// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o600))
	}
}

func TestPurgeRemovesFilesAndDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.Mkdir(dir, 0o755))
	writeFiles(t, dir, "index.m3u8", "720p.m3u8", "720p_000.ts", "720p_001.ts")

	rep := NewCleaner(true).Purge(dir)

	assert.Equal(t, Report{Removed: 4, DirRemoved: true}, rep)
	_, err := os.Stat(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPurgeKeepsDirWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "index.m3u8", "a_000.ts")

	rep := NewCleaner(false).Purge(dir)

	assert.Equal(t, 2, rep.Removed)
	assert.False(t, rep.DirRemoved)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPurgeDoesNotRecurse(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFiles(t, sub, "keep.ts")
	writeFiles(t, dir, "drop.ts")

	rep := NewCleaner(true).Purge(dir)

	assert.Equal(t, 1, rep.Removed)
	assert.False(t, rep.DirRemoved, "a non-empty directory cannot be removed")
	_, err := os.Stat(filepath.Join(sub, "keep.ts"))
	assert.NoError(t, err)
}

func TestPurgeToleratesMissingAndEmpty(t *testing.T) {
	assert.Equal(t, Report{}, NewCleaner(true).Purge(filepath.Join(t.TempDir(), "missing")))

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	assert.Equal(t, Report{DirRemoved: true}, NewCleaner(true).Purge(empty))
}

type flakyFS struct {
	OSFS
	failOn string
}

func (f flakyFS) Remove(name string) error {
	if filepath.Base(name) == f.failOn {
		return errors.New("device busy")
	}
	return f.OSFS.Remove(name)
}

func TestPurgeCountsFailuresWithoutStopping(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.ts", "b.ts", "c.ts")

	c := &Cleaner{FS: flakyFS{failOn: "b.ts"}, RemoveDir: true}
	rep := c.Purge(dir)

	assert.Equal(t, 2, rep.Removed)
	assert.Equal(t, 1, rep.Failed)
	assert.False(t, rep.DirRemoved)
}
