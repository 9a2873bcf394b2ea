// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fs

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/metrics"
)

// FS abstracts the filesystem calls of the cleaner for testability.
type FS interface {
	ReadDir(name string) ([]os.DirEntry, error)
	Remove(name string) error
}

// OSFS uses actual os operations.
type OSFS struct{}

func (OSFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }
func (OSFS) Remove(name string) error                  { return os.Remove(name) }

// Report summarises one purge.
type Report struct {
	Removed    int
	Failed     int
	DirRemoved bool
}

// Cleaner purges the output of a failed job.
type Cleaner struct {
	FS FS
	// RemoveDir removes the directory itself once its files are gone.
	RemoveDir bool
}

// NewCleaner returns a Cleaner backed by the real filesystem.
func NewCleaner(removeDir bool) *Cleaner {
	return &Cleaner{FS: OSFS{}, RemoveDir: removeDir}
}

// Purge removes every non-directory entry directly inside dir, then dir itself
// when RemoveDir is set. It does not recurse. Failures are logged and counted
// in the Report but never returned: a purge runs on an error path whose
// original error must reach the caller unchanged.
func (c *Cleaner) Purge(dir string) Report {
	fsys := c.FS
	if fsys == nil {
		fsys = OSFS{}
	}
	logger := log.WithComponent("cleanup").With().Str(log.FieldOutputDir, dir).Logger()

	var rep Report
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			rep.Failed++
			logger.Warn().Err(err).Str("event", "cleanup.readdir_failed").Msg("failed to list output directory")
		}
		metrics.RecordCleanup(rep.Removed, rep.Failed)
		return rep
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if err := fsys.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			rep.Failed++
			logger.Warn().Err(err).Str("event", "cleanup.remove_failed").Str(log.FieldPath, p).Msg("failed to remove file")
			continue
		}
		rep.Removed++
	}

	if c.RemoveDir {
		// Fails harmlessly when subdirectories or foreign files remain.
		if err := fsys.Remove(dir); err == nil {
			rep.DirRemoved = true
		} else if !errors.Is(err, os.ErrNotExist) {
			logger.Debug().Err(err).Str("event", "cleanup.rmdir_skipped").Msg("output directory kept")
		}
	}

	metrics.RecordCleanup(rep.Removed, rep.Failed)
	logger.Info().
		Str("event", "cleanup.done").
		Int("removed", rep.Removed).
		Int("failed", rep.Failed).
		Bool("dir_removed", rep.DirRemoved).
		Msg("output directory purged")
	return rep
}
