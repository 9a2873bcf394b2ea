// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fs holds the filesystem primitives of a packaging job: output
// directory creation, path confinement and failure cleanup.
package fs

import (
	"errors"
	"fmt"
	"os"
)

// DirPerm is the mode of output directories created by EnsureDir.
const DirPerm os.FileMode = 0o755

// EnsureDir creates path as a directory without creating parents. An existing
// directory is accepted. It reports whether this call created the directory.
func EnsureDir(path string) (bool, error) {
	err := os.Mkdir(path, DirPerm)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return false, err
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return false, statErr
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s exists and is not a directory", path)
	}
	return false, nil
}
