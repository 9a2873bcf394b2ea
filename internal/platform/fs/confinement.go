// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfineRelPath joins root and relTarget and verifies the result stays
// physically underneath root after symlink resolution. relTarget must be
// relative and must not contain backslashes.
func ConfineRelPath(root, relTarget string) (string, error) {
	if strings.Contains(relTarget, `\`) {
		return "", fmt.Errorf("path contains backslash: %s", relTarget)
	}

	cleanRel := filepath.Clean(relTarget)
	if filepath.IsAbs(cleanRel) {
		return "", fmt.Errorf("target path must be relative: %s", relTarget)
	}
	// Segment-based so names such as "..foo" stay legal.
	if cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt: %s", relTarget)
	}

	realRoot, err := realDir(root)
	if err != nil {
		return "", err
	}
	return resolveWithin(realRoot, filepath.Join(realRoot, cleanRel))
}

func realDir(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid root path: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", err
		}
		realRoot = absRoot
	}
	return realRoot, nil
}

// resolveWithin resolves symlinks of fullPath (or of its parent, when the path
// does not exist yet) and fails closed when the result leaves realRoot.
func resolveWithin(realRoot, fullPath string) (string, error) {
	var realPath string
	if _, err := os.Lstat(fullPath); err == nil {
		rp, err := filepath.EvalSymlinks(fullPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
		realPath = rp
	} else {
		dir := filepath.Dir(fullPath)
		rp, err := filepath.EvalSymlinks(dir)
		switch {
		case err == nil:
			realPath = filepath.Join(rp, filepath.Base(fullPath))
		case statOK(dir):
			return "", fmt.Errorf("failed to resolve parent path: %w", err)
		default:
			realPath = fullPath
		}
	}

	rel, err := filepath.Rel(realRoot, realPath)
	if err != nil {
		return "", fmt.Errorf("rel computation failed: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes root via symlinks: %s", realPath)
	}
	return realPath, nil
}

func statOK(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
