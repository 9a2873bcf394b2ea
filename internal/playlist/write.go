// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/rendition"
	"github.com/google/renameio/v2"
)

// FilePerm is the mode of written playlists; segment servers need read access.
const FilePerm = 0o644

// WriteMaster writes the multivariant playlist to {outputDir}/index.m3u8 and
// returns that path. The write is atomic and durable (temp file, fsync,
// rename), so a reader never observes a partial playlist.
func WriteMaster(ctx context.Context, outputDir string, renditions []rendition.Rendition) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	logger := log.WithContext(ctx, log.WithComponent("playlist"))
	path := filepath.Join(outputDir, MasterFileName)

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(FilePerm))
	if err != nil {
		return "", fmt.Errorf("create pending playlist file: %w", err)
	}
	defer func() {
		// No-op once committed.
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending playlist file")
		}
	}()

	if err := WriteMasterTo(pendingFile, renditions); err != nil {
		return "", fmt.Errorf("write playlist data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("atomically replace playlist file: %w", err)
	}

	logger.Debug().
		Str("event", "playlist.written").
		Str(log.FieldPlaylistPath, path).
		Int(log.FieldRenditions, len(renditions)).
		Msg("multivariant playlist written")
	return path, nil
}
