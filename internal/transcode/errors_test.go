// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcode

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hlsforge/internal/rendition"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	var probe error = &ProbeError{Input: "in.mp4", Err: cause}
	assert.ErrorIs(t, probe, ErrProbe)
	assert.ErrorIs(t, probe, cause)
	assert.NotErrorIs(t, probe, ErrEncode)

	var fsErr error = &FilesystemError{Op: "mkdir", Path: "/out", Err: fs.ErrPermission}
	assert.ErrorIs(t, fsErr, ErrFilesystem)
	assert.ErrorIs(t, fsErr, fs.ErrPermission)
	assert.Equal(t, "mkdir /out: permission denied", fsErr.Error())

	var enc error = &EncodeError{ExitCode: 1, Diagnostics: []string{"Conversion failed!"}, Err: cause}
	assert.ErrorIs(t, enc, ErrEncode)
	var target *EncodeError
	require.ErrorAs(t, enc, &target)
	assert.Equal(t, 1, target.ExitCode)
	assert.Contains(t, enc.Error(), "exit code 1")
}

func TestCanceledWrapsContextError(t *testing.T) {
	err := canceled(context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrorKind(t *testing.T) {
	cause := errors.New("x")
	assert.Equal(t, "probe", errorKind(&ProbeError{Err: cause}))
	assert.Equal(t, "filesystem", errorKind(&FilesystemError{Op: "write", Err: cause}))
	assert.Equal(t, "encode", errorKind(&EncodeError{ExitCode: 1, Err: cause}))
	assert.Equal(t, "canceled", errorKind(canceled(context.Canceled)))
	assert.Equal(t, "invalid_rendition", errorKind(rendition.Validate(nil)))
	assert.Equal(t, "unknown", errorKind(cause))
}
