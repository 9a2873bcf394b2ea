// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from  State
		event Event
		want  State
		ok    bool
	}{
		{StatePending, EventPrepare, StatePreparing, true},
		{StatePending, EventFail, StateFailed, true},
		{StatePending, EventCancel, StateCanceled, true},
		{StatePending, EventEncode, StatePending, false},
		{StatePending, EventSucceed, StatePending, false},
		{StatePreparing, EventEncode, StateEncoding, true},
		{StatePreparing, EventFail, StateFailed, true},
		{StatePreparing, EventSucceed, StatePreparing, false},
		{StateEncoding, EventSucceed, StateSucceeded, true},
		{StateEncoding, EventCancel, StateCanceled, true},
		{StateEncoding, EventPrepare, StateEncoding, false},
		{StateSucceeded, EventFail, StateSucceeded, false},
		{StateFailed, EventPrepare, StateFailed, false},
		{StateCanceled, EventEncode, StateCanceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.ok, CanTransition(tt.from, tt.event))
			assert.Equal(t, tt.want, Transition(tt.from, tt.event))
		})
	}
}

func TestStateTerminalAndParse(t *testing.T) {
	for _, s := range []State{StatePending, StatePreparing, StateEncoding, StateSucceeded, StateFailed, StateCanceled} {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	assert.False(t, StateEncoding.IsTerminal())
	assert.True(t, StateCanceled.IsTerminal())
	assert.Equal(t, "unknown", State(42).String())

	_, err := ParseState("running")
	assert.Error(t, err)
}
