// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcode

import (
	"sync"

	"github.com/rs/zerolog"

	hflog "github.com/ManuGH/hlsforge/internal/log"
	"github.com/ManuGH/hlsforge/internal/rendition"
)

// Job is the per-invocation record of a transcode. It is never reused.
type Job struct {
	ID         string
	InputPath  string
	OutputPath string
	Renditions []rendition.Rendition
	// Duration of the input in seconds, 0 when unknown.
	Duration float64

	mu      sync.Mutex
	state   State
	onState func(State)
	logger  zerolog.Logger
}

// State returns the current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// fire applies event and reports the new state to the observer. Illegal
// transitions are logged and ignored.
func (j *Job) fire(event Event) State {
	j.mu.Lock()
	from := j.state
	if !CanTransition(from, event) {
		j.mu.Unlock()
		j.logger.Warn().
			Str(hflog.FieldEvent, "transcode.illegal_transition").
			Str(hflog.FieldOldState, from.String()).
			Int("transition_event", int(event)).
			Msg("ignoring illegal job state transition")
		return from
	}
	to := Transition(from, event)
	j.state = to
	cb := j.onState
	j.mu.Unlock()

	j.logger.Debug().
		Str(hflog.FieldEvent, "transcode.state").
		Str(hflog.FieldOldState, from.String()).
		Str(hflog.FieldNewState, to.String()).
		Msg("job state changed")
	if cb != nil {
		cb(to)
	}
	return to
}
