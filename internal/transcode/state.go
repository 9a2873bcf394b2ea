// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transcode

import "fmt"

// State is the lifecycle state of a transcode job.
type State int

const (
	StatePending State = iota
	StatePreparing
	StateEncoding
	StateSucceeded
	StateFailed
	StateCanceled
)

var stateNames = [...]string{
	StatePending:   "pending",
	StatePreparing: "preparing",
	StateEncoding:  "encoding",
	StateSucceeded: "succeeded",
	StateFailed:    "failed",
	StateCanceled:  "canceled",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return StatePending, fmt.Errorf("unknown job state %q", s)
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCanceled
}

// Event triggers a state transition.
type Event int

const (
	EventPrepare Event = iota
	EventEncode
	EventSucceed
	EventFail
	EventCancel
)

// CanTransition validates if a state transition is legal.
func CanTransition(from State, event Event) bool {
	switch from {
	case StatePending:
		return event == EventPrepare || event == EventFail || event == EventCancel
	case StatePreparing:
		return event == EventEncode || event == EventFail || event == EventCancel
	case StateEncoding:
		return event == EventSucceed || event == EventFail || event == EventCancel
	default:
		return false
	}
}

// Transition returns the state after event, or from unchanged when the
// transition is illegal.
func Transition(from State, event Event) State {
	if !CanTransition(from, event) {
		return from
	}
	switch event {
	case EventPrepare:
		return StatePreparing
	case EventEncode:
		return StateEncoding
	case EventSucceed:
		return StateSucceeded
	case EventFail:
		return StateFailed
	case EventCancel:
		return StateCanceled
	default:
		return from
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	parsed, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
