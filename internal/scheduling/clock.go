package scheduling

import (
	"errors"
	"time"
)

// ClockState attendance state of one student
type ClockState string

const (
	ClockClosed ClockState = "closed"
	ClockOpen   ClockState = "open"
)

// ClockAction attendance transition
type ClockAction string

const (
	ActionSignIn  ClockAction = "sign_in"
	ActionSignOut ClockAction = "sign_out"
)

var (
	ErrAlreadySignedIn = errors.New("student already has an open attendance session")
	ErrNotSignedIn     = errors.New("student has no open attendance session")
	ErrUnknownAction   = errors.New("unknown clock action")
)

// StateOf derives the clock state from a student's attendance entries.
func StateOf(entries []AttendanceEntry) ClockState {
	for _, e := range entries {
		if e.Open() {
			return ClockOpen
		}
	}
	return ClockClosed
}

// Transition validates action against state and returns the next state.
func Transition(state ClockState, action ClockAction) (ClockState, error) {
	switch action {
	case ActionSignIn:
		if state == ClockOpen {
			return state, ErrAlreadySignedIn
		}
		return ClockOpen, nil
	case ActionSignOut:
		if state != ClockOpen {
			return state, ErrNotSignedIn
		}
		return ClockClosed, nil
	default:
		return state, ErrUnknownAction
	}
}

// ToggleAction picks the only legal action for state.
func ToggleAction(state ClockState) ClockAction {
	if state == ClockOpen {
		return ActionSignOut
	}
	return ActionSignIn
}

// Close records the sign-out on an open entry and computes its hours.
func Close(e *AttendanceEntry, at time.Time) error {
	if !e.Open() {
		return ErrNotSignedIn
	}
	out := at
	hours := SessionHours(e.SignIn, out)
	e.SignOut = &out
	e.Hours = &hours
	return nil
}
