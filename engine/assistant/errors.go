package assistant

import "errors"

// Sentinel errors for facade operations. Callers branch on presence and
// argument validity with errors.Is.
var (
	// ErrThreadNotFound is returned for thread IDs absent from the state.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrContactNotFound is returned for contact IDs absent from the state.
	ErrContactNotFound = errors.New("contact not found")
	// ErrInvalidPriority is returned for priorities outside the four-level
	// enumeration.
	ErrInvalidPriority = errors.New("invalid priority level")
	// ErrInvalidTimeframe is returned for timeframes outside day/week/month.
	ErrInvalidTimeframe = errors.New("invalid timeframe")
)
