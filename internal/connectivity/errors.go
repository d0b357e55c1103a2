package connectivity

import "errors"

var (
	// ErrNotInitialized is returned by queries and listener calls made
	// before Initialize or after Close.
	ErrNotInitialized = errors.New("connectivity: tracker not initialized")

	// ErrAlreadyInitialized is returned by Initialize on a live tracker.
	ErrAlreadyInitialized = errors.New("connectivity: tracker already initialized")

	// ErrInvalidCallerContext is returned when a UI-scoped operation is
	// bound to a scope that does not own UI.
	ErrInvalidCallerContext = errors.New("connectivity: scope does not own UI")
)
