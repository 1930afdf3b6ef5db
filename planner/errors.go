package planner

import "errors"

// Sentinel errors returned by Controller operations.
var (
	// ErrSuperseded is returned by SelectTrip when a later SelectTrip call
	// started before this one finished loading.
	ErrSuperseded = errors.New("trip selection superseded")

	// ErrNoActiveTrip is returned when an operation needs a loaded trip.
	ErrNoActiveTrip = errors.New("no active trip")

	// ErrClosed is reported for remote writes submitted after Close.
	ErrClosed = errors.New("controller closed")
)
