package planner

import (
	"time"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

// Assistant content recorded in place of a reply when the completion fails.
const (
	FailureNotice    = "⚠️ Error talking to server."
	NoResponseNotice = "⚠️ No response received."
)

// State is the lifecycle phase of the active session.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateSending
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Source names the tier the active session was loaded from.
type Source string

const (
	SourceNone   Source = ""
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceFresh  Source = "fresh"
)

// View is a point-in-time copy of the active session.
type View struct {
	SessionID   string
	TripID      string
	Location    string
	Messages    []protocol.Message
	Snapshot    protocol.Snapshot
	HasSnapshot bool
	State       State
	Source      Source
}

// Severity classifies a Notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Notice is a transient, dismissable status message for the user.
type Notice struct {
	Severity Severity
	TripID   string
	Message  string
	Time     time.Time
}

// Status is the outcome of PromoteCurrentItinerary.
type Status int

const (
	// StatusSkipped means there was nothing to promote.
	StatusSkipped Status = iota
	// StatusSaved means the snapshot reached both storage tiers.
	StatusSaved
	// StatusFailed means the remote write failed; the snapshot is still
	// held in memory and in the local cache.
	StatusFailed
	// StatusStale means the trip was switched while the write was pending.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusSaved:
		return "saved"
	case StatusFailed:
		return "failed"
	case StatusStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Result holds the outcome of PromoteCurrentItinerary.
type Result struct {
	Status   Status
	Snapshot protocol.Snapshot
	Err      error
}
