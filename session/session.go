// Package session holds the live conversation state for the currently
// selected trip: its message log and promoted itinerary snapshot.
package session

import (
	"github.com/tailored-agentic-units/planner/core/protocol"
)

// Session is the in-memory state of one trip selection. Each selection gets
// a fresh Session with its own ID, so a reply addressed to an earlier
// selection of the same trip can be told apart. Implementations must be safe
// for concurrent use.
type Session interface {
	// ID returns the unique identifier of this selection.
	ID() string
	// TripID returns the trip the session belongs to.
	TripID() string
	// Location returns the trip location used for the system message.
	Location() string
	// AddMessage appends a user or assistant message to the log.
	AddMessage(msg protocol.Message) error
	// Messages returns a copy of the message log.
	Messages() []protocol.Message
	// Len returns the number of messages in the log.
	Len() int
	// Snapshot returns the promoted itinerary, if any.
	Snapshot() (protocol.Snapshot, bool)
	// SetSnapshot replaces the promoted itinerary content.
	SetSnapshot(content string) protocol.Snapshot
}
