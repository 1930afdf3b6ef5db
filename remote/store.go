// Package remote adapts the durable Persistence Service. A Store reads and
// writes the per-trip itinerary text and message log as one record; Store
// implementations talk to the service over HTTP or sit directly on a
// kvstore.Backend.
package remote

import (
	"context"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

// Record is the durable state held for one trip. Absent fields come back as
// an empty itinerary and an empty history.
type Record struct {
	Itinerary   string             `json:"itinerary"`
	ChatHistory []protocol.Message `json:"chatHistory"`
}

// Update is a partial write. A nil Itinerary, empty itinerary text, or empty
// ChatHistory leaves the stored field untouched.
type Update struct {
	Itinerary   *string
	ChatHistory []protocol.Message
}

// NewUpdate builds an Update carrying both fields.
func NewUpdate(itinerary string, history []protocol.Message) Update {
	return Update{Itinerary: &itinerary, ChatHistory: protocol.CloneLog(history)}
}

// Empty reports whether u would write nothing.
func (u Update) Empty() bool {
	return (u.Itinerary == nil || *u.Itinerary == "") && len(u.ChatHistory) == 0
}

// Store is the Remote Store Adapter. Implementations must be safe for
// concurrent use. No retries are performed.
type Store interface {
	// Get returns the stored record for tripID.
	Get(ctx context.Context, tripID string) (Record, error)
	// Set applies u to the record for tripID.
	Set(ctx context.Context, tripID string, u Update) error
}
