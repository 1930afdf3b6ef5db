// Package completion adapts the external Completion Service: given the full
// message log of a trip, produce the next assistant reply.
package completion

import (
	"context"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

// Completer produces an assistant reply for a message log. Implementations
// must be safe for concurrent use and return ErrEmptyReply when the service
// answered without content.
type Completer interface {
	Complete(ctx context.Context, messages []protocol.Message) (string, error)
}

// Func adapts a function to the Completer interface.
type Func func(ctx context.Context, messages []protocol.Message) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	return f(ctx, messages)
}
