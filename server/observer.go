package server

import "github.com/tailored-agentic-units/planner/observability"

// Server event types.
const (
	EventStoreGet      observability.EventType = "server.store.get"
	EventStoreSet      observability.EventType = "server.store.set"
	EventChatComplete  observability.EventType = "server.chat.complete"
	EventDraftComplete observability.EventType = "server.draft.complete"
	EventRequestFailed observability.EventType = "server.request.failed"
)
