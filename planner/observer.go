package planner

import "github.com/tailored-agentic-units/planner/observability"

// Controller event types.
const (
	EventTripSelect      observability.EventType = "planner.trip.select"
	EventTripLoaded      observability.EventType = "planner.trip.loaded"
	EventTripSuperseded  observability.EventType = "planner.trip.superseded"
	EventRemoteFallback  observability.EventType = "planner.remote.fallback"
	EventSendStart       observability.EventType = "planner.send.start"
	EventSendSkipped     observability.EventType = "planner.send.skipped"
	EventSendComplete    observability.EventType = "planner.send.complete"
	EventSendStale       observability.EventType = "planner.send.stale"
	EventPromoteComplete observability.EventType = "planner.promote.complete"
	EventPersistFailed   observability.EventType = "planner.persist.failed"
)
