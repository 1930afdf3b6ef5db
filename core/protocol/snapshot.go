package protocol

// Snapshot is the promoted, authoritative itinerary text for one trip. It is
// copied out of an assistant message at promotion time and stored apart from
// the message log so that replacing the log does not discard it.
type Snapshot struct {
	TripID  string `json:"tripId"`
	Content string `json:"content"`
}
