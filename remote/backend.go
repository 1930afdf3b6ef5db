package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/planner/core/protocol"
	"github.com/tailored-agentic-units/planner/kvstore"
)

// Key prefixes used on the backend. The itinerary is stored as raw text and
// the chat history as a JSON array.
const (
	itineraryPrefix = "itinerary_"
	chatPrefix      = "chat_"
)

// ItineraryKey returns the backend key of the itinerary text for tripID.
func ItineraryKey(tripID string) string { return itineraryPrefix + tripID }

// ChatKey returns the backend key of the chat history for tripID.
func ChatKey(tripID string) string { return chatPrefix + tripID }

type backendStore struct {
	backend kvstore.Backend
}

// NewBackendStore creates a Store that reads and writes b directly.
func NewBackendStore(b kvstore.Backend) Store {
	return &backendStore{backend: b}
}

func (s *backendStore) Get(ctx context.Context, tripID string) (Record, error) {
	if tripID == "" {
		return Record{}, ErrMissingTripID
	}

	rec := Record{ChatHistory: []protocol.Message{}}

	itinerary, _, err := s.backend.Get(ctx, ItineraryKey(tripID))
	if err != nil {
		return Record{}, err
	}
	rec.Itinerary = itinerary

	raw, found, err := s.backend.Get(ctx, ChatKey(tripID))
	if err != nil {
		return Record{}, err
	}
	if found && raw != "" {
		var history []protocol.Message
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			return Record{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, ChatKey(tripID), err)
		}
		if history != nil {
			rec.ChatHistory = history
		}
	}

	return rec, nil
}

func (s *backendStore) Set(ctx context.Context, tripID string, u Update) error {
	if tripID == "" {
		return ErrMissingTripID
	}

	if u.Itinerary != nil && *u.Itinerary != "" {
		if err := s.backend.Set(ctx, ItineraryKey(tripID), *u.Itinerary); err != nil {
			return err
		}
	}

	if len(u.ChatHistory) > 0 {
		data, err := json.Marshal(u.ChatHistory)
		if err != nil {
			return fmt.Errorf("failed to encode chat history: %w", err)
		}
		if err := s.backend.Set(ctx, ChatKey(tripID), string(data)); err != nil {
			return err
		}
	}

	return nil
}
