package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

// StorePath is the Persistence Service route.
const StorePath = "/api/itinerary-store"

// SetRequest is the POST body accepted by the Persistence Service.
type SetRequest struct {
	TripID      string             `json:"tripId"`
	Itinerary   string             `json:"itinerary,omitempty"`
	ChatHistory []protocol.Message `json:"chatHistory,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

// HTTPStore is a Store backed by the Persistence Service HTTP contract.
type HTTPStore struct {
	endpoint string
	client   *http.Client
}

// NewHTTPStore creates an HTTPStore from configuration.
func NewHTTPStore(cfg *Config) (*HTTPStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote store URL is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid remote store URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPStore{
		endpoint: strings.TrimRight(cfg.URL, "/") + StorePath,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPStore) Get(ctx context.Context, tripID string) (Record, error) {
	if tripID == "" {
		return Record{}, ErrMissingTripID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.endpoint+"?tripId="+url.QueryEscape(tripID), nil)
	if err != nil {
		return Record{}, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := s.do(req)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.ChatHistory == nil {
		rec.ChatHistory = []protocol.Message{}
	}
	return rec, nil
}

func (s *HTTPStore) Set(ctx context.Context, tripID string, u Update) error {
	if tripID == "" {
		return ErrMissingTripID
	}

	payload := SetRequest{TripID: tripID, ChatHistory: u.ChatHistory}
	if u.Itinerary != nil {
		payload.Itinerary = *u.Itinerary
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = s.do(req)
	return err
}

func (s *HTTPStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote store request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, eb.Error)
		}
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return body, nil
}
