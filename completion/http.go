package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

// ChatPath is the Completion Service route.
const ChatPath = "/api/chat"

// ChatRequest is the body accepted by the Completion Service.
type ChatRequest struct {
	Messages []protocol.Message `json:"messages"`
}

// ChatResponse is the body returned by the Completion Service.
type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// HTTP is a Completer that calls a Completion Service over HTTP.
type HTTP struct {
	endpoint string
	client   *http.Client
}

// NewHTTP creates an HTTP completer from configuration.
func NewHTTP(cfg *Config) (*HTTP, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("completion service URL is required")
	}
	return &HTTP{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + ChatPath,
		client:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (h *HTTP) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	data, err := json.Marshal(ChatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	var out ChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: status %d: invalid body", ErrRequestFailed, resp.StatusCode)
	}

	// A decoded body without a reply is an empty reply at any status; only
	// transport and decode failures count as request failures.
	if strings.TrimSpace(out.Reply) == "" {
		if out.Error != "" {
			return "", fmt.Errorf("%w: status %d: %s", ErrEmptyReply, resp.StatusCode, out.Error)
		}
		return "", ErrEmptyReply
	}
	return out.Reply, nil
}
