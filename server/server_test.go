package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/core/protocol"
	"github.com/tailored-agentic-units/planner/kvstore"
	"github.com/tailored-agentic-units/planner/observability"
	"github.com/tailored-agentic-units/planner/remote"
	"github.com/tailored-agentic-units/planner/server"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (o *recordingObserver) OnEvent(_ context.Context, e observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) has(t observability.EventType) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.events {
		if e.Type == t {
			return true
		}
	}
	return false
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (remote.Record, error) {
	return remote.Record{}, errors.New("kv unavailable")
}

func (failingStore) Set(context.Context, string, remote.Update) error {
	return errors.New("kv unavailable")
}

func newTestServer(t *testing.T, store remote.Store, c completion.Completer) (*server.Server, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	cfg := server.DefaultConfig()
	srv := server.New(&cfg, store, c, server.WithObserver(obs), server.WithAccessLog(false))
	return srv, obs
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
	}
	return resp.StatusCode, out
}

func TestStore_GetAbsentTrip(t *testing.T) {
	srv, obs := newTestServer(t, remote.NewBackendStore(kvstore.NewMemory()), completion.NewMock())

	status, body := doJSON(t, srv.App(), http.MethodGet, "/api/itinerary-store?tripId=kyoto", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["itinerary"] != "" {
		t.Errorf("itinerary = %v, want empty string", body["itinerary"])
	}
	history, ok := body["chatHistory"].([]any)
	if !ok || len(history) != 0 {
		t.Errorf("chatHistory = %v, want []", body["chatHistory"])
	}
	if !obs.has(server.EventStoreGet) {
		t.Error("expected store get event")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, remote.NewBackendStore(kvstore.NewMemory()), completion.NewMock())

	post := `{"tripId":"kyoto-2026-03-01-2026-03-04","itinerary":"Day 1: Gion","chatHistory":[{"role":"system","content":"s"},{"role":"user","content":"u"}]}`
	status, body := doJSON(t, srv.App(), http.MethodPost, "/api/itinerary-store", post)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("POST = %d %v", status, body)
	}

	status, body = doJSON(t, srv.App(), http.MethodGet, "/api/itinerary-store?tripId=kyoto-2026-03-01-2026-03-04", "")
	if status != http.StatusOK {
		t.Fatalf("GET status = %d", status)
	}
	if body["itinerary"] != "Day 1: Gion" {
		t.Errorf("itinerary = %v", body["itinerary"])
	}
	if history, _ := body["chatHistory"].([]any); len(history) != 2 {
		t.Errorf("chatHistory = %v", body["chatHistory"])
	}
}

func TestStore_PartialUpdateKeepsOtherField(t *testing.T) {
	srv, _ := newTestServer(t, remote.NewBackendStore(kvstore.NewMemory()), completion.NewMock())

	doJSON(t, srv.App(), http.MethodPost, "/api/itinerary-store", `{"tripId":"t","itinerary":"Plan A"}`)
	doJSON(t, srv.App(), http.MethodPost, "/api/itinerary-store", `{"tripId":"t","chatHistory":[{"role":"system","content":"s"}]}`)

	_, body := doJSON(t, srv.App(), http.MethodGet, "/api/itinerary-store?tripId=t", "")
	if body["itinerary"] != "Plan A" {
		t.Errorf("itinerary = %v, want Plan A", body["itinerary"])
	}
}

func TestStore_Errors(t *testing.T) {
	mem := remote.NewBackendStore(kvstore.NewMemory())

	tests := []struct {
		name   string
		store  remote.Store
		method string
		target string
		body   string
		status int
		errMsg string
	}{
		{name: "get without tripId", store: mem, method: http.MethodGet, target: "/api/itinerary-store", status: http.StatusBadRequest, errMsg: "Missing tripId in query."},
		{name: "post without tripId", store: mem, method: http.MethodPost, target: "/api/itinerary-store", body: `{"itinerary":"x"}`, status: http.StatusBadRequest, errMsg: "Missing tripId in request body."},
		{name: "post invalid body", store: mem, method: http.MethodPost, target: "/api/itinerary-store", body: `{not json`, status: http.StatusBadRequest, errMsg: "Invalid request body."},
		{name: "method not allowed", store: mem, method: http.MethodPut, target: "/api/itinerary-store", body: `{}`, status: http.StatusMethodNotAllowed, errMsg: "Method not allowed"},
		{name: "delete not allowed", store: mem, method: http.MethodDelete, target: "/api/itinerary-store?tripId=t", status: http.StatusMethodNotAllowed, errMsg: "Method not allowed"},
		{name: "get storage failure", store: failingStore{}, method: http.MethodGet, target: "/api/itinerary-store?tripId=t", status: http.StatusInternalServerError, errMsg: "Failed to load data from storage."},
		{name: "post storage failure", store: failingStore{}, method: http.MethodPost, target: "/api/itinerary-store", body: `{"tripId":"t","itinerary":"x"}`, status: http.StatusInternalServerError, errMsg: "Failed to save to storage."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.store, completion.NewMock())
			status, body := doJSON(t, srv.App(), tt.method, tt.target, tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if body["error"] != tt.errMsg {
				t.Errorf("error = %v, want %q", body["error"], tt.errMsg)
			}
		})
	}
}

func TestStore_FailureEmitsEvent(t *testing.T) {
	srv, obs := newTestServer(t, failingStore{}, completion.NewMock())
	doJSON(t, srv.App(), http.MethodGet, "/api/itinerary-store?tripId=t", "")
	if !obs.has(server.EventRequestFailed) {
		t.Error("expected request failed event")
	}
}

func TestChat(t *testing.T) {
	echo := completion.Func(func(_ context.Context, msgs []protocol.Message) (string, error) {
		return "echo: " + msgs[len(msgs)-1].Content, nil
	})
	empty := completion.Func(func(context.Context, []protocol.Message) (string, error) {
		return "", completion.ErrEmptyReply
	})
	broken := completion.Func(func(context.Context, []protocol.Message) (string, error) {
		return "", errors.New("upstream down")
	})

	body := `{"messages":[{"role":"system","content":"s"},{"role":"user","content":"hello"}]}`

	tests := []struct {
		name      string
		completer completion.Completer
		method    string
		body      string
		status    int
		reply     string
		errMsg    string
	}{
		{name: "reply", completer: echo, method: http.MethodPost, body: body, status: http.StatusOK, reply: "echo: hello"},
		{name: "empty reply", completer: empty, method: http.MethodPost, body: body, status: http.StatusInternalServerError, errMsg: "Invalid response from completion provider."},
		{name: "provider failure", completer: broken, method: http.MethodPost, body: body, status: http.StatusInternalServerError, errMsg: "Failed to generate chat response."},
		{name: "missing messages", completer: echo, method: http.MethodPost, body: `{}`, status: http.StatusBadRequest, errMsg: "Missing messages."},
		{name: "get not allowed", completer: echo, method: http.MethodGet, status: http.StatusMethodNotAllowed, errMsg: "Method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, remote.NewBackendStore(kvstore.NewMemory()), tt.completer)
			status, out := doJSON(t, srv.App(), tt.method, "/api/chat", tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if tt.reply != "" && out["reply"] != tt.reply {
				t.Errorf("reply = %v, want %q", out["reply"], tt.reply)
			}
			if tt.errMsg != "" && out["error"] != tt.errMsg {
				t.Errorf("error = %v, want %q", out["error"], tt.errMsg)
			}
		})
	}
}

func TestDraft(t *testing.T) {
	srv, obs := newTestServer(t, remote.NewBackendStore(kvstore.NewMemory()), completion.NewMock())

	status, out := doJSON(t, srv.App(), http.MethodPost, "/api/itinerary",
		`{"location":"Kyoto","startDate":"2026-03-01","endDate":"2026-03-04","userInput":"temples"}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d (%v)", status, out)
	}
	itinerary, _ := out["itinerary"].(string)
	if !strings.HasPrefix(itinerary, "✈️ Trip to Kyoto from 2026-03-01 to 2026-03-04") {
		t.Errorf("itinerary = %q", itinerary)
	}
	if !obs.has(server.EventDraftComplete) {
		t.Error("expected draft event")
	}

	status, out = doJSON(t, srv.App(), http.MethodPost, "/api/itinerary", `{"location":"Kyoto"}`)
	if status != http.StatusBadRequest || out["error"] != "Missing required fields." {
		t.Errorf("missing fields = %d %v", status, out)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, remote.NewBackendStore(kvstore.NewMemory()), completion.NewMock())

	req := httptest.NewRequest(http.MethodOptions, "/api/itinerary-store", bytes.NewReader(nil))
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, remote.NewBackendStore(kvstore.NewMemory()), completion.NewMock())
	status, out := doJSON(t, srv.App(), http.MethodGet, "/health", "")
	if status != http.StatusOK || out["status"] != "healthy" {
		t.Errorf("health = %d %v", status, out)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := server.DefaultConfig()
	cfg.Merge(&server.Config{Addr: ":8080", Metrics: true})

	if cfg.Addr != ":8080" || !cfg.Metrics {
		t.Errorf("merge not applied: %+v", cfg)
	}
	if cfg.AllowOrigins != "*" {
		t.Errorf("AllowOrigins = %q", cfg.AllowOrigins)
	}
}
