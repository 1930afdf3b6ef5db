package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/observability"
	"github.com/tailored-agentic-units/planner/remote"
)

type storeHandler struct {
	store    remote.Store
	observer observability.Observer
}

// Handle serves GET and POST on the itinerary store route.
func (h *storeHandler) Handle(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		return h.get(c)
	case fiber.MethodPost:
		return h.set(c)
	default:
		return methodNotAllowed(c)
	}
}

func (h *storeHandler) get(c *fiber.Ctx) error {
	tripID := c.Query("tripId")
	if tripID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing tripId in query."})
	}

	rec, err := h.store.Get(c.UserContext(), tripID)
	if err != nil {
		failed(c.UserContext(), h.observer, remote.StorePath, tripID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load data from storage."})
	}

	emit(c.UserContext(), h.observer, EventStoreGet, observability.LevelVerbose, map[string]any{
		"trip_id":       tripID,
		"messages":      len(rec.ChatHistory),
		"has_itinerary": rec.Itinerary != "",
	})

	return c.JSON(rec)
}

func (h *storeHandler) set(c *fiber.Ctx) error {
	var req remote.SetRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
	}
	if req.TripID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing tripId in request body."})
	}

	u := remote.Update{ChatHistory: req.ChatHistory}
	if req.Itinerary != "" {
		u.Itinerary = &req.Itinerary
	}

	if err := h.store.Set(c.UserContext(), req.TripID, u); err != nil {
		failed(c.UserContext(), h.observer, remote.StorePath, req.TripID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save to storage."})
	}

	emit(c.UserContext(), h.observer, EventStoreSet, observability.LevelVerbose, map[string]any{
		"trip_id":       req.TripID,
		"messages":      len(req.ChatHistory),
		"has_itinerary": req.Itinerary != "",
	})

	return c.JSON(fiber.Map{"success": true})
}

type chatHandler struct {
	completer completion.Completer
	observer  observability.Observer
}

// Complete proxies a message log to the completer.
func (h *chatHandler) Complete(c *fiber.Ctx) error {
	var req completion.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(completion.ChatResponse{Error: "Missing messages."})
	}

	reply, err := h.completer.Complete(c.UserContext(), req.Messages)
	if errors.Is(err, completion.ErrEmptyReply) {
		return c.Status(fiber.StatusInternalServerError).JSON(completion.ChatResponse{Error: "Invalid response from completion provider."})
	}
	if err != nil {
		failed(c.UserContext(), h.observer, completion.ChatPath, "", err)
		return c.Status(fiber.StatusInternalServerError).JSON(completion.ChatResponse{Error: "Failed to generate chat response."})
	}

	emit(c.UserContext(), h.observer, EventChatComplete, observability.LevelInfo, map[string]any{
		"messages":     len(req.Messages),
		"reply_length": len(reply),
	})

	return c.JSON(completion.ChatResponse{Reply: reply})
}

// Draft generates a standalone itinerary for a location and date range.
func (h *chatHandler) Draft(c *fiber.Ctx) error {
	var req completion.DraftRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields."})
	}

	itinerary, err := completion.Draft(c.UserContext(), h.completer, req)
	if err != nil {
		failed(c.UserContext(), h.observer, DraftPath, "", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate itinerary."})
	}

	emit(c.UserContext(), h.observer, EventDraftComplete, observability.LevelInfo, map[string]any{
		"location":         req.Location,
		"itinerary_length": len(itinerary),
	})

	return c.JSON(fiber.Map{"itinerary": itinerary})
}

func emit(ctx context.Context, o observability.Observer, t observability.EventType, level observability.Level, data map[string]any) {
	o.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "server",
		Data:      data,
	})
}

func failed(ctx context.Context, o observability.Observer, path, tripID string, err error) {
	data := map[string]any{"path": path, "error": err.Error()}
	if tripID != "" {
		data["trip_id"] = tripID
	}
	emit(ctx, o, EventRequestFailed, observability.LevelError, data)
}
