package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

// DraftSystemPrompt frames standalone itinerary drafts.
const DraftSystemPrompt = "You are a helpful travel planner assistant."

// DraftRequest describes an itinerary draft for a trip.
type DraftRequest struct {
	Location  string `json:"location"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	UserInput string `json:"userInput,omitempty"`
}

// Validate requires location and both dates.
func (r DraftRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" || r.StartDate == "" || r.EndDate == "" {
		return fmt.Errorf("missing required fields")
	}
	return nil
}

// DraftRequestFor builds a DraftRequest from a trip and free-form notes.
func DraftRequestFor(trip protocol.Trip, notes string) DraftRequest {
	return DraftRequest{
		Location:  trip.Location,
		StartDate: trip.StartDate.Format(protocol.DateLayout),
		EndDate:   trip.EndDate.Format(protocol.DateLayout),
		UserInput: notes,
	}
}

// DraftPrompt returns the user prompt asking for a day-by-day itinerary.
func DraftPrompt(r DraftRequest) string {
	notes := strings.TrimSpace(r.UserInput)
	if notes == "" {
		notes = "none"
	}
	return fmt.Sprintf("Create a day-by-day itinerary for a trip to %s from %s to %s. Notes: %s",
		r.Location, r.StartDate, r.EndDate, notes)
}

// Draft asks c for a standalone itinerary outside any trip conversation.
func Draft(ctx context.Context, c Completer, r DraftRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return c.Complete(ctx, []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, DraftSystemPrompt),
		protocol.NewMessage(protocol.RoleUser, DraftPrompt(r)),
	})
}
