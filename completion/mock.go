package completion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

var (
	draftPattern    = regexp.MustCompile(`trip to (.+?) from (\S+) to (\S+?)\.`)
	locationPattern = regexp.MustCompile(`trip location is (.+?)\.?$`)
)

// SampleItinerary returns the canned three-day itinerary used in mock mode.
func SampleItinerary(location, start, end string) string {
	header := fmt.Sprintf("✈️ Trip to %s", location)
	if start != "" && end != "" {
		header += fmt.Sprintf(" from %s to %s", start, end)
	}

	return header + `

Day 1:
- Arrive and explore the local neighborhood
- Visit a famous landmark in ` + location + `
- Enjoy dinner at a recommended local restaurant

Day 2:
- Take a city tour
- Visit two museums or cultural spots
- Try a regional dish for lunch
- Sunset walk or evening show

Day 3:
- Relax at a park or beach
- Do some shopping or visit a market
- Farewell dinner with local flair`
}

// Mock is an offline Completer that answers every log with SampleItinerary.
type Mock struct{}

// NewMock creates a Mock completer.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	location, start, end := "your destination", "", ""

	if len(messages) > 0 && messages[0].Role == protocol.RoleSystem {
		if match := locationPattern.FindStringSubmatch(strings.TrimSpace(messages[0].Content)); match != nil {
			location = match[1]
		}
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != protocol.RoleUser {
			continue
		}
		if match := draftPattern.FindStringSubmatch(messages[i].Content); match != nil {
			location, start, end = match[1], match[2], match[3]
		}
		break
	}

	return SampleItinerary(location, start, end), nil
}
