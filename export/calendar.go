// Package export renders a trip and its promoted itinerary as an iCalendar
// document: one all-day event spanning the trip plus one event per "Day N"
// section of the itinerary.
package export

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/tailored-agentic-units/planner/core/protocol"
)

const productID = "-//tailored-agentic-units//planner//EN"

var dayHeader = regexp.MustCompile(`(?i)^\s*day\s+(\d+)\s*[:.\-]?\s*(.*)$`)

// Day is one "Day N" section of an itinerary.
type Day struct {
	Number int
	Title  string
	Body   string
}

// SplitDays splits itinerary text into its "Day N" sections. Text before the
// first header is ignored. An itinerary without headers yields no days.
func SplitDays(itinerary string) []Day {
	var days []Day
	var current *Day
	var body []string

	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(body, "\n"))
			days = append(days, *current)
		}
	}

	for _, line := range strings.Split(itinerary, "\n") {
		if m := dayHeader.FindStringSubmatch(line); m != nil {
			flush()
			n, _ := strconv.Atoi(m[1])
			current = &Day{Number: n, Title: strings.TrimSpace(m[2])}
			body = body[:0]
			continue
		}
		if current != nil {
			body = append(body, strings.TrimSpace(line))
		}
	}
	flush()

	return days
}

// Calendar builds the iCalendar document for trip with the given itinerary.
// now stamps every event.
func Calendar(trip protocol.Trip, snap protocol.Snapshot, now time.Time) (*ics.Calendar, error) {
	if err := trip.Validate(); err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	tripEvent := cal.AddEvent(trip.ID + "@planner")
	tripEvent.SetSummary("Trip to " + trip.Location)
	tripEvent.SetLocation(trip.Location)
	tripEvent.SetDtStampTime(now)
	tripEvent.SetAllDayStartAt(trip.StartDate)
	tripEvent.SetAllDayEndAt(trip.EndDate.AddDate(0, 0, 1))
	if snap.Content != "" {
		tripEvent.SetDescription(snap.Content)
	}

	for _, day := range SplitDays(snap.Content) {
		date := trip.StartDate.AddDate(0, 0, day.Number-1)
		if day.Number < 1 || date.After(trip.EndDate) {
			continue
		}

		summary := fmt.Sprintf("%s: Day %d", trip.Location, day.Number)
		if day.Title != "" {
			summary += " - " + day.Title
		}

		ev := cal.AddEvent(fmt.Sprintf("%s-day-%d@planner", trip.ID, day.Number))
		ev.SetSummary(summary)
		ev.SetLocation(trip.Location)
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(date)
		ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		if day.Body != "" {
			ev.SetDescription(day.Body)
		}
	}

	return cal, nil
}

// WriteFile writes the iCalendar document for trip to path.
func WriteFile(path string, trip protocol.Trip, snap protocol.Snapshot) error {
	cal, err := Calendar(trip, snap, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0644); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}
