package export_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/core/protocol"
	"github.com/tailored-agentic-units/planner/export"
)

func kyotoTrip(t *testing.T) protocol.Trip {
	t.Helper()
	trip, err := protocol.ParseTrip("Kyoto", "2026-03-01", "2026-03-03")
	if err != nil {
		t.Fatalf("ParseTrip: %v", err)
	}
	return trip
}

func summaries(cal *ics.Calendar) []string {
	var out []string
	for _, ev := range cal.Events() {
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			out = append(out, p.Value)
		}
	}
	return out
}

func TestSplitDays(t *testing.T) {
	text := "✈️ Trip to Kyoto\n\nDay 1: Temples\n- Kiyomizu-dera\n- Gion\n\nday 2 - Markets\n- Nishiki\nDay 3\n"
	days := export.SplitDays(text)

	if len(days) != 3 {
		t.Fatalf("got %d days, want 3: %+v", len(days), days)
	}

	tests := []struct {
		number int
		title  string
		body   string
	}{
		{1, "Temples", "- Kiyomizu-dera\n- Gion"},
		{2, "Markets", "- Nishiki"},
		{3, "", ""},
	}
	for i, tt := range tests {
		if days[i].Number != tt.number || days[i].Title != tt.title || days[i].Body != tt.body {
			t.Errorf("day %d = %+v, want %+v", i, days[i], tt)
		}
	}
}

func TestSplitDays_NoHeaders(t *testing.T) {
	if days := export.SplitDays("Just relax by the river."); len(days) != 0 {
		t.Errorf("got %d days, want 0", len(days))
	}
}

func TestCalendar(t *testing.T) {
	trip := kyotoTrip(t)
	snap := protocol.Snapshot{TripID: trip.ID, Content: completion.SampleItinerary("Kyoto", "2026-03-01", "2026-03-03")}

	cal, err := export.Calendar(trip, snap, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}

	got := summaries(cal)
	want := []string{"Trip to Kyoto", "Kyoto: Day 1", "Kyoto: Day 2", "Kyoto: Day 3"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("summaries = %v, want %v", got, want)
	}

	parsed, err := ics.ParseCalendar(strings.NewReader(cal.Serialize()))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if len(parsed.Events()) != 4 {
		t.Errorf("parsed %d events, want 4", len(parsed.Events()))
	}

	start := parsed.Events()[1].GetProperty(ics.ComponentPropertyDtStart)
	if start == nil || start.Value != "20260301" {
		t.Errorf("day 1 DTSTART = %+v", start)
	}
	end := parsed.Events()[0].GetProperty(ics.ComponentPropertyDtEnd)
	if end == nil || end.Value != "20260304" {
		t.Errorf("trip DTEND = %+v, want exclusive 20260304", end)
	}
}

func TestCalendar_DaysBeyondTripSkipped(t *testing.T) {
	trip := kyotoTrip(t)
	snap := protocol.Snapshot{TripID: trip.ID, Content: "Day 1: a\nDay 2: b\nDay 3: c\nDay 4: d\nDay 0: e"}

	cal, err := export.Calendar(trip, snap, time.Now())
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if n := len(cal.Events()); n != 4 {
		t.Errorf("got %d events, want trip + 3 days", n)
	}
}

func TestCalendar_InvalidTrip(t *testing.T) {
	if _, err := export.Calendar(protocol.Trip{}, protocol.Snapshot{}, time.Now()); err == nil {
		t.Error("expected error for invalid trip")
	}
}

func TestWriteFile(t *testing.T) {
	trip := kyotoTrip(t)
	path := filepath.Join(t.TempDir(), "kyoto.ics")

	if err := export.WriteFile(path, trip, protocol.Snapshot{TripID: trip.ID, Content: "Day 1: Arrive"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	cal, err := ics.ParseCalendar(f)
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if got := summaries(cal); len(got) != 2 || got[1] != "Kyoto: Day 1 - Arrive" {
		t.Errorf("summaries = %v", got)
	}
}
