package protocol

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for trip dates and trip ids.
const DateLayout = "2006-01-02"

// Trip is a user-defined travel plan. Trips are created by trip management;
// the planner core only reads them.
type Trip struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// NewTrip builds a Trip whose ID is derived from its location and dates.
func NewTrip(location string, start, end time.Time) Trip {
	location = strings.TrimSpace(location)
	return Trip{
		ID:        TripID(location, start, end),
		Location:  location,
		StartDate: start,
		EndDate:   end,
	}
}

// ParseTrip parses YYYY-MM-DD dates and returns a validated Trip.
func ParseTrip(location, start, end string) (Trip, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Trip{}, fmt.Errorf("%w: start date: %v", ErrInvalidTrip, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Trip{}, fmt.Errorf("%w: end date: %v", ErrInvalidTrip, err)
	}

	trip := NewTrip(location, s, e)
	if err := trip.Validate(); err != nil {
		return Trip{}, err
	}
	return trip, nil
}

// TripID derives the stable trip identifier "<location>-<start>-<end>".
func TripID(location string, start, end time.Time) string {
	return fmt.Sprintf("%s-%s-%s", location, start.Format(DateLayout), end.Format(DateLayout))
}

// Validate requires a location and an end date strictly after the start date.
func (t Trip) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTrip)
	}
	if strings.TrimSpace(t.Location) == "" {
		return fmt.Errorf("%w: missing location", ErrInvalidTrip)
	}
	if !t.EndDate.After(t.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidTrip)
	}
	return nil
}
