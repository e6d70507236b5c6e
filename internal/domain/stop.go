package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopCategory classifies what kind of visit a stop is.
type StopCategory string

const (
	CategorySightseeing   StopCategory = "sightseeing"
	CategoryRestaurant    StopCategory = "restaurant"
	CategoryAccommodation StopCategory = "accommodation"
	CategoryOther         StopCategory = "other"
)

// ValidCategory reports whether c is one of the known stop categories.
func ValidCategory(c StopCategory) bool {
	switch c {
	case CategorySightseeing, CategoryRestaurant, CategoryAccommodation, CategoryOther:
		return true
	}
	return false
}

// Coordinates is a geocoded latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Stop represents a single planned visit within a trip's itinerary.
//
// Position is 1-based and contiguous within the (TripID, DayNumber)
// partition: the stops of one day always occupy positions {1..n}. The
// ordering engine in the service layer owns that invariant; nothing else
// writes Position or DayNumber.
//
// TravelTimeMinutes is derived: it holds the driving time from this stop to
// the next stop of the same day, recomputed after every structural change.
// It is nil for the last stop of a day and for any leg whose endpoints are
// not both geocoded. Clients can never set it directly.
type Stop struct {
	ID                uuid.UUID
	TripID            uuid.UUID
	DayNumber         int
	Position          int
	Name              string
	Category          StopCategory
	Latitude          *float64 // nil when the stop has not been geocoded
	Longitude         *float64
	TravelTimeMinutes *int
	EstimatedCost     *int
	DurationMinutes   *int // time planned at the stop itself
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Geocoded reports whether the stop carries both coordinates.
func (s Stop) Geocoded() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Coords returns the stop's coordinates and whether they are set.
func (s Stop) Coords() (Coordinates, bool) {
	if !s.Geocoded() {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: *s.Latitude, Longitude: *s.Longitude}, true
}

// DaySchedule groups one day's stops in position order, ready for rendering.
type DaySchedule struct {
	DayNumber int
	Stops     []Stop
}
