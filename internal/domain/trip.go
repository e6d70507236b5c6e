// Package domain contains the core data types for the itinerary backend.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a single travel plan shared between its owner and members.
// A trip is the top-level aggregate; stops and memberships belong to a trip.
type Trip struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	StartDate   time.Time
	EndDate     *time.Time // nil when the trip has no fixed end yet
	TotalBudget *int
	TravelTheme string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DurationDays returns the number of itinerary days the trip spans,
// inclusive of both the start and end date. Returns 0 when the trip has no
// end date, meaning the day range is unbounded.
func (t Trip) DurationDays() int {
	if t.EndDate == nil {
		return 0
	}
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// ContainsDay reports whether dayNumber falls inside the trip's day range.
// Day numbers start at 1. Trips without an end date accept any positive day.
func (t Trip) ContainsDay(dayNumber int) bool {
	if dayNumber < 1 {
		return false
	}
	if span := t.DurationDays(); span > 0 && dayNumber > span {
		return false
	}
	return true
}
