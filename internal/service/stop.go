package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/repo"
)

// StopService implements the non-structural Stop operations: reads and field
// edits. Anything that changes a stop's day or position goes through
// ScheduleService instead, because those changes cascade into travel-time
// recalculation.
type StopService struct {
	trips  repo.TripRepo
	stops  repo.StopRepo
	viewer Viewer
	auth   Authorizer
}

// NewStopService constructs a StopService backed by the provided repos.
func NewStopService(trips repo.TripRepo, stops repo.StopRepo, viewer Viewer, auth Authorizer) *StopService {
	return &StopService{trips: trips, stops: stops, viewer: viewer, auth: auth}
}

// GetByID returns a single stop, provided the user may view the trip.
func (s *StopService) GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.Stop, error) {
	if err := s.requireView(ctx, userID, tripID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.GetByID: %w", err)
	}

	stop, err := s.stops.GetByID(ctx, tripID, stopID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.GetByID: %w", err)
	}
	return stop, nil
}

// ListByTripID returns all stops of a trip ordered by day then position.
// Always returns a non-nil slice so callers can safely range over it.
func (s *StopService) ListByTripID(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Stop, error) {
	if err := s.requireView(ctx, userID, tripID); err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTripID: %w", err)
	}

	stops, err := s.stops.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.ListByTripID: %w", err)
	}
	if stops == nil {
		stops = []domain.Stop{}
	}
	return stops, nil
}

// Schedule returns the trip's stops grouped by day in position order — the
// view the itinerary screen renders. Days with no stops are omitted.
func (s *StopService) Schedule(ctx context.Context, userID, tripID uuid.UUID) ([]domain.DaySchedule, error) {
	stops, err := s.ListByTripID(ctx, userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.Schedule: %w", err)
	}

	schedule := []domain.DaySchedule{}
	for _, stop := range stops {
		if n := len(schedule); n == 0 || schedule[n-1].DayNumber != stop.DayNumber {
			schedule = append(schedule, domain.DaySchedule{DayNumber: stop.DayNumber})
		}
		last := &schedule[len(schedule)-1]
		last.Stops = append(last.Stops, stop)
	}
	return schedule, nil
}

// Update validates and persists field edits to a stop: name, category,
// coordinates, cost, duration, notes. Day, position, and travel time are
// untouched — the repo update does not write them.
func (s *StopService) Update(ctx context.Context, userID uuid.UUID, stop domain.Stop) (domain.Stop, error) {
	trip, err := s.trips.GetByID(ctx, stop.TripID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}
	if err := s.requireEdit(ctx, userID, stop.TripID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}

	existing, err := s.stops.GetByID(ctx, stop.TripID, stop.ID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}

	// Validation reuses the insert rules against the stop's current day.
	stop.DayNumber = existing.DayNumber
	if stop.Category == "" {
		stop.Category = existing.Category
	}
	if err := validateStop(trip, stop); err != nil {
		return domain.Stop{}, err
	}

	updated, err := s.stops.Update(ctx, stop)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.StopService.Update: %w", err)
	}
	return updated, nil
}

func (s *StopService) requireView(ctx context.Context, userID, tripID uuid.UUID) error {
	ok, err := s.viewer.CanView(ctx, userID, tripID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user may not view this trip", domain.ErrPermission)
	}
	return nil
}

func (s *StopService) requireEdit(ctx context.Context, userID, tripID uuid.UUID) error {
	ok, err := s.auth.CanEdit(ctx, userID, tripID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user may not edit this trip", domain.ErrPermission)
	}
	return nil
}

// ParseCost turns free-text cost input ("¥1,200", "1200円", "1200") into a
// non-negative integer amount, dropping currency symbols and separators.
// Returns nil for blank input and ErrValidation when no digits remain.
func ParseCost(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil, fmt.Errorf("%w: estimated_cost must contain a number", domain.ErrValidation)
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil, fmt.Errorf("%w: estimated_cost is out of range", domain.ErrValidation)
	}
	return &n, nil
}
