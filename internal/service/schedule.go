package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/repo"
)

// Authorizer decides whether a user may modify a trip's itinerary.
// MemberService is the production implementation; handler and service tests
// substitute a stub.
type Authorizer interface {
	CanEdit(ctx context.Context, userID, tripID uuid.UUID) (bool, error)
}

// Recalculator recomputes the travel times of one day using repositories
// bound to the caller's transaction. Implemented by TravelTimeRecalculator.
type Recalculator interface {
	RecalculateDay(ctx context.Context, stops repo.StopRepo, tripID uuid.UUID, dayNumber int) error
}

// ScheduleService is the single mutation entry point for a trip's itinerary.
// Every structural change — inserting, moving, or deleting a stop — runs as
// authorize → validate → one transaction covering the position rewrite and
// the travel-time recalculation of the affected day(s).
//
// Concurrent edits of the same trip are not detected: the transaction that
// commits last wins.
type ScheduleService struct {
	trips  repo.TripRepo
	tx     repo.TxRunner
	auth   Authorizer
	recalc Recalculator
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(trips repo.TripRepo, tx repo.TxRunner, auth Authorizer, recalc Recalculator) *ScheduleService {
	return &ScheduleService{trips: trips, tx: tx, auth: auth, recalc: recalc}
}

// Insert adds a new stop to the given day at the requested position (clamped
// to the valid range) and recalculates that day's travel times. The returned
// stop reflects the post-recalculation state.
func (s *ScheduleService) Insert(ctx context.Context, userID, tripID uuid.UUID, dayNumber, position int, stop domain.Stop) (domain.Stop, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.ScheduleService.Insert: %w", err)
	}
	if err := s.authorize(ctx, userID, tripID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.ScheduleService.Insert: %w", err)
	}

	stop.TripID = tripID
	stop.DayNumber = dayNumber
	if stop.Category == "" {
		stop.Category = domain.CategoryOther
	}
	if err := validateStop(trip, stop); err != nil {
		return domain.Stop{}, err
	}

	var created domain.Stop
	err = s.tx.InTx(ctx, func(st repo.Stores) error {
		list := orderedList{stops: st.Stops}
		c, err := list.insertAt(ctx, stop, position)
		if err != nil {
			return err
		}
		if err := s.recalc.RecalculateDay(ctx, st.Stops, tripID, dayNumber); err != nil {
			return err
		}
		// Re-read: recalculation may have written this stop's travel time.
		created, err = st.Stops.GetByID(ctx, tripID, c.ID)
		return err
	})
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.ScheduleService.Insert: %w", err)
	}
	return created, nil
}

// Move relocates a stop to (newDay, newPosition), clamping the position, and
// recalculates both the source and destination day. Returns the stop as
// placed.
func (s *ScheduleService) Move(ctx context.Context, userID, tripID, stopID uuid.UUID, newDay, newPosition int) (domain.Stop, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.ScheduleService.Move: %w", err)
	}
	if err := s.authorize(ctx, userID, tripID); err != nil {
		return domain.Stop{}, fmt.Errorf("service.ScheduleService.Move: %w", err)
	}
	if !trip.ContainsDay(newDay) {
		return domain.Stop{}, fmt.Errorf("%w: day_number must be within the trip's %d-day span", domain.ErrValidation, trip.DurationDays())
	}

	var moved domain.Stop
	err = s.tx.InTx(ctx, func(st repo.Stores) error {
		stop, err := st.Stops.GetByID(ctx, tripID, stopID)
		if err != nil {
			return err
		}
		oldDay := stop.DayNumber

		list := orderedList{stops: st.Stops}
		if _, err := list.move(ctx, stop, newDay, newPosition); err != nil {
			return err
		}

		// Source and destination partitions are independent; both need fresh
		// travel times after a cross-day move.
		if err := s.recalc.RecalculateDay(ctx, st.Stops, tripID, oldDay); err != nil {
			return err
		}
		if newDay != oldDay {
			if err := s.recalc.RecalculateDay(ctx, st.Stops, tripID, newDay); err != nil {
				return err
			}
		}

		moved, err = st.Stops.GetByID(ctx, tripID, stopID)
		return err
	})
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.ScheduleService.Move: %w", err)
	}
	return moved, nil
}

// Delete removes a stop, closes the gap it leaves, and recalculates its day.
func (s *ScheduleService) Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return fmt.Errorf("service.ScheduleService.Delete: %w", err)
	}
	if err := s.authorize(ctx, userID, tripID); err != nil {
		return fmt.Errorf("service.ScheduleService.Delete: %w", err)
	}

	err := s.tx.InTx(ctx, func(st repo.Stores) error {
		stop, err := st.Stops.GetByID(ctx, tripID, stopID)
		if err != nil {
			return err
		}

		list := orderedList{stops: st.Stops}
		if err := list.remove(ctx, stop); err != nil {
			return err
		}
		return s.recalc.RecalculateDay(ctx, st.Stops, tripID, stop.DayNumber)
	})
	if err != nil {
		return fmt.Errorf("service.ScheduleService.Delete: %w", err)
	}
	return nil
}

// authorize maps a negative edit check to domain.ErrPermission.
func (s *ScheduleService) authorize(ctx context.Context, userID, tripID uuid.UUID) error {
	ok, err := s.auth.CanEdit(ctx, userID, tripID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user may not edit this trip", domain.ErrPermission)
	}
	return nil
}

// validateStop enforces the business rules for stop content.
//   - Name must be non-empty (whitespace-only is rejected) and at most 50 chars.
//   - Category must be one of the known values.
//   - DayNumber must lie within [1, trip span].
//   - Cost and duration must be non-negative when present.
func validateStop(trip domain.Trip, stop domain.Stop) error {
	if strings.TrimSpace(stop.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if len([]rune(stop.Name)) > 50 {
		return fmt.Errorf("%w: name must be at most 50 characters", domain.ErrValidation)
	}
	if !domain.ValidCategory(stop.Category) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, stop.Category)
	}
	if !trip.ContainsDay(stop.DayNumber) {
		return fmt.Errorf("%w: day_number must be within the trip's %d-day span", domain.ErrValidation, trip.DurationDays())
	}
	if stop.EstimatedCost != nil && *stop.EstimatedCost < 0 {
		return fmt.Errorf("%w: estimated_cost must not be negative", domain.ErrValidation)
	}
	if stop.DurationMinutes != nil && *stop.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration_minutes must not be negative", domain.ErrValidation)
	}
	return nil
}
