package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/repo"
	"github.com/snagao/tripcraft/backend/internal/routing"
)

// TravelTimeRecalculator makes each stop's derived travel time consistent
// with the current order of its day after a structural change.
//
// Travel time on a stop is the driving duration to the next stop of the same
// day. The last stop of a day carries none. A leg whose endpoints are not
// both geocoded, or whose lookup fails, carries none either — a degraded leg
// never aborts recalculation of the rest of the day.
type TravelTimeRecalculator struct {
	routes routing.Client
	log    *slog.Logger
}

// NewTravelTimeRecalculator constructs a recalculator over the given routing
// client. Pass nil for log to use the default logger.
func NewTravelTimeRecalculator(routes routing.Client, log *slog.Logger) *TravelTimeRecalculator {
	if log == nil {
		log = slog.Default()
	}
	return &TravelTimeRecalculator{routes: routes, log: log}
}

// RecalculateDay recomputes every leg of one (trip, day) partition, writing
// each result as soon as it is known. Lookups run serially, one per
// consecutive pair, so a day with n stops issues at most n-1 provider calls
// and the write order stays deterministic.
//
// stops must be bound to the caller's transaction: only persistence errors
// are returned, and they roll the whole structural operation back.
func (r *TravelTimeRecalculator) RecalculateDay(ctx context.Context, stops repo.StopRepo, tripID uuid.UUID, dayNumber int) error {
	list, err := stops.ListDay(ctx, tripID, dayNumber)
	if err != nil {
		return fmt.Errorf("service.TravelTimeRecalculator.RecalculateDay: %w", err)
	}
	if len(list) == 0 {
		return nil
	}

	// The last stop never has a next leg.
	if err := stops.SetTravelTime(ctx, list[len(list)-1].ID, nil); err != nil {
		return fmt.Errorf("service.TravelTimeRecalculator.RecalculateDay: %w", err)
	}

	for i := 0; i < len(list)-1; i++ {
		current, next := list[i], list[i+1]

		origin, originOK := current.Coords()
		dest, destOK := next.Coords()
		if !originOK || !destOK {
			if err := stops.SetTravelTime(ctx, current.ID, nil); err != nil {
				return fmt.Errorf("service.TravelTimeRecalculator.RecalculateDay: %w", err)
			}
			continue
		}

		minutes, ok := r.routes.Duration(ctx, origin, dest)
		if !ok {
			r.log.ErrorContext(ctx, "travel time lookup failed, leg left blank",
				"trip_id", tripID,
				"day_number", dayNumber,
				"from_position", current.Position,
				"to_position", next.Position,
			)
			if err := stops.SetTravelTime(ctx, current.ID, nil); err != nil {
				return fmt.Errorf("service.TravelTimeRecalculator.RecalculateDay: %w", err)
			}
			continue
		}

		if err := stops.SetTravelTime(ctx, current.ID, &minutes); err != nil {
			return fmt.Errorf("service.TravelTimeRecalculator.RecalculateDay: %w", err)
		}
	}

	return nil
}
