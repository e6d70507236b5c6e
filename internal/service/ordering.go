package service

import (
	"context"
	"fmt"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/repo"
)

// orderedList maintains the contiguous 1-based position invariant within each
// (trip, day) partition: positions are always exactly {1..n} with no gaps or
// duplicates. It composes StopRepo position primitives and must run inside
// the caller's transaction — a failure mid-sequence would otherwise leave a
// partition half-shifted.
//
// Out-of-range positions are clamped, never rejected. The item being placed
// always wins the requested slot; displaced items move later, never earlier.
type orderedList struct {
	stops repo.StopRepo
}

// insertAt creates stop at the requested position in its (trip, day)
// partition, clamped to [1, n+1], shifting existing stops at or above the
// slot up by one.
func (l orderedList) insertAt(ctx context.Context, stop domain.Stop, requestedPosition int) (domain.Stop, error) {
	n, err := l.stops.CountDay(ctx, stop.TripID, stop.DayNumber)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.orderedList.insertAt: %w", err)
	}

	pos := clampPosition(requestedPosition, n+1)
	if err := l.stops.ShiftUpFrom(ctx, stop.TripID, stop.DayNumber, pos); err != nil {
		return domain.Stop{}, fmt.Errorf("service.orderedList.insertAt: %w", err)
	}

	stop.Position = pos
	created, err := l.stops.Create(ctx, stop)
	if err != nil {
		return domain.Stop{}, fmt.Errorf("service.orderedList.insertAt: %w", err)
	}
	return created, nil
}

// move relocates stop to (newDay, newPosition), closing the gap it leaves in
// its old partition and opening a slot in the new one. newDay may equal the
// stop's current day, in which case this is a plain reorder.
//
// The stop is first parked at position 0 — outside the 1-based range every
// shift statement touches — so the gap-close and shift-up updates can never
// catch the row being moved.
func (l orderedList) move(ctx context.Context, stop domain.Stop, newDay, newPosition int) (int, error) {
	if err := l.stops.SetPlacement(ctx, stop.TripID, stop.ID, newDay, 0); err != nil {
		return 0, fmt.Errorf("service.orderedList.move: %w", err)
	}
	if err := l.stops.CloseGapAbove(ctx, stop.TripID, stop.DayNumber, stop.Position); err != nil {
		return 0, fmt.Errorf("service.orderedList.move: %w", err)
	}

	// The destination count includes the parked row, so the clamp ceiling is
	// (others + 1) = n.
	n, err := l.stops.CountDay(ctx, stop.TripID, newDay)
	if err != nil {
		return 0, fmt.Errorf("service.orderedList.move: %w", err)
	}

	pos := clampPosition(newPosition, n)
	if err := l.stops.ShiftUpFrom(ctx, stop.TripID, newDay, pos); err != nil {
		return 0, fmt.Errorf("service.orderedList.move: %w", err)
	}
	if err := l.stops.SetPlacement(ctx, stop.TripID, stop.ID, newDay, pos); err != nil {
		return 0, fmt.Errorf("service.orderedList.move: %w", err)
	}
	return pos, nil
}

// remove deletes stop and decrements the positions above it, restoring
// contiguity in its partition.
func (l orderedList) remove(ctx context.Context, stop domain.Stop) error {
	if err := l.stops.Delete(ctx, stop.TripID, stop.ID); err != nil {
		return fmt.Errorf("service.orderedList.remove: %w", err)
	}
	if err := l.stops.CloseGapAbove(ctx, stop.TripID, stop.DayNumber, stop.Position); err != nil {
		return fmt.Errorf("service.orderedList.remove: %w", err)
	}
	return nil
}

// clampPosition constrains a requested position to [1, max].
// max is never below 1: an empty partition still accepts position 1.
func clampPosition(p, max int) int {
	if max < 1 {
		max = 1
	}
	if p < 1 {
		return 1
	}
	if p > max {
		return max
	}
	return p
}
