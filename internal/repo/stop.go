package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/snagao/tripcraft/backend/internal/domain"
)

// StopRepo defines the persistence operations for Stops.
// All reads and writes are scoped by tripID to enforce ownership.
//
// The position primitives (ShiftUpFrom, CloseGapAbove, SetPlacement) are
// deliberately dumb single-statement updates: the ordering engine in the
// service layer composes them inside one transaction and owns the contiguity
// invariant. Nothing here checks position validity.
type StopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	Create(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// GetByID retrieves a single stop by its UUID, scoped to the given tripID.
	// Returns domain.ErrNotFound if no stop with that ID exists under that trip.
	GetByID(ctx context.Context, tripID, stopID uuid.UUID) (domain.Stop, error)

	// ListByTripID returns all stops for a trip ordered by day then position.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error)

	// ListDay returns the stops of one (trip, day) partition ordered by
	// position ascending.
	ListDay(ctx context.Context, tripID uuid.UUID, dayNumber int) ([]domain.Stop, error)

	// CountDay returns the number of stops in one (trip, day) partition.
	CountDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error)

	// Update overwrites the editable fields of a stop (name, category,
	// coordinates, cost, duration, notes) without touching day, position, or
	// travel time. Returns domain.ErrNotFound if the stop does not exist
	// under the given trip.
	Update(ctx context.Context, stop domain.Stop) (domain.Stop, error)

	// SetPlacement moves a stop to the given day and position.
	SetPlacement(ctx context.Context, tripID, stopID uuid.UUID, dayNumber, position int) error

	// ShiftUpFrom increments position for every stop in the partition with
	// position >= fromPosition, opening a slot at fromPosition.
	ShiftUpFrom(ctx context.Context, tripID uuid.UUID, dayNumber, fromPosition int) error

	// CloseGapAbove decrements position for every stop in the partition with
	// position > abovePosition, closing the gap left at abovePosition.
	CloseGapAbove(ctx context.Context, tripID uuid.UUID, dayNumber, abovePosition int) error

	// SetTravelTime writes the derived travel time of a single stop.
	// nil clears it.
	SetTravelTime(ctx context.Context, stopID uuid.UUID, minutes *int) error

	// Delete removes a stop by ID, scoped to the given tripID.
	// Returns domain.ErrNotFound if no stop with that ID exists under that trip.
	Delete(ctx context.Context, tripID, stopID uuid.UUID) error
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

const stopColumns = `id, trip_id, day_number, position, name, category, latitude, longitude,
	travel_time_minutes, estimated_cost, duration_minutes, notes, created_at, updated_at`

func (r *pgStopRepo) Create(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		INSERT INTO stops (trip_id, day_number, position, name, category, latitude, longitude,
		                   estimated_cost, duration_minutes, notes)
		VALUES (@trip_id, @day_number, @position, @name, @category, @latitude, @longitude,
		        @estimated_cost, @duration_minutes, @notes)
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"trip_id":          stop.TripID,
		"day_number":       stop.DayNumber,
		"position":         stop.Position,
		"name":             stop.Name,
		"category":         string(stop.Category),
		"latitude":         stop.Latitude,
		"longitude":        stop.Longitude,
		"estimated_cost":   stop.EstimatedCost,
		"duration_minutes": stop.DurationMinutes,
		"notes":            stop.Notes,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgStopRepo) GetByID(ctx context.Context, tripID, stopID uuid.UUID) (domain.Stop, error) {
	const q = `SELECT ` + stopColumns + ` FROM stops WHERE id = @id AND trip_id = @trip_id`

	result, err := scanStop(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID}))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgStopRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE trip_id = @trip_id
		ORDER BY day_number, position`

	return r.queryStops(ctx, "ListByTripID", q, pgx.NamedArgs{"trip_id": tripID})
}

func (r *pgStopRepo) ListDay(ctx context.Context, tripID uuid.UUID, dayNumber int) ([]domain.Stop, error) {
	const q = `
		SELECT ` + stopColumns + `
		FROM stops
		WHERE trip_id = @trip_id AND day_number = @day_number
		ORDER BY position`

	return r.queryStops(ctx, "ListDay", q, pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber})
}

func (r *pgStopRepo) CountDay(ctx context.Context, tripID uuid.UUID, dayNumber int) (int, error) {
	const q = `SELECT count(*) FROM stops WHERE trip_id = @trip_id AND day_number = @day_number`

	var n int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber}).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repo.StopRepo.CountDay: %w", err)
	}
	return n, nil
}

func (r *pgStopRepo) Update(ctx context.Context, stop domain.Stop) (domain.Stop, error) {
	const q = `
		UPDATE stops
		SET name             = @name,
		    category         = @category,
		    latitude         = @latitude,
		    longitude        = @longitude,
		    estimated_cost   = @estimated_cost,
		    duration_minutes = @duration_minutes,
		    notes            = @notes,
		    updated_at       = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + stopColumns

	args := pgx.NamedArgs{
		"id":               stop.ID,
		"trip_id":          stop.TripID,
		"name":             stop.Name,
		"category":         string(stop.Category),
		"latitude":         stop.Latitude,
		"longitude":        stop.Longitude,
		"estimated_cost":   stop.EstimatedCost,
		"duration_minutes": stop.DurationMinutes,
		"notes":            stop.Notes,
	}

	result, err := scanStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Stop{}, fmt.Errorf("repo.StopRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgStopRepo) SetPlacement(ctx context.Context, tripID, stopID uuid.UUID, dayNumber, position int) error {
	const q = `
		UPDATE stops
		SET day_number = @day_number, position = @position, updated_at = now()
		WHERE id = @id AND trip_id = @trip_id`

	args := pgx.NamedArgs{"id": stopID, "trip_id": tripID, "day_number": dayNumber, "position": position}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.StopRepo.SetPlacement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StopRepo.SetPlacement: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgStopRepo) ShiftUpFrom(ctx context.Context, tripID uuid.UUID, dayNumber, fromPosition int) error {
	const q = `
		UPDATE stops
		SET position = position + 1, updated_at = now()
		WHERE trip_id = @trip_id AND day_number = @day_number AND position >= @from_position`

	args := pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber, "from_position": fromPosition}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.StopRepo.ShiftUpFrom: %w", err)
	}
	return nil
}

func (r *pgStopRepo) CloseGapAbove(ctx context.Context, tripID uuid.UUID, dayNumber, abovePosition int) error {
	const q = `
		UPDATE stops
		SET position = position - 1, updated_at = now()
		WHERE trip_id = @trip_id AND day_number = @day_number AND position > @above_position`

	args := pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber, "above_position": abovePosition}
	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.StopRepo.CloseGapAbove: %w", err)
	}
	return nil
}

func (r *pgStopRepo) SetTravelTime(ctx context.Context, stopID uuid.UUID, minutes *int) error {
	const q = `UPDATE stops SET travel_time_minutes = @minutes, updated_at = now() WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": stopID, "minutes": minutes})
	if err != nil {
		return fmt.Errorf("repo.StopRepo.SetTravelTime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StopRepo.SetTravelTime: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgStopRepo) Delete(ctx context.Context, tripID, stopID uuid.UUID) error {
	const q = `DELETE FROM stops WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.StopRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StopRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// queryStops runs a multi-row stop query and scans the results.
func (r *pgStopRepo) queryStops(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Stop, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var stops []domain.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.%s: scan: %w", op, err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.%s: rows: %w", op, err)
	}

	return stops, nil
}

// scanStop maps a single database row into a domain.Stop.
// It handles the UUID and nullable column conversions.
func scanStop(s scanner) (domain.Stop, error) {
	var (
		st       domain.Stop
		id       pgtype.UUID
		tripID   pgtype.UUID
		category string
		lat      pgtype.Float8
		lng      pgtype.Float8
		travel   pgtype.Int4
		cost     pgtype.Int4
		duration pgtype.Int4
	)

	err := s.Scan(&id, &tripID, &st.DayNumber, &st.Position, &st.Name, &category, &lat, &lng,
		&travel, &cost, &duration, &st.Notes, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stop{}, domain.ErrNotFound
		}
		return domain.Stop{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	st.TripID = uuid.UUID(tripID.Bytes)
	st.Category = domain.StopCategory(category)
	if lat.Valid {
		v := lat.Float64
		st.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		st.Longitude = &v
	}
	if travel.Valid {
		v := int(travel.Int32)
		st.TravelTimeMinutes = &v
	}
	if cost.Valid {
		v := int(cost.Int32)
		st.EstimatedCost = &v
	}
	if duration.Valid {
		v := int(duration.Int32)
		st.DurationMinutes = &v
	}

	return st, nil
}
