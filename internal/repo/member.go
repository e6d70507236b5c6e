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

// TripMemberRepo defines the persistence operations for trip memberships.
type TripMemberRepo interface {
	// ListByTrip returns all memberships of a trip, oldest first.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripMember, error)

	// GetLevel returns the membership level of a user on a trip.
	// Returns domain.ErrNotFound when the user has no membership row.
	GetLevel(ctx context.Context, tripID, userID uuid.UUID) (domain.PermissionLevel, error)

	// Add inserts a membership row, or updates the level if the user is
	// already a member, and returns the persisted record.
	Add(ctx context.Context, m domain.TripMember) (domain.TripMember, error)

	// Remove deletes a user's membership on a trip.
	// Returns domain.ErrNotFound when no membership row exists.
	Remove(ctx context.Context, tripID, userID uuid.UUID) error
}

// pgTripMemberRepo is the Postgres implementation of TripMemberRepo.
type pgTripMemberRepo struct {
	db db
}

// NewTripMemberRepo constructs a TripMemberRepo backed by the provided db connection.
func NewTripMemberRepo(db db) TripMemberRepo {
	return &pgTripMemberRepo{db: db}
}

const memberColumns = `id, trip_id, user_id, permission_level, created_at`

func (r *pgTripMemberRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripMember, error) {
	const q = `
		SELECT ` + memberColumns + `
		FROM trip_users
		WHERE trip_id = @trip_id
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripMemberRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var members []domain.TripMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripMemberRepo.ListByTrip: scan: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripMemberRepo.ListByTrip: rows: %w", err)
	}

	return members, nil
}

func (r *pgTripMemberRepo) GetLevel(ctx context.Context, tripID, userID uuid.UUID) (domain.PermissionLevel, error) {
	const q = `
		SELECT permission_level
		FROM trip_users
		WHERE trip_id = @trip_id AND user_id = @user_id`

	var level int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("repo.TripMemberRepo.GetLevel: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("repo.TripMemberRepo.GetLevel: %w", err)
	}
	return domain.PermissionLevel(level), nil
}

func (r *pgTripMemberRepo) Add(ctx context.Context, m domain.TripMember) (domain.TripMember, error) {
	const q = `
		INSERT INTO trip_users (trip_id, user_id, permission_level)
		VALUES (@trip_id, @user_id, @permission_level)
		ON CONFLICT (trip_id, user_id)
		DO UPDATE SET permission_level = EXCLUDED.permission_level
		RETURNING ` + memberColumns

	args := pgx.NamedArgs{
		"trip_id":          m.TripID,
		"user_id":          m.UserID,
		"permission_level": int(m.Level),
	}

	result, err := scanMember(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripMember{}, fmt.Errorf("repo.TripMemberRepo.Add: %w", err)
	}
	return result, nil
}

func (r *pgTripMemberRepo) Remove(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `DELETE FROM trip_users WHERE trip_id = @trip_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TripMemberRepo.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripMemberRepo.Remove: %w", domain.ErrNotFound)
	}
	return nil
}

// scanMember maps a single database row into a domain.TripMember.
func scanMember(s scanner) (domain.TripMember, error) {
	var (
		m      domain.TripMember
		id     pgtype.UUID
		tripID pgtype.UUID
		userID pgtype.UUID
		level  int
	)

	err := s.Scan(&id, &tripID, &userID, &level, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripMember{}, domain.ErrNotFound
		}
		return domain.TripMember{}, err
	}

	m.ID = uuid.UUID(id.Bytes)
	m.TripID = uuid.UUID(tripID.Bytes)
	m.UserID = uuid.UUID(userID.Bytes)
	m.Level = domain.PermissionLevel(level)

	return m, nil
}
