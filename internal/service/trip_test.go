package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/service"
)

func TestTripService_Create(t *testing.T) {
	userID := uuid.New()
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	repo := &mockTripRepo{
		create: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			trip.ID = uuid.New()
			return trip, nil
		},
	}
	svc := service.NewTripService(repo, stubAuthorizer{allow: true})

	created, err := svc.Create(context.Background(), userID, domain.Trip{
		Title:     "Hokkaido",
		StartDate: start,
	})

	require.NoError(t, err)
	assert.Equal(t, userID, created.OwnerID, "caller becomes the owner")
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestTripService_Create_Validation(t *testing.T) {
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)

	tests := []struct {
		name string
		trip domain.Trip
	}{
		{"blank title", domain.Trip{Title: "   ", StartDate: start}},
		{"end before start", domain.Trip{Title: "X", StartDate: start, EndDate: &before}},
		{"negative budget", domain.Trip{Title: "X", StartDate: start, TotalBudget: ptrInt(-1)}},
	}
	svc := service.NewTripService(&mockTripRepo{}, stubAuthorizer{allow: true})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tt.trip)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTripService_GetByID(t *testing.T) {
	trip := fiveDayTrip()

	t.Run("viewer sees the trip", func(t *testing.T) {
		svc := service.NewTripService(tripRepoReturning(trip), stubAuthorizer{allow: true})
		got, err := svc.GetByID(context.Background(), uuid.New(), trip.ID)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, got.ID)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		svc := service.NewTripService(tripRepoReturning(trip), stubAuthorizer{allow: false})
		_, err := svc.GetByID(context.Background(), uuid.New(), trip.ID)
		assert.ErrorIs(t, err, domain.ErrPermission)
	})

	t.Run("unknown trip", func(t *testing.T) {
		svc := service.NewTripService(tripRepoReturning(trip), stubAuthorizer{allow: true})
		_, err := svc.GetByID(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTripService_ListByUser_NeverReturnsNil(t *testing.T) {
	repo := &mockTripRepo{
		listByUser: func(_ context.Context, _ uuid.UUID, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
			return nil, 0, nil
		},
	}
	svc := service.NewTripService(repo, stubAuthorizer{allow: true})

	trips, total, err := svc.ListByUser(context.Background(), uuid.New(), domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
	assert.Zero(t, total)
}

func TestTripService_Update_OwnerOnly(t *testing.T) {
	trip := fiveDayTrip()
	repo := tripRepoReturning(trip)
	repo.update = func(_ context.Context, in domain.Trip) (domain.Trip, error) { return in, nil }
	svc := service.NewTripService(repo, stubAuthorizer{allow: true})

	edited := trip
	edited.Title = "Kyoto Autumn"

	t.Run("owner may update", func(t *testing.T) {
		got, err := svc.Update(context.Background(), trip.OwnerID, edited)
		require.NoError(t, err)
		assert.Equal(t, "Kyoto Autumn", got.Title)
	})

	t.Run("editor may not update the trip itself", func(t *testing.T) {
		_, err := svc.Update(context.Background(), uuid.New(), edited)
		assert.ErrorIs(t, err, domain.ErrPermission)
	})

	t.Run("owner_id cannot be reassigned", func(t *testing.T) {
		hijacked := edited
		hijacked.OwnerID = uuid.New()
		got, err := svc.Update(context.Background(), trip.OwnerID, hijacked)
		require.NoError(t, err)
		assert.Equal(t, trip.OwnerID, got.OwnerID)
	})
}

func TestTripService_Delete_OwnerOnly(t *testing.T) {
	trip := fiveDayTrip()
	deleted := false
	repo := tripRepoReturning(trip)
	repo.delete = func(_ context.Context, _ uuid.UUID) error {
		deleted = true
		return nil
	}
	svc := service.NewTripService(repo, stubAuthorizer{allow: true})

	err := svc.Delete(context.Background(), uuid.New(), trip.ID)
	assert.ErrorIs(t, err, domain.ErrPermission)
	assert.False(t, deleted)

	require.NoError(t, svc.Delete(context.Background(), trip.OwnerID, trip.ID))
	assert.True(t, deleted)
}

func TestTrip_DurationDays(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	sameDay := start
	threeLater := start.AddDate(0, 0, 3)

	assert.Equal(t, 0, domain.Trip{StartDate: start}.DurationDays(), "open-ended trip has no fixed span")
	assert.Equal(t, 1, domain.Trip{StartDate: start, EndDate: &sameDay}.DurationDays())
	assert.Equal(t, 4, domain.Trip{StartDate: start, EndDate: &threeLater}.DurationDays())
}

func TestTrip_ContainsDay(t *testing.T) {
	trip := fiveDayTrip()

	assert.False(t, trip.ContainsDay(0))
	assert.True(t, trip.ContainsDay(1))
	assert.True(t, trip.ContainsDay(5))
	assert.False(t, trip.ContainsDay(6))

	openEnded := domain.Trip{StartDate: trip.StartDate}
	assert.True(t, openEnded.ContainsDay(30), "open-ended trips accept any positive day")
	assert.False(t, openEnded.ContainsDay(0))
}
