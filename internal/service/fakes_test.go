package service_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/repo"
)

// ---- in-memory stop store --------------------------------------------------

// fakeStopStore implements repo.StopRepo in memory so the ordering and
// recalculation logic can be exercised without a database. failOn names a
// method that should return an injected error, for rollback tests.
type fakeStopStore struct {
	stops  map[uuid.UUID]*domain.Stop
	failOn string
}

func newFakeStopStore() *fakeStopStore {
	return &fakeStopStore{stops: make(map[uuid.UUID]*domain.Stop)}
}

// seed inserts a stop directly, bypassing the ordering engine.
func (f *fakeStopStore) seed(s domain.Stop) domain.Stop {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	copied := s
	f.stops[s.ID] = &copied
	return s
}

// snapshot deep-copies the store state so a fake transaction can roll back.
func (f *fakeStopStore) snapshot() map[uuid.UUID]*domain.Stop {
	out := make(map[uuid.UUID]*domain.Stop, len(f.stops))
	for id, s := range f.stops {
		copied := *s
		out[id] = &copied
	}
	return out
}

func (f *fakeStopStore) fail(method string) error {
	if f.failOn == method {
		return fmt.Errorf("injected %s failure", method)
	}
	return nil
}

func (f *fakeStopStore) Create(_ context.Context, stop domain.Stop) (domain.Stop, error) {
	if err := f.fail("Create"); err != nil {
		return domain.Stop{}, err
	}
	stop.ID = uuid.New()
	copied := stop
	f.stops[stop.ID] = &copied
	return stop, nil
}

func (f *fakeStopStore) GetByID(_ context.Context, tripID, stopID uuid.UUID) (domain.Stop, error) {
	s, ok := f.stops[stopID]
	if !ok || s.TripID != tripID {
		return domain.Stop{}, domain.ErrNotFound
	}
	return *s, nil
}

func (f *fakeStopStore) ListByTripID(_ context.Context, tripID uuid.UUID) ([]domain.Stop, error) {
	var out []domain.Stop
	for _, s := range f.stops {
		if s.TripID == tripID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (f *fakeStopStore) ListDay(_ context.Context, tripID uuid.UUID, dayNumber int) ([]domain.Stop, error) {
	var out []domain.Stop
	for _, s := range f.stops {
		if s.TripID == tripID && s.DayNumber == dayNumber {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeStopStore) CountDay(_ context.Context, tripID uuid.UUID, dayNumber int) (int, error) {
	n := 0
	for _, s := range f.stops {
		if s.TripID == tripID && s.DayNumber == dayNumber {
			n++
		}
	}
	return n, nil
}

func (f *fakeStopStore) Update(_ context.Context, stop domain.Stop) (domain.Stop, error) {
	s, ok := f.stops[stop.ID]
	if !ok || s.TripID != stop.TripID {
		return domain.Stop{}, domain.ErrNotFound
	}
	s.Name = stop.Name
	s.Category = stop.Category
	s.Latitude = stop.Latitude
	s.Longitude = stop.Longitude
	s.EstimatedCost = stop.EstimatedCost
	s.DurationMinutes = stop.DurationMinutes
	s.Notes = stop.Notes
	return *s, nil
}

func (f *fakeStopStore) SetPlacement(_ context.Context, tripID, stopID uuid.UUID, dayNumber, position int) error {
	if err := f.fail("SetPlacement"); err != nil {
		return err
	}
	s, ok := f.stops[stopID]
	if !ok || s.TripID != tripID {
		return domain.ErrNotFound
	}
	s.DayNumber = dayNumber
	s.Position = position
	return nil
}

func (f *fakeStopStore) ShiftUpFrom(_ context.Context, tripID uuid.UUID, dayNumber, fromPosition int) error {
	if err := f.fail("ShiftUpFrom"); err != nil {
		return err
	}
	for _, s := range f.stops {
		if s.TripID == tripID && s.DayNumber == dayNumber && s.Position >= fromPosition {
			s.Position++
		}
	}
	return nil
}

func (f *fakeStopStore) CloseGapAbove(_ context.Context, tripID uuid.UUID, dayNumber, abovePosition int) error {
	if err := f.fail("CloseGapAbove"); err != nil {
		return err
	}
	for _, s := range f.stops {
		if s.TripID == tripID && s.DayNumber == dayNumber && s.Position > abovePosition {
			s.Position--
		}
	}
	return nil
}

func (f *fakeStopStore) SetTravelTime(_ context.Context, stopID uuid.UUID, minutes *int) error {
	if err := f.fail("SetTravelTime"); err != nil {
		return err
	}
	s, ok := f.stops[stopID]
	if !ok {
		return domain.ErrNotFound
	}
	if minutes == nil {
		s.TravelTimeMinutes = nil
	} else {
		m := *minutes
		s.TravelTimeMinutes = &m
	}
	return nil
}

func (f *fakeStopStore) Delete(_ context.Context, tripID, stopID uuid.UUID) error {
	if err := f.fail("Delete"); err != nil {
		return err
	}
	s, ok := f.stops[stopID]
	if !ok || s.TripID != tripID {
		return domain.ErrNotFound
	}
	delete(f.stops, stopID)
	return nil
}

// compile-time check: fakeStopStore must satisfy repo.StopRepo.
var _ repo.StopRepo = (*fakeStopStore)(nil)

// ---- fake transaction runner -----------------------------------------------

// fakeTxRunner hands fn stores backed by the fake stop store and emulates
// rollback by restoring a snapshot when fn fails.
type fakeTxRunner struct {
	stops *fakeStopStore
}

func (r *fakeTxRunner) InTx(_ context.Context, fn func(s repo.Stores) error) error {
	before := r.stops.snapshot()
	if err := fn(repo.Stores{Stops: r.stops}); err != nil {
		r.stops.stops = before
		return err
	}
	return nil
}

var _ repo.TxRunner = (*fakeTxRunner)(nil)

// ---- mock trip repo ---------------------------------------------------------

// mockTripRepo is a hand-written test double for repo.TripRepo.
type mockTripRepo struct {
	create     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByUser func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByUser(ctx, userID, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

// tripRepoReturning is shorthand for a repo whose GetByID always finds trip.
func tripRepoReturning(trip domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			if id != trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			return trip, nil
		},
	}
}

// ---- mock member repo -------------------------------------------------------

// mockMemberRepo is a hand-written test double for repo.TripMemberRepo.
type mockMemberRepo struct {
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.TripMember, error)
	getLevel   func(ctx context.Context, tripID, userID uuid.UUID) (domain.PermissionLevel, error)
	add        func(ctx context.Context, m domain.TripMember) (domain.TripMember, error)
	remove     func(ctx context.Context, tripID, userID uuid.UUID) error
}

func (m *mockMemberRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripMember, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockMemberRepo) GetLevel(ctx context.Context, tripID, userID uuid.UUID) (domain.PermissionLevel, error) {
	return m.getLevel(ctx, tripID, userID)
}
func (m *mockMemberRepo) Add(ctx context.Context, member domain.TripMember) (domain.TripMember, error) {
	return m.add(ctx, member)
}
func (m *mockMemberRepo) Remove(ctx context.Context, tripID, userID uuid.UUID) error {
	return m.remove(ctx, tripID, userID)
}

var _ repo.TripMemberRepo = (*mockMemberRepo)(nil)

// ---- fake authorizer and routing client -------------------------------------

// allowAll / denyAll are stub Authorizers.
type stubAuthorizer struct {
	allow bool
	err   error
}

func (a stubAuthorizer) CanEdit(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return a.allow, a.err
}

func (a stubAuthorizer) CanView(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return a.allow, a.err
}

// fakeRoutes scripts routing lookups. fn receives the origin/destination
// pair; calls counts every lookup issued.
type fakeRoutes struct {
	calls int
	fn    func(origin, dest domain.Coordinates) (int, bool)
}

func (f *fakeRoutes) Duration(_ context.Context, origin, dest domain.Coordinates) (int, bool) {
	f.calls++
	if f.fn == nil {
		return 10, true
	}
	return f.fn(origin, dest)
}

// ---- shared fixtures --------------------------------------------------------

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

// geoStop builds a geocoded stop at the given day/position.
func geoStop(tripID uuid.UUID, day, pos int, name string, lat, lng float64) domain.Stop {
	return domain.Stop{
		TripID:    tripID,
		DayNumber: day,
		Position:  pos,
		Name:      name,
		Category:  domain.CategorySightseeing,
		Latitude:  ptrFloat(lat),
		Longitude: ptrFloat(lng),
	}
}

// dayNames returns the stop names of one (trip, day) partition in position
// order, for compact order assertions.
func dayNames(f *fakeStopStore, tripID uuid.UUID, day int) []string {
	stops, _ := f.ListDay(context.Background(), tripID, day)
	names := make([]string, len(stops))
	for i, s := range stops {
		names[i] = s.Name
	}
	return names
}

// dayPositions returns the position values of one partition in order.
func dayPositions(f *fakeStopStore, tripID uuid.UUID, day int) []int {
	stops, _ := f.ListDay(context.Background(), tripID, day)
	positions := make([]int, len(stops))
	for i, s := range stops {
		positions[i] = s.Position
	}
	return positions
}

// contiguous reports whether positions are exactly 1..n.
func contiguous(positions []int) bool {
	for i, p := range positions {
		if p != i+1 {
			return false
		}
	}
	return true
}
