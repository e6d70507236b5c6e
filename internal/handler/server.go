// Package handler implements the HTTP handlers for the itinerary API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, stop.go, etc.) but all share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/middleware"
	"github.com/snagao/tripcraft/backend/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	ListByUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

// StopServicer defines the non-structural stop operations: reads and field edits.
type StopServicer interface {
	GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.Stop, error)
	ListByTripID(ctx context.Context, userID, tripID uuid.UUID) ([]domain.Stop, error)
	Schedule(ctx context.Context, userID, tripID uuid.UUID) ([]domain.DaySchedule, error)
	Update(ctx context.Context, userID uuid.UUID, stop domain.Stop) (domain.Stop, error)
}

// ScheduleServicer defines the structural operations: anything that changes
// which day a stop is on or where in the day it sits.
type ScheduleServicer interface {
	Insert(ctx context.Context, userID, tripID uuid.UUID, dayNumber, position int, stop domain.Stop) (domain.Stop, error)
	Move(ctx context.Context, userID, tripID, stopID uuid.UUID, newDay, newPosition int) (domain.Stop, error)
	Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error
}

// MemberServicer defines the trip-sharing operations.
type MemberServicer interface {
	List(ctx context.Context, userID, tripID uuid.UUID) ([]domain.TripMember, error)
	Add(ctx context.Context, userID, tripID, memberUserID uuid.UUID, level domain.PermissionLevel) (domain.TripMember, error)
	Remove(ctx context.Context, userID, tripID, memberUserID uuid.UUID) error
}

// Server holds the service dependencies for all API endpoints.
type Server struct {
	trips    TripServicer
	stops    StopServicer
	schedule ScheduleServicer
	members  MemberServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, stops StopServicer, schedule ScheduleServicer, members MemberServicer) *Server {
	return &Server{trips: trips, stops: stops, schedule: schedule, members: members}
}

// Routes returns the router for everything under /. Health and the OpenAPI
// document are public; all /trips routes require a resolved user.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Health)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Get("/schedule", s.GetSchedule)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", s.ListMembers)
					r.Post("/", s.AddMember)
					r.Delete("/{userID}", s.RemoveMember)
				})

				r.Route("/stops", func(r chi.Router) {
					r.Post("/", s.InsertStop)
					r.Get("/", s.ListStops)
					r.Get("/{stopID}", s.GetStop)
					r.Patch("/{stopID}", s.UpdateStop)
					r.Patch("/{stopID}/move", s.MoveStop)
					r.Delete("/{stopID}", s.DeleteStop)
				})
			})
		})
	})

	return r
}

// urlUUID parses the named chi URL parameter as a UUID.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
