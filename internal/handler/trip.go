package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/middleware"
)

// tripRequest is the JSON body for creating and updating trips.
// Dates are date-only strings ("2026-04-01"); times would imply a precision
// the itinerary does not have.
type tripRequest struct {
	Title       string              `json:"title"`
	StartDate   openapi_types.Date  `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date,omitempty"`
	TotalBudget *int                `json:"total_budget,omitempty"`
	TravelTheme *string             `json:"travel_theme,omitempty"`
	Notes       *string             `json:"notes,omitempty"`
}

type tripResponse struct {
	ID           uuid.UUID           `json:"id"`
	OwnerID      uuid.UUID           `json:"owner_id"`
	Title        string              `json:"title"`
	StartDate    openapi_types.Date  `json:"start_date"`
	EndDate      *openapi_types.Date `json:"end_date,omitempty"`
	DurationDays int                 `json:"duration_days,omitempty"`
	TotalBudget  *int                `json:"total_budget,omitempty"`
	TravelTheme  string              `json:"travel_theme,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type paginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type tripListResponse struct {
	Data       []tripResponse     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body tripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	created, err := s.trips.Create(r.Context(), middleware.UserID(r.Context()), requestToTrip(uuid.Nil, body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	trips, total, err := s.trips.ListByUser(r.Context(), middleware.UserID(r.Context()), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]tripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, tripListResponse{
		Data:       data,
		Pagination: paginationResponse{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetByID(r.Context(), middleware.UserID(r.Context()), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripID}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	var body tripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	updated, err := s.trips.Update(r.Context(), middleware.UserID(r.Context()), requestToTrip(tripID, body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	if err := s.trips.Delete(r.Context(), middleware.UserID(r.Context()), tripID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a tripRequest body into a domain.Trip.
// The zero UUID means "new trip".
func requestToTrip(id uuid.UUID, body tripRequest) domain.Trip {
	t := domain.Trip{
		ID:          id,
		Title:       body.Title,
		StartDate:   body.StartDate.Time,
		TotalBudget: body.TotalBudget,
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		t.EndDate = &ed
	}
	if body.TravelTheme != nil {
		t.TravelTheme = *body.TravelTheme
	}
	if body.Notes != nil {
		t.Notes = *body.Notes
	}
	return t
}

// tripToResponse converts a domain.Trip into its JSON shape.
func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:           t.ID,
		OwnerID:      t.OwnerID,
		Title:        t.Title,
		StartDate:    openapi_types.Date{Time: t.StartDate},
		DurationDays: t.DurationDays(),
		TotalBudget:  t.TotalBudget,
		TravelTheme:  t.TravelTheme,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.EndDate != nil {
		ed := openapi_types.Date{Time: *t.EndDate}
		resp.EndDate = &ed
	}
	return resp
}

// queryInt parses an optional integer query parameter, returning nil when
// absent or malformed.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
