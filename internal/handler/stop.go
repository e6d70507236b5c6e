package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/middleware"
	"github.com/snagao/tripcraft/backend/internal/service"
)

// positionEnd is the requested position meaning "append to the day".
// The ordering engine clamps it to one past the current last stop.
const positionEnd = 1 << 30

// createStopRequest is the JSON body for inserting a stop into a day.
// Position is optional; omitted means append. EstimatedCost is free text
// ("¥1,200" is fine) and normalized server-side.
type createStopRequest struct {
	Name            string   `json:"name"`
	DayNumber       int      `json:"day_number"`
	Position        *int     `json:"position,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	EstimatedCost   *string  `json:"estimated_cost,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// updateStopRequest is the JSON body for field edits. Day, position, and
// travel time are deliberately absent — those change via the move endpoint.
type updateStopRequest struct {
	Name            string   `json:"name"`
	Category        *string  `json:"category,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	EstimatedCost   *string  `json:"estimated_cost,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// moveStopRequest is the JSON body for PATCH .../move.
// Same-day reorders pass the stop's current day_number.
type moveStopRequest struct {
	DayNumber int `json:"day_number"`
	Position  int `json:"position"`
}

type stopResponse struct {
	ID                uuid.UUID `json:"id"`
	TripID            uuid.UUID `json:"trip_id"`
	DayNumber         int       `json:"day_number"`
	Position          int       `json:"position"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	TravelTimeMinutes *int      `json:"travel_time_minutes,omitempty"`
	EstimatedCost     *int      `json:"estimated_cost,omitempty"`
	DurationMinutes   *int      `json:"duration_minutes,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type dayScheduleResponse struct {
	DayNumber int            `json:"day_number"`
	Stops     []stopResponse `json:"stops"`
}

// InsertStop handles POST /trips/{tripID}/stops.
func (s *Server) InsertStop(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	var body createStopRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	stop, err := requestToStop(body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	position := positionEnd
	if body.Position != nil {
		position = *body.Position
	}

	created, err := s.schedule.Insert(r.Context(), middleware.UserID(r.Context()), tripID, body.DayNumber, position, stop)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stopToResponse(created))
}

// ListStops handles GET /trips/{tripID}/stops.
func (s *Server) ListStops(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	stops, err := s.stops.ListByTripID(r.Context(), middleware.UserID(r.Context()), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]stopResponse, len(stops))
	for i, st := range stops {
		data[i] = stopToResponse(st)
	}
	writeJSON(w, http.StatusOK, data)
}

// GetSchedule handles GET /trips/{tripID}/schedule.
func (s *Server) GetSchedule(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	schedule, err := s.stops.Schedule(r.Context(), middleware.UserID(r.Context()), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]dayScheduleResponse, len(schedule))
	for i, day := range schedule {
		stops := make([]stopResponse, len(day.Stops))
		for j, st := range day.Stops {
			stops[j] = stopToResponse(st)
		}
		data[i] = dayScheduleResponse{DayNumber: day.DayNumber, Stops: stops}
	}
	writeJSON(w, http.StatusOK, data)
}

// GetStop handles GET /trips/{tripID}/stops/{stopID}.
func (s *Server) GetStop(w http.ResponseWriter, r *http.Request) {
	tripID, stopID, ok := stopPathIDs(w, r)
	if !ok {
		return
	}

	stop, err := s.stops.GetByID(r.Context(), middleware.UserID(r.Context()), tripID, stopID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stopToResponse(stop))
}

// UpdateStop handles PATCH /trips/{tripID}/stops/{stopID}.
func (s *Server) UpdateStop(w http.ResponseWriter, r *http.Request) {
	tripID, stopID, ok := stopPathIDs(w, r)
	if !ok {
		return
	}

	var body updateStopRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	stop, err := requestToStop(createStopRequest{
		Name:            body.Name,
		Category:        body.Category,
		Latitude:        body.Latitude,
		Longitude:       body.Longitude,
		EstimatedCost:   body.EstimatedCost,
		DurationMinutes: body.DurationMinutes,
		Notes:           body.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	stop.ID = stopID
	stop.TripID = tripID

	updated, err := s.stops.Update(r.Context(), middleware.UserID(r.Context()), stop)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stopToResponse(updated))
}

// MoveStop handles PATCH /trips/{tripID}/stops/{stopID}/move.
func (s *Server) MoveStop(w http.ResponseWriter, r *http.Request) {
	tripID, stopID, ok := stopPathIDs(w, r)
	if !ok {
		return
	}

	var body moveStopRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	moved, err := s.schedule.Move(r.Context(), middleware.UserID(r.Context()), tripID, stopID, body.DayNumber, body.Position)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stopToResponse(moved))
}

// DeleteStop handles DELETE /trips/{tripID}/stops/{stopID}.
func (s *Server) DeleteStop(w http.ResponseWriter, r *http.Request) {
	tripID, stopID, ok := stopPathIDs(w, r)
	if !ok {
		return
	}

	if err := s.schedule.Delete(r.Context(), middleware.UserID(r.Context()), tripID, stopID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// stopPathIDs parses the trip and stop IDs from the URL, writing the error
// response itself when either is malformed.
func stopPathIDs(w http.ResponseWriter, r *http.Request) (tripID, stopID uuid.UUID, ok bool) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return uuid.Nil, uuid.Nil, false
	}
	stopID, err = urlUUID(r, "stopID")
	if err != nil {
		writeRequestError(w, "invalid stop id")
		return uuid.Nil, uuid.Nil, false
	}
	return tripID, stopID, true
}

// requestToStop converts a stop body into a domain.Stop, normalizing the
// cost text. Day and position are handled by the callers.
func requestToStop(body createStopRequest) (domain.Stop, error) {
	cost, err := service.ParseCost(stringOrEmpty(body.EstimatedCost))
	if err != nil {
		return domain.Stop{}, err
	}

	stop := domain.Stop{
		Name:            body.Name,
		Latitude:        body.Latitude,
		Longitude:       body.Longitude,
		EstimatedCost:   cost,
		DurationMinutes: body.DurationMinutes,
	}
	if body.Category != nil {
		stop.Category = domain.StopCategory(*body.Category)
	}
	if body.Notes != nil {
		stop.Notes = *body.Notes
	}
	return stop, nil
}

// stopToResponse converts a domain.Stop into its JSON shape.
func stopToResponse(st domain.Stop) stopResponse {
	return stopResponse{
		ID:                st.ID,
		TripID:            st.TripID,
		DayNumber:         st.DayNumber,
		Position:          st.Position,
		Name:              st.Name,
		Category:          string(st.Category),
		Latitude:          st.Latitude,
		Longitude:         st.Longitude,
		TravelTimeMinutes: st.TravelTimeMinutes,
		EstimatedCost:     st.EstimatedCost,
		DurationMinutes:   st.DurationMinutes,
		Notes:             st.Notes,
		CreatedAt:         st.CreatedAt,
		UpdatedAt:         st.UpdatedAt,
	}
}

func stringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
