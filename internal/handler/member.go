package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/middleware"
)

// addMemberRequest is the JSON body for sharing a trip with another user.
type addMemberRequest struct {
	UserID          uuid.UUID `json:"user_id"`
	PermissionLevel string    `json:"permission_level"` // "viewer" or "editor"
}

type memberResponse struct {
	ID              uuid.UUID `json:"id"`
	TripID          uuid.UUID `json:"trip_id"`
	UserID          uuid.UUID `json:"user_id"`
	PermissionLevel string    `json:"permission_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListMembers handles GET /trips/{tripID}/members.
func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	members, err := s.members.List(r.Context(), middleware.UserID(r.Context()), tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := make([]memberResponse, len(members))
	for i, m := range members {
		data[i] = memberToResponse(m)
	}
	writeJSON(w, http.StatusOK, data)
}

// AddMember handles POST /trips/{tripID}/members.
func (s *Server) AddMember(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}

	var body addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	member, err := s.members.Add(r.Context(), middleware.UserID(r.Context()), tripID, body.UserID, levelFromString(body.PermissionLevel))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberToResponse(member))
}

// RemoveMember handles DELETE /trips/{tripID}/members/{userID}.
func (s *Server) RemoveMember(w http.ResponseWriter, r *http.Request) {
	tripID, err := urlUUID(r, "tripID")
	if err != nil {
		writeRequestError(w, "invalid trip id")
		return
	}
	userID, err := urlUUID(r, "userID")
	if err != nil {
		writeRequestError(w, "invalid user id")
		return
	}

	if err := s.members.Remove(r.Context(), middleware.UserID(r.Context()), tripID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// levelFromString maps the wire permission level to its domain value.
// Unknown strings map to 0, which the service rejects as a validation error.
func levelFromString(s string) domain.PermissionLevel {
	switch s {
	case "viewer":
		return domain.PermissionViewer
	case "editor":
		return domain.PermissionEditor
	}
	return 0
}

func levelToString(l domain.PermissionLevel) string {
	switch l {
	case domain.PermissionViewer:
		return "viewer"
	case domain.PermissionEditor:
		return "editor"
	case domain.PermissionOwner:
		return "owner"
	}
	return "unknown"
}

func memberToResponse(m domain.TripMember) memberResponse {
	return memberResponse{
		ID:              m.ID,
		TripID:          m.TripID,
		UserID:          m.UserID,
		PermissionLevel: levelToString(m.Level),
		CreatedAt:       m.CreatedAt,
	}
}
