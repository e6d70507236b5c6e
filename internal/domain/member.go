package domain

import (
	"time"

	"github.com/google/uuid"
)

// PermissionLevel is the access a member has on a shared trip.
// Stored as an integer so levels compare with <.
type PermissionLevel int

const (
	PermissionViewer PermissionLevel = 1
	PermissionEditor PermissionLevel = 2
	PermissionOwner  PermissionLevel = 3
)

// ValidPermissionLevel reports whether l is a known membership level.
// PermissionOwner is implied by trips.owner_id and never stored as a
// membership row, so it is not accepted here.
func ValidPermissionLevel(l PermissionLevel) bool {
	return l == PermissionViewer || l == PermissionEditor
}

// TripMember links a user to a trip they were given access to.
// The trip owner is not represented by a member row.
type TripMember struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	UserID    uuid.UUID
	Level     PermissionLevel
	CreatedAt time.Time
}

// User is the minimal identity record this service knows about.
// Authentication lives in front of the API; users exist here only so trips
// and memberships have something to reference.
type User struct {
	ID        uuid.UUID
	Email     string
	Nickname  string
	CreatedAt time.Time
}
