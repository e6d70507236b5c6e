package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/snagao/tripcraft/backend/internal/domain"
	"github.com/snagao/tripcraft/backend/internal/repo"
)

// MemberService implements business logic for trip memberships and is the
// production Authorizer: edit rights belong to the trip owner and to members
// with editor level, view rights to the owner and any member.
type MemberService struct {
	trips   repo.TripRepo
	members repo.TripMemberRepo
}

// NewMemberService constructs a MemberService backed by the provided repos.
func NewMemberService(trips repo.TripRepo, members repo.TripMemberRepo) *MemberService {
	return &MemberService{trips: trips, members: members}
}

// CanEdit reports whether the user may modify the trip or its itinerary.
func (s *MemberService) CanEdit(ctx context.Context, userID, tripID uuid.UUID) (bool, error) {
	level, err := s.levelOf(ctx, userID, tripID)
	if err != nil {
		return false, fmt.Errorf("service.MemberService.CanEdit: %w", err)
	}
	return level >= domain.PermissionEditor, nil
}

// CanView reports whether the user may see the trip at all.
func (s *MemberService) CanView(ctx context.Context, userID, tripID uuid.UUID) (bool, error) {
	level, err := s.levelOf(ctx, userID, tripID)
	if err != nil {
		return false, fmt.Errorf("service.MemberService.CanView: %w", err)
	}
	return level >= domain.PermissionViewer, nil
}

// levelOf resolves the user's effective permission on a trip.
// Owners rank above any stored membership; non-members get level 0.
func (s *MemberService) levelOf(ctx context.Context, userID, tripID uuid.UUID) (domain.PermissionLevel, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return 0, err
	}
	if trip.OwnerID == userID {
		return domain.PermissionOwner, nil
	}

	level, err := s.members.GetLevel(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return level, nil
}

// List returns a trip's memberships. Only users who can view the trip may
// list its members. Always returns a non-nil slice.
func (s *MemberService) List(ctx context.Context, userID, tripID uuid.UUID) ([]domain.TripMember, error) {
	ok, err := s.CanView(ctx, userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MemberService.List: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: user may not view this trip", domain.ErrPermission)
	}

	members, err := s.members.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MemberService.List: %w", err)
	}
	if members == nil {
		return []domain.TripMember{}, nil
	}
	return members, nil
}

// Add grants memberUserID access to the trip at the given level.
// Only the trip owner may share a trip, and the owner cannot be added as a
// member of their own trip.
func (s *MemberService) Add(ctx context.Context, userID, tripID, memberUserID uuid.UUID, level domain.PermissionLevel) (domain.TripMember, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.TripMember{}, fmt.Errorf("service.MemberService.Add: %w", err)
	}
	if trip.OwnerID != userID {
		return domain.TripMember{}, fmt.Errorf("%w: only the owner may share a trip", domain.ErrPermission)
	}
	if memberUserID == trip.OwnerID {
		return domain.TripMember{}, fmt.Errorf("%w: the owner is already a member of their own trip", domain.ErrValidation)
	}
	if !domain.ValidPermissionLevel(level) {
		return domain.TripMember{}, fmt.Errorf("%w: permission_level must be viewer or editor", domain.ErrValidation)
	}

	member, err := s.members.Add(ctx, domain.TripMember{TripID: tripID, UserID: memberUserID, Level: level})
	if err != nil {
		return domain.TripMember{}, fmt.Errorf("service.MemberService.Add: %w", err)
	}
	return member, nil
}

// Remove revokes a user's membership. Only the trip owner may do this.
func (s *MemberService) Remove(ctx context.Context, userID, tripID, memberUserID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.MemberService.Remove: %w", err)
	}
	if trip.OwnerID != userID {
		return fmt.Errorf("%w: only the owner may manage members", domain.ErrPermission)
	}

	if err := s.members.Remove(ctx, tripID, memberUserID); err != nil {
		return fmt.Errorf("service.MemberService.Remove: %w", err)
	}
	return nil
}
