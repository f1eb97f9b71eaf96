// Package service implements Grocy's application operations on top of
// the split engine and the storage layer. Every operation is scoped to
// the authenticated user taken from the request context; a user can
// only ever see or mutate their own household.
package service

import (
	"context"
	"errors"

	"github.com/MonyVannn/Grocy/internal/middleware"
	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

var (
	// ErrUnauthenticated is returned when no user is on the context.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrPermissionDenied is returned when the caller does not own the
	// record the operation targets.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMemberExists is returned when adding a member whose name is
	// already taken in the household.
	ErrMemberExists = errors.New("member with this name already exists")

	// ErrInvalidRole is returned for roles other than admin or member.
	ErrInvalidRole = errors.New("role must be admin or member")
)

// userFromContext returns the authenticated user id or ErrUnauthenticated.
func userFromContext(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// ownedTrip loads a trip and verifies the caller owns it.
func ownedTrip(ctx context.Context, store storage.Store, tripID string) (*models.Trip, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	trip, err := store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return trip, nil
}
