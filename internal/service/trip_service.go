package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// TripService manages grocery trips. A trip is the container items and
// splits hang off; its totals and settled flag are derived caches the
// storage layer refreshes on every item mutation.
type TripService struct {
	store storage.Store
}

// NewTripService creates a new TripService.
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store}
}

// TripInput carries the fields a caller controls when creating a trip.
type TripInput struct {
	Date          int64
	PayerMemberID string
	Note          string
}

// CreateTrip creates an empty trip for the authenticated user. The
// payer, when set, must be one of the user's members.
func (s *TripService) CreateTrip(ctx context.Context, in TripInput) (*models.Trip, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if in.PayerMemberID != "" {
		member, err := s.store.GetMember(ctx, in.PayerMemberID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve payer: %w", err)
		}
		if member.UserID != userID {
			return nil, ErrPermissionDenied
		}
	}

	trip := &models.Trip{
		UserID:        userID,
		Date:          in.Date,
		PayerMemberID: in.PayerMemberID,
		Note:          in.Note,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	slog.Info("Trip created", "trip_id", trip.ID, "user_id", userID)
	return trip, nil
}

// GetTrip returns a single trip owned by the authenticated user.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return ownedTrip(ctx, s.store, tripID)
}

// ListTrips returns the authenticated user's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListTrips(ctx, userID)
}

// DeleteTrip removes a trip along with its items and splits.
func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	if _, err := ownedTrip(ctx, s.store, tripID); err != nil {
		return err
	}
	if err := s.store.DeleteTrip(ctx, tripID); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	slog.Info("Trip deleted", "trip_id", tripID)
	return nil
}
