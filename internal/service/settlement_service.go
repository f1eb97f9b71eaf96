package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MonyVannn/Grocy/internal/storage"
)

// SettlementService marks member payments and answers settlement
// queries. Payment state lives on the individual splits; a member is
// settled for a trip only when all of their splits are paid.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// MarkPaid sets the paid flag on every split a member holds in a trip,
// optionally attaching a payment note. It returns the number of splits
// updated. A member with no splits in the trip yields ErrNotFound.
func (s *SettlementService) MarkPaid(ctx context.Context, tripID, memberID string, paid bool, note string) (int, error) {
	if _, err := ownedTrip(ctx, s.store, tripID); err != nil {
		return 0, err
	}

	n, err := s.store.SetPaid(ctx, tripID, memberID, paid, note)
	if err != nil {
		return 0, fmt.Errorf("failed to update payment state: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("member %s has no splits in trip %s: %w", memberID, tripID, storage.ErrNotFound)
	}

	slog.Info("Payment state updated", "trip_id", tripID, "member_id", memberID, "paid", paid, "splits", n)
	return n, nil
}

// IsSettled reports whether a member has paid all of their splits in a
// trip. A member with no splits is not settled; there is nothing to
// settle.
func (s *SettlementService) IsSettled(ctx context.Context, tripID, memberID string) (bool, error) {
	if _, err := ownedTrip(ctx, s.store, tripID); err != nil {
		return false, err
	}

	splits, err := s.store.ListSplitsByMember(ctx, tripID, memberID)
	if err != nil {
		return false, err
	}
	if len(splits) == 0 {
		return false, nil
	}
	for _, split := range splits {
		if !split.Paid {
			return false, nil
		}
	}
	return true, nil
}
