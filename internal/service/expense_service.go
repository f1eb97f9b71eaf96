package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/engine"
	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// ExpenseService builds the read-only expense sheet projection for a
// trip: per-item member contributions with tax, a totals row, and the
// paid/unpaid overlay per member. The sheet is recomputed from the live
// items on every read and is never a source of truth for stored totals.
type ExpenseService struct {
	store   storage.Store
	taxRate decimal.Decimal
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, taxRate decimal.Decimal) *ExpenseService {
	return &ExpenseService{store: store, taxRate: taxRate}
}

// MemberStatus is one member's column on the sheet.
type MemberStatus struct {
	Member *models.Member
	Paid   bool
}

// ExpenseSheet is the full projection handed to the presentation layer.
type ExpenseSheet struct {
	Trip    *models.Trip
	Sheet   *engine.Sheet
	Members []MemberStatus
}

// GetExpenseSheet renders the sheet for a trip. sortBy controls row
// order ("name", "category", "price"); the totals row is independent of
// it. Splits referencing a member who no longer exists are logged and
// skipped from the member columns but keep contributing to the totals,
// so the sheet still reconciles against the trip total.
func (s *ExpenseService) GetExpenseSheet(ctx context.Context, tripID, sortBy string) (*ExpenseSheet, error) {
	trip, err := ownedTrip(ctx, s.store, tripID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListItems(ctx, tripID)
	if err != nil {
		return nil, err
	}
	sortItems(items, sortBy)

	engineItems := make([]engine.Item, len(items))
	for i, item := range items {
		engineItems[i] = engine.Item{
			ID:       item.ID,
			Name:     item.Name,
			Category: item.Category,
			Quantity: item.Quantity,
			Price:    item.Price,
			OwnerIDs: item.OwnerIDs,
		}
	}

	sheet, err := engine.BuildSheet(engineItems, s.taxRate)
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, trip.UserID)
	if err != nil {
		return nil, err
	}
	roster := make(map[string]*models.Member, len(members))
	for _, m := range members {
		roster[m.ID] = m
	}

	splits, err := s.store.ListSplitsByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	// A member's column shows Paid only when every one of their rows is
	// paid; a later item addition flips them back to unpaid.
	hasSplit := make(map[string]bool)
	allPaid := make(map[string]bool)
	for _, split := range splits {
		if _, ok := roster[split.MemberID]; !ok {
			slog.Warn("Orphaned split references missing member",
				"trip_id", tripID, "item_id", split.ItemID, "member_id", split.MemberID)
			continue
		}
		if !hasSplit[split.MemberID] {
			hasSplit[split.MemberID] = true
			allPaid[split.MemberID] = true
		}
		if !split.Paid {
			allPaid[split.MemberID] = false
		}
	}

	result := &ExpenseSheet{Trip: trip, Sheet: sheet}
	for _, m := range members {
		if !hasSplit[m.ID] {
			continue
		}
		result.Members = append(result.Members, MemberStatus{Member: m, Paid: allPaid[m.ID]})
	}

	return result, nil
}
