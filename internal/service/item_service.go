package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/engine"
	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// ItemService owns the item lifecycle: every create, edit and delete
// flows through the allocate → tax → aggregate pipeline, and the store
// persists the regenerated splits and recomputed trip totals in one
// transaction. There is no other code path that touches splits or
// totals.
type ItemService struct {
	store   storage.Store
	taxRate decimal.Decimal
}

// NewItemService creates a new ItemService.
func NewItemService(store storage.Store, taxRate decimal.Decimal) *ItemService {
	return &ItemService{store: store, taxRate: taxRate}
}

// ItemInput carries the user-editable fields of an item.
type ItemInput struct {
	Name     string
	Category string
	Quantity int
	Price    decimal.Decimal
	OwnerIDs []string
}

// CreateItem validates the input, persists the item with its generated
// split rows, and recomputes the trip totals. Nothing is written when
// validation fails.
func (s *ItemService) CreateItem(ctx context.Context, tripID string, in ItemInput) (*models.Item, error) {
	trip, err := ownedTrip(ctx, s.store, tripID)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:       uuid.New().String(),
		TripID:   trip.ID,
		Name:     in.Name,
		Category: in.Category,
		Quantity: in.Quantity,
		Price:    in.Price,
		OwnerIDs: in.OwnerIDs,
	}

	splits, err := s.buildSplits(ctx, trip, item)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateItem(ctx, item, splits); err != nil {
		slog.Error("CreateItem failed", "trip_id", trip.ID, "error", err)
		return nil, err
	}

	slog.Info("Item created", "trip_id", trip.ID, "item_id", item.ID, "owners", len(item.OwnerIDs))
	return item, nil
}

// UpdateItem rewrites an item's fields and owner set. Splits are
// regenerated; paid/note state carries forward per (item, member) for
// owners that remain.
func (s *ItemService) UpdateItem(ctx context.Context, itemID string, in ItemInput) (*models.Item, error) {
	existing, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	trip, err := ownedTrip(ctx, s.store, existing.TripID)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:       existing.ID,
		TripID:   trip.ID,
		Name:     in.Name,
		Category: in.Category,
		Quantity: in.Quantity,
		Price:    in.Price,
		OwnerIDs: in.OwnerIDs,
	}

	splits, err := s.buildSplits(ctx, trip, item)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateItem(ctx, item, splits); err != nil {
		slog.Error("UpdateItem failed", "item_id", itemID, "error", err)
		return nil, err
	}

	slog.Info("Item updated", "trip_id", trip.ID, "item_id", item.ID)
	return item, nil
}

// DeleteItem removes one item and recomputes trip totals.
func (s *ItemService) DeleteItem(ctx context.Context, itemID string) error {
	return s.BulkDeleteItems(ctx, []string{itemID})
}

// BulkDeleteItems removes a batch of items. All deletions and the trip
// total recompute commit together.
func (s *ItemService) BulkDeleteItems(ctx context.Context, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	// Verify the caller owns every targeted item before deleting any.
	for _, itemID := range itemIDs {
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := ownedTrip(ctx, s.store, item.TripID); err != nil {
			return err
		}
	}

	if err := s.store.BulkDeleteItems(ctx, itemIDs); err != nil {
		slog.Error("BulkDeleteItems failed", "count", len(itemIDs), "error", err)
		return err
	}

	slog.Info("Items deleted", "count", len(itemIDs))
	return nil
}

// ListItems returns the trip's items sorted for display.
// sortBy is one of "name" (default), "category", "price".
func (s *ItemService) ListItems(ctx context.Context, tripID, sortBy string) ([]*models.Item, error) {
	if _, err := ownedTrip(ctx, s.store, tripID); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, tripID)
	if err != nil {
		return nil, err
	}
	sortItems(items, sortBy)
	return items, nil
}

// buildSplits allocates the item price across its owners and produces
// the split rows to persist. It rejects empty owner sets and owners
// outside the caller's household before anything is written.
func (s *ItemService) buildSplits(ctx context.Context, trip *models.Trip, item *models.Item) ([]models.ItemSplit, error) {
	shares, err := engine.Allocate(item.Price, item.OwnerIDs)
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, trip.UserID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}

	splits := make([]models.ItemSplit, 0, len(shares))
	for memberID, share := range shares {
		if !known[memberID] {
			return nil, fmt.Errorf("owner %s: %w", memberID, storage.ErrNotFound)
		}
		splits = append(splits, models.ItemSplit{
			ItemID:   item.ID,
			TripID:   trip.ID,
			MemberID: memberID,
			Share:    engine.Cents(share),
		})
	}

	return splits, nil
}

func sortItems(items []*models.Item, sortBy string) {
	switch sortBy {
	case "category":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Category < items[j].Category })
	case "price":
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price.LessThan(items[j].Price) })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	}
}
