// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/MonyVannn/Grocy/internal/models"
)

var (
	// ErrNotFound is returned when an operation references a record
	// that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrMemberHasUnpaidSplits is returned when deleting a member who
	// still owes on one or more items. Deleting them anyway would
	// orphan their outstanding shares.
	ErrMemberHasUnpaidSplits = errors.New("member has unpaid splits")
)

// Store defines the interface for Grocy's persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Every item mutation (create, update, delete, bulk delete) recomputes
// and persists the parent trip's totals inside the same transaction as
// the mutation itself. Stored trip totals are a cache of that
// computation; no method increments them in place.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Members
	CreateMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
	UpdateMember(ctx context.Context, member *models.Member) error
	// DeleteMember removes a member. It fails with
	// ErrMemberHasUnpaidSplits while the member owes on any item.
	DeleteMember(ctx context.Context, memberID string) error
	ListMembers(ctx context.Context, userID string) ([]*models.Member, error)

	// Trips
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	ListTrips(ctx context.Context, userID string) ([]*models.Trip, error)
	// DeleteTrip removes a trip and cascades to its items and splits.
	DeleteTrip(ctx context.Context, tripID string) error

	// Items. CreateItem and UpdateItem take the freshly generated split
	// rows for the item's current owner set; UpdateItem replaces the
	// existing rows, carrying forward paid/note state per
	// (item, member) for owners that remain.
	CreateItem(ctx context.Context, item *models.Item, splits []models.ItemSplit) error
	UpdateItem(ctx context.Context, item *models.Item, splits []models.ItemSplit) error
	DeleteItem(ctx context.Context, itemID string) error
	BulkDeleteItems(ctx context.Context, itemIDs []string) error
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	ListItems(ctx context.Context, tripID string) ([]*models.Item, error)
	// ListItemsInRange returns all items on the user's trips with
	// trip date in [from, to), for reporting.
	ListItemsInRange(ctx context.Context, userID string, from, to int64) ([]*models.Item, error)

	// Splits
	ListSplitsByTrip(ctx context.Context, tripID string) ([]*models.ItemSplit, error)
	ListSplitsByMember(ctx context.Context, tripID, memberID string) ([]*models.ItemSplit, error)
	// SetPaid bulk-updates paid/note on every split row for the
	// (trip, member) pair and refreshes the trip's settled flag.
	// Returns the number of rows updated.
	SetPaid(ctx context.Context, tripID, memberID string, paid bool, note string) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
