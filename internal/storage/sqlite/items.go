package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// CreateItem persists an item, its owner set and its generated split
// rows, then recomputes the parent trip's totals. Everything commits
// together or not at all.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *models.Item, splits []models.ItemSplit) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO items (id, trip_id, name, category, quantity, price) VALUES (?, ?, ?, ?, ?, ?)",
		item.ID, item.TripID, item.Name, item.Category, item.Quantity, item.Price.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	if err := insertOwners(ctx, tx, item); err != nil {
		return err
	}
	if err := insertSplits(ctx, tx, item.ID, splits); err != nil {
		return err
	}
	if err := s.recomputeTripTotals(ctx, tx, item.TripID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateItem rewrites an item and replaces its owner set and split
// rows, then recomputes the parent trip's totals. Paid/note state is
// carried forward per (item, member): owners that survive the edit keep
// their payment status, owners that were removed lose their rows, and
// new owners start unpaid.
func (s *SQLiteStore) UpdateItem(ctx context.Context, item *models.Item, splits []models.ItemSplit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tripID string
	err = tx.QueryRowContext(ctx, "SELECT trip_id FROM items WHERE id = ?", item.ID).Scan(&tripID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("item %s: %w", item.ID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up item: %w", err)
	}
	item.TripID = tripID

	// Snapshot prior payment state before the rows are replaced.
	prior, err := priorPaymentState(ctx, tx, item.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE items SET name = ?, category = ?, quantity = ?, price = ? WHERE id = ?",
		item.Name, item.Category, item.Quantity, item.Price.String(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_owners WHERE item_id = ?", item.ID); err != nil {
		return fmt.Errorf("failed to clear item owners: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM item_splits WHERE item_id = ?", item.ID); err != nil {
		return fmt.Errorf("failed to clear item splits: %w", err)
	}

	for i := range splits {
		if state, ok := prior[splits[i].MemberID]; ok {
			splits[i].Paid = state.paid
			splits[i].Note = state.note
		}
	}

	if err := insertOwners(ctx, tx, item); err != nil {
		return err
	}
	if err := insertSplits(ctx, tx, item.ID, splits); err != nil {
		return err
	}
	if err := s.recomputeTripTotals(ctx, tx, tripID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteItem removes an item (owners and splits cascade) and recomputes
// the parent trip's totals.
func (s *SQLiteStore) DeleteItem(ctx context.Context, itemID string) error {
	return s.BulkDeleteItems(ctx, []string{itemID})
}

// BulkDeleteItems removes a batch of items in one transaction and
// recomputes totals once per affected trip. Either every deletion and
// every recompute commits, or none do.
func (s *SQLiteStore) BulkDeleteItems(ctx context.Context, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Resolve affected trips before the rows disappear.
	args := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}
	query := "SELECT id, trip_id FROM items WHERE id IN (?" + repeatPlaceholder(len(itemIDs)-1) + ")"

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to resolve items: %w", err)
	}
	found := make(map[string]bool, len(itemIDs))
	tripIDs := make(map[string]bool)
	for rows.Next() {
		var itemID, tripID string
		if err := rows.Scan(&itemID, &tripID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan item: %w", err)
		}
		found[itemID] = true
		tripIDs[tripID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	for _, id := range itemIDs {
		if !found[id] {
			return fmt.Errorf("item %s: %w", id, storage.ErrNotFound)
		}
	}

	deleteQuery := "DELETE FROM items WHERE id IN (?" + repeatPlaceholder(len(itemIDs)-1) + ")"
	if _, err := tx.ExecContext(ctx, deleteQuery, args...); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}

	for tripID := range tripIDs {
		if err := s.recomputeTripTotals(ctx, tx, tripID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetItem retrieves a single item with its owner set.
func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	item := &models.Item{}
	var price string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, trip_id, name, category, quantity, price FROM items WHERE id = ?",
		itemID,
	).Scan(&item.ID, &item.TripID, &item.Name, &item.Category, &item.Quantity, &price)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if item.Price, err = parseMoney(price); err != nil {
		return nil, err
	}
	if item.OwnerIDs, err = itemOwners(ctx, s.db, itemID); err != nil {
		return nil, err
	}

	return item, nil
}

// ListItems retrieves every item on a trip with its owner set.
func (s *SQLiteStore) ListItems(ctx context.Context, tripID string) ([]*models.Item, error) {
	return listItems(ctx, s.db, tripID)
}

// ListItemsInRange retrieves every item on the user's trips whose trip
// date falls in [from, to).
func (s *SQLiteStore) ListItemsInRange(ctx context.Context, userID string, from, to int64) ([]*models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.trip_id, i.name, i.category, i.quantity, i.price
		 FROM items i
		 JOIN trips t ON i.trip_id = t.id
		 WHERE t.user_id = ? AND t.trip_date >= ? AND t.trip_date < ?`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items in range: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.OwnerIDs, err = itemOwners(ctx, s.db, item.ID); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// listItems works against either the pool or an open transaction so the
// in-tx recompute sees the mutation it is part of.
func listItems(ctx context.Context, q querier, tripID string) ([]*models.Item, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, trip_id, name, category, quantity, price FROM items WHERE trip_id = ?",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.OwnerIDs, err = itemOwners(ctx, q, item.ID); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func scanItems(rows *sql.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		var price string
		if err := rows.Scan(&item.ID, &item.TripID, &item.Name, &item.Category, &item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		var err error
		if item.Price, err = parseMoney(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func itemOwners(ctx context.Context, q querier, itemID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT member_id FROM item_owners WHERE item_id = ? ORDER BY member_id",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}

	return owners, nil
}

func insertOwners(ctx context.Context, tx *sql.Tx, item *models.Item) error {
	for _, memberID := range item.OwnerIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO item_owners (item_id, member_id) VALUES (?, ?)",
			item.ID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item owner: %w", err)
		}
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, itemID string, splits []models.ItemSplit) error {
	for _, split := range splits {
		var note interface{} = nil
		if split.Note != "" {
			note = split.Note
		}
		paid := 0
		if split.Paid {
			paid = 1
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO item_splits (item_id, trip_id, member_id, share, paid, note) VALUES (?, ?, ?, ?, ?, ?)",
			itemID, split.TripID, split.MemberID, split.Share.String(), paid, note,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item split: %w", err)
		}
	}
	return nil
}

type paymentState struct {
	paid bool
	note string
}

func priorPaymentState(ctx context.Context, tx *sql.Tx, itemID string) (map[string]paymentState, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT member_id, paid, note FROM item_splits WHERE item_id = ?",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read prior splits: %w", err)
	}
	defer rows.Close()

	prior := make(map[string]paymentState)
	for rows.Next() {
		var memberID string
		var paid int
		var note sql.NullString
		if err := rows.Scan(&memberID, &paid, &note); err != nil {
			return nil, fmt.Errorf("failed to scan prior split: %w", err)
		}
		prior[memberID] = paymentState{paid: paid != 0, note: note.String}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prior splits: %w", err)
	}

	return prior, nil
}
