package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/engine"
	"github.com/MonyVannn/Grocy/internal/metrics"
	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// CreateTrip persists a new trip. Trips start empty: zero items, zero
// total, unsettled.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if trip.CreatedAt == 0 {
		trip.CreatedAt = now
	}
	trip.UpdatedAt = now
	trip.TotalItems = 0
	trip.TotalAmount = decimal.Zero
	trip.IsSettled = false

	var payer interface{}
	if trip.PayerMemberID != "" {
		payer = trip.PayerMemberID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, user_id, trip_date, payer_member_id, note, total_items, total_amount, is_settled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, '0', 0, ?, ?)`,
		trip.ID, trip.UserID, trip.Date, payer, trip.Note, trip.CreatedAt, trip.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	return nil
}

// GetTrip retrieves a trip by ID.
func (s *SQLiteStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return getTrip(ctx, s.db, tripID)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func getTrip(ctx context.Context, q querier, tripID string) (*models.Trip, error) {
	trip := &models.Trip{}
	var payer sql.NullString
	var amount string
	var settled int

	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, trip_date, payer_member_id, note, total_items, total_amount, is_settled, created_at, updated_at
		 FROM trips WHERE id = ?`,
		tripID,
	).Scan(&trip.ID, &trip.UserID, &trip.Date, &payer, &trip.Note,
		&trip.TotalItems, &amount, &settled, &trip.CreatedAt, &trip.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	if payer.Valid {
		trip.PayerMemberID = payer.String
	}
	trip.IsSettled = settled != 0
	trip.TotalAmount, err = parseMoney(amount)
	if err != nil {
		return nil, err
	}

	return trip, nil
}

// ListTrips retrieves all trips for a user, newest first.
func (s *SQLiteStore) ListTrips(ctx context.Context, userID string) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, trip_date, payer_member_id, note, total_items, total_amount, is_settled, created_at, updated_at
		 FROM trips WHERE user_id = ? ORDER BY trip_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip := &models.Trip{}
		var payer sql.NullString
		var amount string
		var settled int

		if err := rows.Scan(&trip.ID, &trip.UserID, &trip.Date, &payer, &trip.Note,
			&trip.TotalItems, &amount, &settled, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}

		if payer.Valid {
			trip.PayerMemberID = payer.String
		}
		trip.IsSettled = settled != 0
		if trip.TotalAmount, err = parseMoney(amount); err != nil {
			return nil, err
		}

		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}

	return trips, nil
}

// DeleteTrip removes a trip; items, owners and splits cascade.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, tripID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM trips WHERE id = ?", tripID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check trip existence: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	return nil
}

// recomputeTripTotals re-reads every item currently on the trip and
// rewrites the trip's cached totals and settled flag. It must run
// inside the transaction that mutated the item or split set, so a
// failed recompute rolls the whole mutation back and concurrent
// mutations cannot commit a stale total.
func (s *SQLiteStore) recomputeTripTotals(ctx context.Context, tx *sql.Tx, tripID string) error {
	items, err := listItems(ctx, tx, tripID)
	if err != nil {
		return fmt.Errorf("recompute: %w", err)
	}

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

	totals, err := engine.Recompute(engineItems, s.taxRate)
	if err != nil {
		return fmt.Errorf("recompute: %w", err)
	}

	// A trip is settled when it has splits and none of them is unpaid.
	var splitCount, unpaidCount int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN paid = 0 THEN 1 ELSE 0 END), 0) FROM item_splits WHERE trip_id = ?",
		tripID,
	).Scan(&splitCount, &unpaidCount)
	if err != nil {
		return fmt.Errorf("recompute: failed to count splits: %w", err)
	}
	settled := 0
	if splitCount > 0 && unpaidCount == 0 {
		settled = 1
	}

	// The stored trip total is the pre-tax item-price sum; taxed
	// figures live on the sheet and the per-member contributions.
	res, err := tx.ExecContext(ctx,
		"UPDATE trips SET total_items = ?, total_amount = ?, is_settled = ?, updated_at = ? WHERE id = ?",
		totals.ItemCount, engine.Cents(totals.TotalPrice).String(), settled, time.Now().Unix(), tripID,
	)
	if err != nil {
		return fmt.Errorf("recompute: failed to update trip totals: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recompute: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("recompute: trip %s: %w", tripID, storage.ErrNotFound)
	}

	metrics.TripRecomputesTotal.Inc()
	return nil
}
