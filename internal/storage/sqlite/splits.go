package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MonyVannn/Grocy/internal/models"
)

// ListSplitsByTrip retrieves every split row on a trip.
func (s *SQLiteStore) ListSplitsByTrip(ctx context.Context, tripID string) ([]*models.ItemSplit, error) {
	return s.querySplits(ctx,
		"SELECT item_id, trip_id, member_id, share, paid, note FROM item_splits WHERE trip_id = ?",
		tripID,
	)
}

// ListSplitsByMember retrieves a member's split rows on a trip.
func (s *SQLiteStore) ListSplitsByMember(ctx context.Context, tripID, memberID string) ([]*models.ItemSplit, error) {
	return s.querySplits(ctx,
		"SELECT item_id, trip_id, member_id, share, paid, note FROM item_splits WHERE trip_id = ? AND member_id = ?",
		tripID, memberID,
	)
}

// SetPaid bulk-updates paid/note on every split row for the
// (trip, member) pair. Marking a member paid settles all their shares
// on the trip at once. The trip's settled flag is refreshed in the same
// transaction.
func (s *SQLiteStore) SetPaid(ctx context.Context, tripID, memberID string, paid bool, note string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var noteArg interface{} = nil
	if note != "" {
		noteArg = note
	}
	paidArg := 0
	if paid {
		paidArg = 1
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE item_splits SET paid = ?, note = ? WHERE trip_id = ? AND member_id = ?",
		paidArg, noteArg, tripID, memberID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update splits: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check split update: %w", err)
	}

	// Refresh the trip-level settled flag. A trip is settled when it
	// has splits and none is unpaid.
	var splitCount, unpaidCount int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN paid = 0 THEN 1 ELSE 0 END), 0) FROM item_splits WHERE trip_id = ?",
		tripID,
	).Scan(&splitCount, &unpaidCount)
	if err != nil {
		return 0, fmt.Errorf("failed to count splits: %w", err)
	}
	settled := 0
	if splitCount > 0 && unpaidCount == 0 {
		settled = 1
	}
	if _, err := tx.ExecContext(ctx, "UPDATE trips SET is_settled = ? WHERE id = ?", settled, tripID); err != nil {
		return 0, fmt.Errorf("failed to update trip settled flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return int(affected), nil
}

func (s *SQLiteStore) querySplits(ctx context.Context, query string, args ...interface{}) ([]*models.ItemSplit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []*models.ItemSplit
	for rows.Next() {
		split := &models.ItemSplit{}
		var share string
		var paid int
		var note sql.NullString

		if err := rows.Scan(&split.ItemID, &split.TripID, &split.MemberID, &share, &paid, &note); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}

		split.Paid = paid != 0
		if note.Valid {
			split.Note = note.String
		}
		if split.Share, err = parseMoney(share); err != nil {
			return nil, err
		}

		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}
