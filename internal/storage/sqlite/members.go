package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// CreateMember persists a new household member.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members (id, user_id, name, email, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		member.ID, member.UserID, member.Name, member.Email, member.Role, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	member := &models.Member{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, email, role, created_at FROM members WHERE id = ?",
		memberID,
	).Scan(&member.ID, &member.UserID, &member.Name, &member.Email, &member.Role, &member.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// UpdateMember updates a member's name, email and role.
func (s *SQLiteStore) UpdateMember(ctx context.Context, member *models.Member) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE members SET name = ?, email = ?, role = ? WHERE id = ?",
		member.Name, member.Email, member.Role, member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check member update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("member %s: %w", member.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteMember removes a member. Deletion is blocked while the member
// still has unpaid splits; removing them would silently corrupt the
// historical record of who owes what.
func (s *SQLiteStore) DeleteMember(ctx context.Context, memberID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM members WHERE id = ?", memberID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check member existence: %w", err)
	}

	var unpaid int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM item_splits WHERE member_id = ? AND paid = 0",
		memberID,
	).Scan(&unpaid)
	if err != nil {
		return fmt.Errorf("failed to count unpaid splits: %w", err)
	}
	if unpaid > 0 {
		return fmt.Errorf("member %s has %d unpaid splits: %w", memberID, unpaid, storage.ErrMemberHasUnpaidSplits)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM members WHERE id = ?", memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListMembers retrieves all members for a user, ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context, userID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, email, role, created_at FROM members WHERE user_id = ? ORDER BY name",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.ID, &member.UserID, &member.Name, &member.Email, &member.Role, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
