package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// MemberService manages the household roster splits are allocated
// against.
type MemberService struct {
	store storage.Store
}

// NewMemberService creates a new MemberService.
func NewMemberService(store storage.Store) *MemberService {
	return &MemberService{store: store}
}

// AddMember adds a member to the authenticated user's roster. Names are
// unique per user; role defaults to "member" when empty.
func (s *MemberService) AddMember(ctx context.Context, name, email, role string) (*models.Member, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("member name is required")
	}
	if role != "" && role != models.RoleAdmin && role != models.RoleMember {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	existing, err := s.store.ListMembers(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, m := range existing {
		if strings.EqualFold(m.Name, name) {
			return nil, fmt.Errorf("%w: %s", ErrMemberExists, name)
		}
	}

	member := &models.Member{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   role,
	}
	if err := s.store.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	slog.Info("Member added", "member_id", member.ID, "user_id", userID)
	return member, nil
}

// EditMember updates a member's name, email, or role. Empty fields keep
// their current value.
func (s *MemberService) EditMember(ctx context.Context, memberID, name, email, role string) (*models.Member, error) {
	member, err := s.ownedMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" && !strings.EqualFold(name, member.Name) {
		existing, err := s.store.ListMembers(ctx, member.UserID)
		if err != nil {
			return nil, err
		}
		for _, m := range existing {
			if m.ID != member.ID && strings.EqualFold(m.Name, name) {
				return nil, fmt.Errorf("%w: %s", ErrMemberExists, name)
			}
		}
		member.Name = name
	}
	if email != "" {
		member.Email = email
	}
	if role != "" {
		if role != models.RoleAdmin && role != models.RoleMember {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
		}
		member.Role = role
	}

	if err := s.store.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

// DeleteMember removes a member from the roster. Members with unpaid
// splits cannot be removed until those are settled or their items are
// reassigned.
func (s *MemberService) DeleteMember(ctx context.Context, memberID string) error {
	if _, err := s.ownedMember(ctx, memberID); err != nil {
		return err
	}
	if err := s.store.DeleteMember(ctx, memberID); err != nil {
		if errors.Is(err, storage.ErrMemberHasUnpaidSplits) {
			return err
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	slog.Info("Member deleted", "member_id", memberID)
	return nil
}

// ListMembers returns the authenticated user's roster sorted by name.
func (s *MemberService) ListMembers(ctx context.Context) ([]*models.Member, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, userID)
}

func (s *MemberService) ownedMember(ctx context.Context, memberID string) (*models.Member, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.UserID != userID {
		return nil, ErrPermissionDenied
	}
	return member, nil
}
