package models

// Member roles. Admins manage the household roster; members only appear
// as item owners and payers.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member represents a person in a household. Members are the unit
// item costs are split among; they do not log in themselves.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// UserID is the account that owns this household.
	UserID string

	// Name is the member's display name.
	Name string

	// Email is optional contact info.
	Email string

	// Role is RoleAdmin or RoleMember.
	Role string

	// CreatedAt is the Unix timestamp when the member was added.
	CreatedAt int64
}
