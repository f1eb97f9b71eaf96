package models

import "github.com/shopspring/decimal"

// Trip represents one shopping occasion. It owns a collection of Items.
//
// TotalAmount, TotalItems and IsSettled are caches of a computation over
// the trip's current items and splits. They are rewritten inside the same
// transaction as every item or payment mutation and must never be
// maintained incrementally.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// UserID is the account that owns this trip.
	UserID string

	// Date is the Unix timestamp of the shopping occasion.
	Date int64

	// PayerMemberID is the member who fronted the money at the register.
	PayerMemberID string

	// Note is free-text attached to the trip.
	Note string

	// TotalItems is the number of items currently on the trip.
	TotalItems int

	// TotalAmount is the sum of the trip's item prices, pre-tax.
	TotalAmount decimal.Decimal

	// IsSettled is true when every member's share on every item is paid.
	IsSettled bool

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last mutation under the trip.
	UpdatedAt int64
}
