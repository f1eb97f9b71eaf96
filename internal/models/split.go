package models

import "github.com/shopspring/decimal"

// ItemSplit is one member's computed share of one item.
//
// The set of split rows for an item always mirrors its current owner set:
// one row per owner, share = price / |owners|, rounded to cents. When an
// item's price or owners change the rows are deleted and regenerated in
// the same transaction; Paid and Note are carried forward per
// (item, member) so editing an item does not silently erase who has paid.
type ItemSplit struct {
	// ItemID is the item this share belongs to.
	ItemID string

	// TripID is the trip the item belongs to (denormalized for
	// per-trip settlement queries).
	TripID string

	// MemberID is the member who owes this share.
	MemberID string

	// Share is this member's equal share of the item price, pre-tax,
	// rounded half-up to 2 decimal places.
	Share decimal.Decimal

	// Paid records whether this share has been settled with the payer.
	// New splits always start unpaid.
	Paid bool

	// Note is optional free-text attached when marking paid/unpaid.
	Note string
}
