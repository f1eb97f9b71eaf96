package models

import "github.com/shopspring/decimal"

// Item represents a single purchased product on a trip.
// A valid item always has at least one owner.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// TripID is the trip this item belongs to.
	TripID string

	// Name is the product name (e.g., "Milk", "Detergent").
	Name string

	// Category is an optional grouping label (e.g., "Dairy").
	Category string

	// Quantity is the number of units purchased.
	Quantity int

	// Price is the total line price for the item, pre-tax.
	Price decimal.Decimal

	// OwnerIDs is the set of member ids splitting this item.
	// Equal split; never empty for a persisted item.
	OwnerIDs []string
}
