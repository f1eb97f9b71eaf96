// Package engine implements the expense split pipeline: allocate an
// item's price equally across its owners, apply the configured tax rate,
// and aggregate item-level results into trip-level and member-level
// totals.
//
// All arithmetic is done on decimal.Decimal at full precision; amounts
// are only rounded to cents (round half-up) at the persistence and
// display boundaries, via Cents. Displayed totals are always summed
// first and rounded last so repeated per-item rounding never drifts the
// bottom line.
//
// The package is pure computation. It never touches storage; callers
// feed it the current live item set and persist what it returns.
package engine

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidSplit is returned when an item has no owners. Callers must
// enforce at least one owner before persisting anything; the engine
// enforces it again so the invariant does not depend on a form.
var ErrInvalidSplit = errors.New("item must have at least one owner")

// Item is the engine's view of a purchased product. It mirrors
// models.Item but keeps the engine decoupled from the persistence
// shapes.
type Item struct {
	ID       string
	Name     string
	Category string
	Quantity int
	Price    decimal.Decimal
	OwnerIDs []string
}

// Cents rounds an amount to 2 decimal places, half-up. This is the only
// rounding mode in the system and it is applied exactly once per
// displayed or persisted figure.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
