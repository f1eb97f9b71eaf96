package engine

import "github.com/shopspring/decimal"

// ApplyTax computes the tax on an amount at the given rate and the
// resulting total due (amount + tax).
//
// Tax is applied once per item on the item price. Member contributions
// are then taxed at the same rate on their pre-tax share (see
// TaxedShare), so summing member contributions reconstructs the item's
// total due exactly before rounding. The two orders are only
// distinguishable after rounding; this package applies item-first
// everywhere.
func ApplyTax(amount, rate decimal.Decimal) (tax, totalDue decimal.Decimal) {
	tax = amount.Mul(rate)
	return tax, amount.Add(tax)
}

// TaxedShare returns a member's contribution including their share of
// tax: share + share*rate, at full precision.
func TaxedShare(share, rate decimal.Decimal) decimal.Decimal {
	return share.Add(share.Mul(rate))
}
