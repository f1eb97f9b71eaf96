package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Totals is the aggregate over a set of items: the trip-level sums plus
// each member's running taxed contribution. All figures are full
// precision; round with Cents at the display or persistence boundary.
type Totals struct {
	ItemCount    int
	TotalPrice   decimal.Decimal
	TotalTax     decimal.Decimal
	TotalDue     decimal.Decimal
	MemberTotals map[string]decimal.Decimal
}

// Recompute folds the current live item set into trip totals. Item
// order does not affect the result; addition is commutative and no
// rounding happens inside the fold.
//
// Callers always recompute from the full item set after a mutation,
// never by applying a delta, so concurrent mutations against the same
// trip cannot leave a stale total behind.
func Recompute(items []Item, rate decimal.Decimal) (Totals, error) {
	totals := Totals{
		TotalPrice:   decimal.Zero,
		TotalTax:     decimal.Zero,
		TotalDue:     decimal.Zero,
		MemberTotals: make(map[string]decimal.Decimal),
	}

	for _, item := range items {
		shares, err := Allocate(item.Price, item.OwnerIDs)
		if err != nil {
			return Totals{}, fmt.Errorf("item %s: %w", item.ID, err)
		}
		tax, due := ApplyTax(item.Price, rate)

		totals.ItemCount++
		totals.TotalPrice = totals.TotalPrice.Add(item.Price)
		totals.TotalTax = totals.TotalTax.Add(tax)
		totals.TotalDue = totals.TotalDue.Add(due)

		for memberID, share := range shares {
			totals.MemberTotals[memberID] = totals.MemberTotals[memberID].Add(TaxedShare(share, rate))
		}
	}

	return totals, nil
}

// MonthlySummary is the dashboard reporting aggregate over a
// date-filtered item set.
type MonthlySummary struct {
	TotalSpending    decimal.Decimal
	AverageSpending  decimal.Decimal
	TopSpenderID     string
	TopSpenderAmount decimal.Decimal
	MemberSpending   map[string]decimal.Decimal
}

// Summarize generalizes Recompute over an arbitrary item set (typically
// all items on trips within a month) and derives the dashboard figures.
// memberCount is the household size used for the average; a zero count
// yields a zero average rather than a division error.
//
// Top spender ties break toward the lexicographically smallest member id
// so the result is deterministic.
func Summarize(items []Item, rate decimal.Decimal, memberCount int) (MonthlySummary, error) {
	totals, err := Recompute(items, rate)
	if err != nil {
		return MonthlySummary{}, err
	}

	summary := MonthlySummary{
		TotalSpending:    totals.TotalDue,
		AverageSpending:  decimal.Zero,
		MemberSpending:   totals.MemberTotals,
		TopSpenderAmount: decimal.Zero,
	}
	if memberCount > 0 {
		summary.AverageSpending = totals.TotalDue.Div(decimal.NewFromInt(int64(memberCount)))
	}

	for memberID, amount := range totals.MemberTotals {
		switch cmp := amount.Cmp(summary.TopSpenderAmount); {
		case cmp > 0:
			summary.TopSpenderID = memberID
			summary.TopSpenderAmount = amount
		case cmp == 0 && (summary.TopSpenderID == "" || memberID < summary.TopSpenderID):
			// Covers the all-zero month too: any member beats the
			// unset initial state, then ids tie-break as usual.
			summary.TopSpenderID = memberID
		}
	}

	return summary, nil
}
