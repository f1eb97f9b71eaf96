package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SheetRow is one item on an expense sheet: its price, its tax, and
// each owner's taxed contribution, all rounded to cents for display.
type SheetRow struct {
	ItemID        string
	Name          string
	Category      string
	Quantity      int
	Price         decimal.Decimal
	Tax           decimal.Decimal
	TotalDue      decimal.Decimal
	Contributions map[string]decimal.Decimal
}

// SheetTotals is the sheet's bottom row. Each figure is the sum of the
// full-precision per-item values, rounded once at the end.
type SheetTotals struct {
	TotalPrice    decimal.Decimal
	TotalTax      decimal.Decimal
	TotalDue      decimal.Decimal
	Contributions map[string]decimal.Decimal
}

// Sheet is a read-only projection of a trip for display. It is pure
// computation over the current items and the tax rate and is never the
// source of truth for any stored total.
type Sheet struct {
	Rows   []SheetRow
	Totals SheetTotals
}

// BuildSheet renders the expense sheet for a set of items. Rows keep
// the caller's item order (the caller sorts by name, category or price
// for display); the totals row is order-independent.
func BuildSheet(items []Item, rate decimal.Decimal) (*Sheet, error) {
	sheet := &Sheet{
		Rows: make([]SheetRow, 0, len(items)),
		Totals: SheetTotals{
			TotalPrice:    decimal.Zero,
			TotalTax:      decimal.Zero,
			TotalDue:      decimal.Zero,
			Contributions: make(map[string]decimal.Decimal),
		},
	}

	// Full-precision accumulators; the totals row rounds last.
	memberSums := make(map[string]decimal.Decimal)
	priceSum, taxSum, dueSum := decimal.Zero, decimal.Zero, decimal.Zero

	for _, item := range items {
		shares, err := Allocate(item.Price, item.OwnerIDs)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		tax, due := ApplyTax(item.Price, rate)

		row := SheetRow{
			ItemID:        item.ID,
			Name:          item.Name,
			Category:      item.Category,
			Quantity:      item.Quantity,
			Price:         Cents(item.Price),
			Tax:           Cents(tax),
			TotalDue:      Cents(due),
			Contributions: make(map[string]decimal.Decimal, len(shares)),
		}
		for memberID, share := range shares {
			taxed := TaxedShare(share, rate)
			row.Contributions[memberID] = Cents(taxed)
			memberSums[memberID] = memberSums[memberID].Add(taxed)
		}
		sheet.Rows = append(sheet.Rows, row)

		priceSum = priceSum.Add(item.Price)
		taxSum = taxSum.Add(tax)
		dueSum = dueSum.Add(due)
	}

	sheet.Totals.TotalPrice = Cents(priceSum)
	sheet.Totals.TotalTax = Cents(taxSum)
	sheet.Totals.TotalDue = Cents(dueSum)
	for memberID, sum := range memberSums {
		sheet.Totals.Contributions[memberID] = Cents(sum)
	}

	return sheet, nil
}
