package engine

import "github.com/shopspring/decimal"

// Allocate splits an item price equally across its owners, returning
// each owner's full-precision share. Duplicate owner ids are collapsed
// before dividing so a repeated id cannot inflate the denominator or
// double a share.
//
// Policy is strictly equal split: every owner gets price / |owners|,
// regardless of differing consumption. There is no weighted ownership.
func Allocate(price decimal.Decimal, ownerIDs []string) (map[string]decimal.Decimal, error) {
	owners := dedupe(ownerIDs)
	if len(owners) == 0 {
		return nil, ErrInvalidSplit
	}

	share := price.Div(decimal.NewFromInt(int64(len(owners))))
	shares := make(map[string]decimal.Decimal, len(owners))
	for _, id := range owners {
		shares[id] = share
	}
	return shares, nil
}

// dedupe returns the unique ids in first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
