// Package models defines the core domain records for Grocy.
//
// # Records
//
//   - User: an account that owns a household's data
//   - Member: a person in the household groceries are split among
//   - Trip: one shopping occasion, owning a set of Items
//   - Item: one purchased product with a set of owning members
//   - ItemSplit: the computed share of one Item owed by one Member
//
// # Design Principles
//
//  1. **Stable ids everywhere**: items reference their owners by member id,
//     never by display name, so renaming a member cannot detach their shares.
//  2. **Derived totals are caches**: Trip.TotalAmount, Trip.TotalItems and
//     Trip.IsSettled are always recomputed from the live item and split sets
//     at write time, never incremented in place.
//  3. **Decimal money**: every amount is a decimal.Decimal. Binary floats are
//     never used for money, in memory or in storage.
//  4. **Avoid circular references**: records point at each other with id
//     strings, not pointers.
package models
