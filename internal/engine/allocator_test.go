package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		ownerIDs     []string
		wantErr      bool
		validateFunc func(t *testing.T, shares map[string]decimal.Decimal)
	}{
		{
			name:     "two owners split equally",
			price:    "10.00",
			ownerIDs: []string{"alice", "bob"},
			validateFunc: func(t *testing.T, shares map[string]decimal.Decimal) {
				if len(shares) != 2 {
					t.Fatalf("expected 2 shares, got %d", len(shares))
				}
				for id, share := range shares {
					if !share.Equal(money("5")) {
						t.Errorf("%s share = %s, want 5", id, share)
					}
				}
			},
		},
		{
			name:     "single owner gets full price",
			price:    "7.49",
			ownerIDs: []string{"bob"},
			validateFunc: func(t *testing.T, shares map[string]decimal.Decimal) {
				if !shares["bob"].Equal(money("7.49")) {
					t.Errorf("bob share = %s, want 7.49", shares["bob"])
				}
			},
		},
		{
			name:     "three owners sum back to the price",
			price:    "10.00",
			ownerIDs: []string{"alice", "bob", "carol"},
			validateFunc: func(t *testing.T, shares map[string]decimal.Decimal) {
				sum := decimal.Zero
				for _, share := range shares {
					sum = sum.Add(share)
				}
				if sum.Sub(money("10")).Abs().GreaterThan(money("0.01")) {
					t.Errorf("shares sum = %s, want 10.00 within a cent", sum)
				}
			},
		},
		{
			name:     "duplicate owner ids collapse",
			price:    "9.00",
			ownerIDs: []string{"alice", "alice", "bob"},
			validateFunc: func(t *testing.T, shares map[string]decimal.Decimal) {
				if len(shares) != 2 {
					t.Fatalf("expected 2 shares, got %d", len(shares))
				}
				if !shares["alice"].Equal(money("4.5")) {
					t.Errorf("alice share = %s, want 4.5", shares["alice"])
				}
			},
		},
		{
			name:     "no owners rejected",
			price:    "10.00",
			ownerIDs: nil,
			wantErr:  true,
		},
		{
			name:     "blank owner ids rejected",
			price:    "10.00",
			ownerIDs: []string{""},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Allocate(money(tt.price), tt.ownerIDs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Allocate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSplit) {
					t.Errorf("error = %v, want ErrInvalidSplit", err)
				}
				return
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestCents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3.333333333333333", "3.33"},
		{"3.335", "3.34"}, // half rounds up
		{"5", "5"},
		{"0.005", "0.01"},
	}
	for _, tt := range tests {
		if got := Cents(money(tt.in)); !got.Equal(money(tt.want)) {
			t.Errorf("Cents(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
