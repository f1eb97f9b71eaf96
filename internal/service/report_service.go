package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/engine"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// ReportService produces the monthly dashboard figures from the items
// recorded across a user's trips.
type ReportService struct {
	store   storage.Store
	taxRate decimal.Decimal
}

// NewReportService creates a new ReportService.
func NewReportService(store storage.Store, taxRate decimal.Decimal) *ReportService {
	return &ReportService{store: store, taxRate: taxRate}
}

// MemberSpend is one member's slice of the monthly total.
type MemberSpend struct {
	MemberID   string
	MemberName string
	Amount     decimal.Decimal
}

// MonthlyReport is the dashboard summary for a calendar month.
type MonthlyReport struct {
	Year             int
	Month            time.Month
	TotalSpending    decimal.Decimal
	AverageSpending  decimal.Decimal
	TopSpenderID     string
	TopSpenderName   string
	TopSpenderAmount decimal.Decimal
	PerMember        []MemberSpend
}

// GetMonthlySummary aggregates all items on trips dated within the
// given month. Average spending divides by the current roster size, so
// it shifts when members are added or removed after the fact.
func (s *ReportService) GetMonthlySummary(ctx context.Context, year int, month time.Month) (*MonthlyReport, error) {
	userID, err := userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	items, err := s.store.ListItemsInRange(ctx, userID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to load items for %d-%02d: %w", year, month, err)
	}
	members, err := s.store.ListMembers(ctx, userID)
	if err != nil {
		return nil, err
	}

	engineItems := make([]engine.Item, len(items))
	for i, item := range items {
		engineItems[i] = engine.Item{
			ID:       item.ID,
			Price:    item.Price,
			OwnerIDs: item.OwnerIDs,
		}
	}

	summary, err := engine.Summarize(engineItems, s.taxRate, len(members))
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	report := &MonthlyReport{
		Year:             year,
		Month:            month,
		TotalSpending:    engine.Cents(summary.TotalSpending),
		AverageSpending:  engine.Cents(summary.AverageSpending),
		TopSpenderID:     summary.TopSpenderID,
		TopSpenderName:   names[summary.TopSpenderID],
		TopSpenderAmount: engine.Cents(summary.TopSpenderAmount),
	}
	for id, amount := range summary.MemberSpending {
		report.PerMember = append(report.PerMember, MemberSpend{
			MemberID:   id,
			MemberName: names[id],
			Amount:     engine.Cents(amount),
		})
	}
	sort.Slice(report.PerMember, func(i, j int) bool {
		if !report.PerMember[i].Amount.Equal(report.PerMember[j].Amount) {
			return report.PerMember[i].Amount.GreaterThan(report.PerMember[j].Amount)
		}
		return report.PerMember[i].MemberID < report.PerMember[j].MemberID
	})

	return report, nil
}
