package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type memberSpendResponse struct {
	MemberID string          `json:"member_id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

type monthlyReportResponse struct {
	Year             int                   `json:"year"`
	Month            int                   `json:"month"`
	TotalSpending    decimal.Decimal       `json:"total_spending"`
	AverageSpending  decimal.Decimal       `json:"average_spending"`
	TopSpenderID     string                `json:"top_spender_id,omitempty"`
	TopSpenderName   string                `json:"top_spender_name,omitempty"`
	TopSpenderAmount decimal.Decimal       `json:"top_spender_amount"`
	PerMember        []memberSpendResponse `json:"per_member"`
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1970 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "year query parameter is required"})
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "month query parameter must be 1-12"})
		return
	}

	report, err := s.reports.GetMonthlySummary(r.Context(), year, time.Month(month))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := monthlyReportResponse{
		Year:             report.Year,
		Month:            int(report.Month),
		TotalSpending:    report.TotalSpending,
		AverageSpending:  report.AverageSpending,
		TopSpenderID:     report.TopSpenderID,
		TopSpenderName:   report.TopSpenderName,
		TopSpenderAmount: report.TopSpenderAmount,
		PerMember:        make([]memberSpendResponse, len(report.PerMember)),
	}
	for i, m := range report.PerMember {
		resp.PerMember[i] = memberSpendResponse{MemberID: m.MemberID, Name: m.MemberName, Amount: m.Amount}
	}

	writeJSON(w, http.StatusOK, resp)
}
