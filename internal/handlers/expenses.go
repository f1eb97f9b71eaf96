package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type sheetRowResponse struct {
	ItemID        string                     `json:"item_id"`
	Name          string                     `json:"name"`
	Category      string                     `json:"category,omitempty"`
	Quantity      int                        `json:"quantity"`
	Price         decimal.Decimal            `json:"price"`
	Tax           decimal.Decimal            `json:"tax"`
	TotalDue      decimal.Decimal            `json:"total_due"`
	Contributions map[string]decimal.Decimal `json:"contributions"`
}

type sheetTotalsResponse struct {
	TotalPrice    decimal.Decimal            `json:"total_price"`
	TotalTax      decimal.Decimal            `json:"total_tax"`
	TotalDue      decimal.Decimal            `json:"total_due"`
	Contributions map[string]decimal.Decimal `json:"contributions"`
}

type sheetMemberResponse struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Paid     bool   `json:"paid"`
}

type expenseSheetResponse struct {
	Trip    tripResponse          `json:"trip"`
	Rows    []sheetRowResponse    `json:"rows"`
	Totals  sheetTotalsResponse   `json:"totals"`
	Members []sheetMemberResponse `json:"members"`
}

func (s *Server) handleGetExpenseSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.expenses.GetExpenseSheet(r.Context(), r.PathValue("id"), r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := expenseSheetResponse{
		Trip: newTripResponse(sheet.Trip),
		Rows: make([]sheetRowResponse, len(sheet.Sheet.Rows)),
		Totals: sheetTotalsResponse{
			TotalPrice:    sheet.Sheet.Totals.TotalPrice,
			TotalTax:      sheet.Sheet.Totals.TotalTax,
			TotalDue:      sheet.Sheet.Totals.TotalDue,
			Contributions: sheet.Sheet.Totals.Contributions,
		},
		Members: make([]sheetMemberResponse, len(sheet.Members)),
	}
	for i, row := range sheet.Sheet.Rows {
		resp.Rows[i] = sheetRowResponse{
			ItemID:        row.ItemID,
			Name:          row.Name,
			Category:      row.Category,
			Quantity:      row.Quantity,
			Price:         row.Price,
			Tax:           row.Tax,
			TotalDue:      row.TotalDue,
			Contributions: row.Contributions,
		}
	}
	for i, m := range sheet.Members {
		resp.Members[i] = sheetMemberResponse{
			MemberID: m.Member.ID,
			Name:     m.Member.Name,
			Paid:     m.Paid,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type markPaidRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Paid     *bool  `json:"paid" validate:"required"`
	Note     string `json:"note"`
}

type markPaidResponse struct {
	SplitsUpdated int `json:"splits_updated"`
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if err := s.decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	n, err := s.settlement.MarkPaid(r.Context(), r.PathValue("id"), req.MemberID, *req.Paid, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markPaidResponse{SplitsUpdated: n})
}

type settlementResponse struct {
	MemberID string `json:"member_id"`
	Settled  bool   `json:"settled"`
}

func (s *Server) handleIsSettled(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("member")
	if memberID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "member query parameter is required"})
		return
	}

	settled, err := s.settlement.IsSettled(r.Context(), r.PathValue("id"), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{MemberID: memberID, Settled: settled})
}
