package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/service"
)

type createTripRequest struct {
	Date          int64  `json:"date" validate:"required"`
	PayerMemberID string `json:"payer_member_id"`
	Note          string `json:"note"`
}

type tripResponse struct {
	ID            string          `json:"id"`
	Date          int64           `json:"date"`
	PayerMemberID string          `json:"payer_member_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	TotalItems    int             `json:"total_items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IsSettled     bool            `json:"is_settled"`
	CreatedAt     int64           `json:"created_at"`
	UpdatedAt     int64           `json:"updated_at"`
}

func newTripResponse(t *models.Trip) tripResponse {
	return tripResponse{
		ID:            t.ID,
		Date:          t.Date,
		PayerMemberID: t.PayerMemberID,
		Note:          t.Note,
		TotalItems:    t.TotalItems,
		TotalAmount:   t.TotalAmount,
		IsSettled:     t.IsSettled,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := s.decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	trip, err := s.trips.CreateTrip(r.Context(), service.TripInput{
		Date:          req.Date,
		PayerMemberID: req.PayerMemberID,
		Note:          req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTripResponse(trip))
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.GetTrip(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTripResponse(trip))
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ListTrips(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]tripResponse, len(trips))
	for i, trip := range trips {
		resp[i] = newTripResponse(trip)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.trips.DeleteTrip(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
