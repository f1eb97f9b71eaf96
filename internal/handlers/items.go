package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/service"
)

type itemRequest struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price"`
	OwnerIDs []string        `json:"owner_ids" validate:"required,min=1"`
}

func (req *itemRequest) toInput() (service.ItemInput, error) {
	if req.Price.IsNegative() {
		return service.ItemInput{}, errors.New("price must not be negative")
	}
	return service.ItemInput{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
		OwnerIDs: req.OwnerIDs,
	}, nil
}

type itemResponse struct {
	ID       string          `json:"id"`
	TripID   string          `json:"trip_id"`
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	OwnerIDs []string        `json:"owner_ids"`
}

func newItemResponse(item *models.Item) itemResponse {
	return itemResponse{
		ID:       item.ID,
		TripID:   item.TripID,
		Name:     item.Name,
		Category: item.Category,
		Quantity: item.Quantity,
		Price:    item.Price,
		OwnerIDs: item.OwnerIDs,
	}
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := s.decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	item, err := s.items.CreateItem(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemResponse(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := s.decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	item, err := s.items.UpdateItem(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.items.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1"`
}

func (s *Server) handleBulkDeleteItems(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := s.decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	if err := s.items.BulkDeleteItems(r.Context(), req.ItemIDs); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.ListItems(r.Context(), r.PathValue("id"), r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]itemResponse, len(items))
	for i, item := range items {
		resp[i] = newItemResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}
