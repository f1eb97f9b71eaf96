package handlers

import (
	"net/http"

	"github.com/MonyVannn/Grocy/internal/models"
)

type addMemberRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin member"`
}

type editMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin member"`
}

type memberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

func newMemberResponse(m *models.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
	}
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := s.decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	member, err := s.members.AddMember(r.Context(), req.Name, req.Email, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMemberResponse(member))
}

func (s *Server) handleEditMember(w http.ResponseWriter, r *http.Request) {
	var req editMemberRequest
	if err := s.decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	member, err := s.members.EditMember(r.Context(), r.PathValue("id"), req.Name, req.Email, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberResponse(member))
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.members.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.members.ListMembers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]memberResponse, len(members))
	for i, m := range members {
		resp[i] = newMemberResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}
