// Package handlers exposes Grocy's JSON HTTP API. Handlers decode and
// validate the request, call one service operation, and translate
// service errors to HTTP status codes; no business logic lives here.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MonyVannn/Grocy/internal/auth"
	"github.com/MonyVannn/Grocy/internal/engine"
	"github.com/MonyVannn/Grocy/internal/middleware"
	"github.com/MonyVannn/Grocy/internal/service"
	"github.com/MonyVannn/Grocy/internal/storage"
)

// Server holds the services the HTTP handlers delegate to.
type Server struct {
	auth       *service.AuthService
	trips      *service.TripService
	items      *service.ItemService
	expenses   *service.ExpenseService
	settlement *service.SettlementService
	members    *service.MemberService
	reports    *service.ReportService

	jwtManager *auth.JWTManager
	validate   *validator.Validate
}

// NewServer creates a Server wired to the given services.
func NewServer(
	authService *service.AuthService,
	trips *service.TripService,
	items *service.ItemService,
	expenses *service.ExpenseService,
	settlement *service.SettlementService,
	members *service.MemberService,
	reports *service.ReportService,
	jwtManager *auth.JWTManager,
) *Server {
	return &Server{
		auth:       authService,
		trips:      trips,
		items:      items,
		expenses:   expenses,
		settlement: settlement,
		members:    members,
		reports:    reports,
		jwtManager: jwtManager,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes builds the full route table. Auth endpoints, health and
// metrics are public; everything else under /api/ requires a Bearer
// token.
func (s *Server) Routes() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("GET /api/trips", s.handleListTrips)
	api.HandleFunc("POST /api/trips", s.handleCreateTrip)
	api.HandleFunc("GET /api/trips/{id}", s.handleGetTrip)
	api.HandleFunc("DELETE /api/trips/{id}", s.handleDeleteTrip)

	api.HandleFunc("GET /api/trips/{id}/items", s.handleListItems)
	api.HandleFunc("POST /api/trips/{id}/items", s.handleCreateItem)
	api.HandleFunc("PUT /api/items/{id}", s.handleUpdateItem)
	api.HandleFunc("DELETE /api/items/{id}", s.handleDeleteItem)
	api.HandleFunc("POST /api/items/bulk-delete", s.handleBulkDeleteItems)

	api.HandleFunc("GET /api/trips/{id}/sheet", s.handleGetExpenseSheet)
	api.HandleFunc("POST /api/trips/{id}/payments", s.handleMarkPaid)
	api.HandleFunc("GET /api/trips/{id}/settlement", s.handleIsSettled)

	api.HandleFunc("GET /api/members", s.handleListMembers)
	api.HandleFunc("POST /api/members", s.handleAddMember)
	api.HandleFunc("PUT /api/members/{id}", s.handleEditMember)
	api.HandleFunc("DELETE /api/members/{id}", s.handleDeleteMember)

	api.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)

	root := http.NewServeMux()
	root.HandleFunc("POST /api/auth/register", s.handleRegister)
	root.HandleFunc("POST /api/auth/login", s.handleLogin)
	root.Handle("/api/", middleware.RequireAuth(s.jwtManager)(api))
	root.Handle("GET /metrics", promhttp.Handler())
	root.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return root
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// decode unmarshals the request body into v and runs struct validation.
func (s *Server) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return s.validate.Struct(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func statusFromError(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMemberExists),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, storage.ErrMemberHasUnpaidSplits):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidSplit),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, auth.ErrWeakPassword),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
