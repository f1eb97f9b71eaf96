package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/auth"
	"github.com/MonyVannn/Grocy/internal/service"
	"github.com/MonyVannn/Grocy/internal/storage/sqlite"
)

// newTestServer spins up the full HTTP stack against a temp SQLite
// database and returns a client helper bound to it.
func newTestServer(t *testing.T) *testClient {
	t.Helper()

	rate := decimal.RequireFromString("0.1")
	store, err := sqlite.New(filepath.Join(t.TempDir(), "grocy.db"), rate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-for-handler-tests", time.Hour)
	server := NewServer(
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		service.NewTripService(store),
		service.NewItemService(store, rate),
		service.NewExpenseService(store, rate),
		service.NewSettlementService(store),
		service.NewMemberService(store),
		service.NewReportService(store, rate),
		jwtManager,
	)

	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)

	return &testClient{t: t, baseURL: ts.URL}
}

type testClient struct {
	t       *testing.T
	baseURL string
	token   string
}

// do sends a JSON request and decodes the JSON response into out (when
// out is non-nil), failing the test unless the status matches.
func (c *testClient) do(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		c.t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		c.t.Fatalf("%s %s: expected status %d, got %d (%s)", method, path, wantStatus, resp.StatusCode, e.Error)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("failed to decode response: %v", err)
		}
	}
}

func (c *testClient) register(email string) {
	c.t.Helper()
	var resp authResponse
	c.do("POST", "/api/auth/register", map[string]string{
		"email":        email,
		"display_name": "Test User",
		"password":     "password123",
	}, http.StatusCreated, &resp)
	c.token = resp.Token
}

func (c *testClient) addMember(name string) memberResponse {
	c.t.Helper()
	var resp memberResponse
	c.do("POST", "/api/members", map[string]string{"name": name}, http.StatusCreated, &resp)
	return resp
}

func TestAPIEndToEnd(t *testing.T) {
	c := newTestServer(t)

	// Unauthenticated requests are refused before reaching a handler.
	c.do("GET", "/api/trips", nil, http.StatusUnauthorized, nil)

	c.register("dad@example.com")
	alice := c.addMember("Alice")
	bob := c.addMember("Bob")

	var trip tripResponse
	c.do("POST", "/api/trips", map[string]any{
		"date":            time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC).Unix(),
		"payer_member_id": alice.ID,
		"note":            "weekly run",
	}, http.StatusCreated, &trip)

	var milk itemResponse
	c.do("POST", fmt.Sprintf("/api/trips/%s/items", trip.ID), map[string]any{
		"name":      "Milk",
		"category":  "Dairy",
		"quantity":  2,
		"price":     "10",
		"owner_ids": []string{alice.ID, bob.ID},
	}, http.StatusCreated, &milk)
	c.do("POST", fmt.Sprintf("/api/trips/%s/items", trip.ID), map[string]any{
		"name":      "Beer",
		"quantity":  1,
		"price":     "5",
		"owner_ids": []string{bob.ID},
	}, http.StatusCreated, nil)

	t.Run("trip totals track the item-price sum", func(t *testing.T) {
		var got tripResponse
		c.do("GET", "/api/trips/"+trip.ID, nil, http.StatusOK, &got)
		if got.TotalItems != 2 {
			t.Errorf("expected 2 items, got %d", got.TotalItems)
		}
		if !got.TotalAmount.Equal(decimal.RequireFromString("15")) {
			t.Errorf("expected pre-tax total 15, got %s", got.TotalAmount)
		}
	})

	t.Run("expense sheet includes contributions and member state", func(t *testing.T) {
		var sheet expenseSheetResponse
		c.do("GET", fmt.Sprintf("/api/trips/%s/sheet", trip.ID), nil, http.StatusOK, &sheet)
		if len(sheet.Rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
		}
		if !sheet.Totals.Contributions[bob.ID].Equal(decimal.RequireFromString("11")) {
			t.Errorf("expected bob owes 11, got %s", sheet.Totals.Contributions[bob.ID])
		}
		if len(sheet.Members) != 2 {
			t.Errorf("expected 2 member columns, got %d", len(sheet.Members))
		}
	})

	t.Run("payments settle members and then the trip", func(t *testing.T) {
		var paid markPaidResponse
		c.do("POST", fmt.Sprintf("/api/trips/%s/payments", trip.ID), map[string]any{
			"member_id": bob.ID,
			"paid":      true,
			"note":      "venmo",
		}, http.StatusOK, &paid)
		if paid.SplitsUpdated != 2 {
			t.Errorf("expected 2 splits updated, got %d", paid.SplitsUpdated)
		}

		var settled settlementResponse
		c.do("GET", fmt.Sprintf("/api/trips/%s/settlement?member=%s", trip.ID, bob.ID), nil, http.StatusOK, &settled)
		if !settled.Settled {
			t.Error("expected bob settled")
		}

		c.do("POST", fmt.Sprintf("/api/trips/%s/payments", trip.ID), map[string]any{
			"member_id": alice.ID,
			"paid":      true,
		}, http.StatusOK, nil)

		var got tripResponse
		c.do("GET", "/api/trips/"+trip.ID, nil, http.StatusOK, &got)
		if !got.IsSettled {
			t.Error("expected trip settled after everyone paid")
		}
	})

	t.Run("monthly report aggregates the month", func(t *testing.T) {
		var report monthlyReportResponse
		c.do("GET", "/api/reports/monthly?year=2025&month=3", nil, http.StatusOK, &report)
		if !report.TotalSpending.Equal(decimal.RequireFromString("16.5")) {
			t.Errorf("expected total spending 16.5, got %s", report.TotalSpending)
		}
		if report.TopSpenderID != bob.ID {
			t.Errorf("expected top spender bob, got %s", report.TopSpenderName)
		}
	})

	t.Run("validation failures are 400s", func(t *testing.T) {
		c.do("POST", fmt.Sprintf("/api/trips/%s/items", trip.ID), map[string]any{
			"name":      "Ghost item",
			"price":     "3",
			"owner_ids": []string{},
		}, http.StatusBadRequest, nil)
	})

	t.Run("foreign records are hidden", func(t *testing.T) {
		other := &testClient{t: t, baseURL: c.baseURL}
		other.register("guest@example.com")
		other.do("GET", "/api/trips/"+trip.ID, nil, http.StatusForbidden, nil)
		other.do("DELETE", "/api/items/"+milk.ID, nil, http.StatusForbidden, nil)
	})

	t.Run("update regenerates splits", func(t *testing.T) {
		c.do("PUT", "/api/items/"+milk.ID, map[string]any{
			"name":      "Milk",
			"quantity":  1,
			"price":     "8",
			"owner_ids": []string{bob.ID},
		}, http.StatusOK, nil)

		var got tripResponse
		c.do("GET", "/api/trips/"+trip.ID, nil, http.StatusOK, &got)
		if !got.TotalAmount.Equal(decimal.RequireFromString("13")) {
			t.Errorf("expected pre-tax total 13 after update, got %s", got.TotalAmount)
		}
	})

	t.Run("bulk delete empties the trip", func(t *testing.T) {
		var items []itemResponse
		c.do("GET", fmt.Sprintf("/api/trips/%s/items", trip.ID), nil, http.StatusOK, &items)
		ids := make([]string, len(items))
		for i, item := range items {
			ids[i] = item.ID
		}

		c.do("POST", "/api/items/bulk-delete", map[string]any{"item_ids": ids}, http.StatusNoContent, nil)

		var got tripResponse
		c.do("GET", "/api/trips/"+trip.ID, nil, http.StatusOK, &got)
		if got.TotalItems != 0 {
			t.Errorf("expected empty trip, got %d items", got.TotalItems)
		}
	})
}

func TestHealthz(t *testing.T) {
	c := newTestServer(t)
	c.do("GET", "/healthz", nil, http.StatusOK, nil)
}
