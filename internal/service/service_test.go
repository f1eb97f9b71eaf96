package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MonyVannn/Grocy/internal/auth"
	"github.com/MonyVannn/Grocy/internal/middleware"
	"github.com/MonyVannn/Grocy/internal/models"
	"github.com/MonyVannn/Grocy/internal/storage"
	"github.com/MonyVannn/Grocy/internal/storage/sqlite"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// testEnv wires every service against a real SQLite store in a temp
// directory, with one registered user and two household members.
type testEnv struct {
	store storage.Store
	ctx   context.Context

	auth       *AuthService
	trips      *TripService
	items      *ItemService
	expenses   *ExpenseService
	settlement *SettlementService
	members    *MemberService
	reports    *ReportService

	user  *models.User
	alice *models.Member
	bob   *models.Member
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rate := money(t, "0.1")
	store, err := sqlite.New(filepath.Join(t.TempDir(), "grocy.db"), rate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret-key-for-service-tests", time.Hour)
	env := &testEnv{
		store:      store,
		auth:       NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		trips:      NewTripService(store),
		items:      NewItemService(store, rate),
		expenses:   NewExpenseService(store, rate),
		settlement: NewSettlementService(store),
		members:    NewMemberService(store),
		reports:    NewReportService(store, rate),
	}

	user, _, err := env.auth.Register(context.Background(), "dad@example.com", "Dad", "password123")
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	env.user = user
	env.ctx = authCtx(user.ID)

	env.alice, err = env.members.AddMember(env.ctx, "Alice", "alice@example.com", "")
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
	env.bob, err = env.members.AddMember(env.ctx, "Bob", "", models.RoleAdmin)
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	return env
}

func authCtx(userID string) context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, userID)
}

// seedTrip creates a trip with milk ($10, alice+bob) and beer ($5, bob),
// the running example across the engine tests.
func (env *testEnv) seedTrip(t *testing.T) (*models.Trip, *models.Item, *models.Item) {
	t.Helper()

	trip, err := env.trips.CreateTrip(env.ctx, TripInput{
		Date:          time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC).Unix(),
		PayerMemberID: env.alice.ID,
		Note:          "weekly run",
	})
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	milk, err := env.items.CreateItem(env.ctx, trip.ID, ItemInput{
		Name:     "Milk",
		Category: "Dairy",
		Quantity: 2,
		Price:    money(t, "10"),
		OwnerIDs: []string{env.alice.ID, env.bob.ID},
	})
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	beer, err := env.items.CreateItem(env.ctx, trip.ID, ItemInput{
		Name:     "Beer",
		Category: "Drinks",
		Quantity: 1,
		Price:    money(t, "5"),
		OwnerIDs: []string{env.bob.ID},
	})
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	return trip, milk, beer
}

func TestAuthService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("register rejects weak password", func(t *testing.T) {
		_, _, err := env.auth.Register(ctx, "mom@example.com", "Mom", "short")
		if !errors.Is(err, auth.ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("register rejects duplicate email", func(t *testing.T) {
		_, _, err := env.auth.Register(ctx, "dad@example.com", "Dad Again", "password123")
		if !errors.Is(err, auth.ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("login returns a valid token", func(t *testing.T) {
		user, token, err := env.auth.Login(ctx, "Dad@Example.com", "password123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if user.ID != env.user.ID {
			t.Errorf("expected user %s, got %s", env.user.ID, user.ID)
		}
		if token == "" {
			t.Error("expected a non-empty token")
		}
	})

	t.Run("login rejects wrong password", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, "dad@example.com", "wrong-password")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestTripService(t *testing.T) {
	env := newTestEnv(t)

	t.Run("requires authentication", func(t *testing.T) {
		_, err := env.trips.ListTrips(context.Background())
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("rejects a payer from another household", func(t *testing.T) {
		other, _, err := env.auth.Register(context.Background(), "neighbor@example.com", "Neighbor", "password123")
		if err != nil {
			t.Fatalf("failed to register user: %v", err)
		}
		stranger, err := env.members.AddMember(authCtx(other.ID), "Stranger", "", "")
		if err != nil {
			t.Fatalf("failed to add member: %v", err)
		}

		_, err = env.trips.CreateTrip(env.ctx, TripInput{Date: time.Now().Unix(), PayerMemberID: stranger.ID})
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("hides trips from other users", func(t *testing.T) {
		trip, _, _ := env.seedTrip(t)

		other, _, err := env.auth.Register(context.Background(), "guest@example.com", "Guest", "password123")
		if err != nil {
			t.Fatalf("failed to register user: %v", err)
		}
		_, err = env.trips.GetTrip(authCtx(other.ID), trip.ID)
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("delete removes the trip", func(t *testing.T) {
		trip, _, _ := env.seedTrip(t)
		if err := env.trips.DeleteTrip(env.ctx, trip.ID); err != nil {
			t.Fatalf("failed to delete trip: %v", err)
		}
		_, err := env.trips.GetTrip(env.ctx, trip.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestItemService(t *testing.T) {
	env := newTestEnv(t)

	t.Run("item mutations keep trip totals current", func(t *testing.T) {
		trip, milk, beer := env.seedTrip(t)

		got, err := env.trips.GetTrip(env.ctx, trip.ID)
		if err != nil {
			t.Fatalf("failed to get trip: %v", err)
		}
		if got.TotalItems != 2 {
			t.Errorf("expected 2 items, got %d", got.TotalItems)
		}
		if !got.TotalAmount.Equal(money(t, "15")) {
			t.Errorf("expected pre-tax total 15, got %s", got.TotalAmount)
		}

		// Milk moves to bob alone and gets cheaper.
		_, err = env.items.UpdateItem(env.ctx, milk.ID, ItemInput{
			Name:     "Milk",
			Category: "Dairy",
			Quantity: 1,
			Price:    money(t, "8"),
			OwnerIDs: []string{env.bob.ID},
		})
		if err != nil {
			t.Fatalf("failed to update item: %v", err)
		}
		got, err = env.trips.GetTrip(env.ctx, trip.ID)
		if err != nil {
			t.Fatalf("failed to get trip: %v", err)
		}
		if !got.TotalAmount.Equal(money(t, "13")) {
			t.Errorf("expected pre-tax total 13 after update, got %s", got.TotalAmount)
		}

		if err := env.items.BulkDeleteItems(env.ctx, []string{milk.ID, beer.ID}); err != nil {
			t.Fatalf("failed to bulk delete: %v", err)
		}
		got, err = env.trips.GetTrip(env.ctx, trip.ID)
		if err != nil {
			t.Fatalf("failed to get trip: %v", err)
		}
		if got.TotalItems != 0 || !got.TotalAmount.Equal(decimal.Zero) {
			t.Errorf("expected empty trip, got %d items, total %s", got.TotalItems, got.TotalAmount)
		}
	})

	t.Run("rejects owners outside the household", func(t *testing.T) {
		trip, _, _ := env.seedTrip(t)
		_, err := env.items.CreateItem(env.ctx, trip.ID, ItemInput{
			Name:     "Chips",
			Price:    money(t, "3"),
			OwnerIDs: []string{"nonexistent-member"},
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown owner, got %v", err)
		}
	})

	t.Run("bulk delete refuses items from another user", func(t *testing.T) {
		_, milk, _ := env.seedTrip(t)

		other, _, err := env.auth.Register(context.Background(), "intruder@example.com", "Intruder", "password123")
		if err != nil {
			t.Fatalf("failed to register user: %v", err)
		}
		err = env.items.BulkDeleteItems(authCtx(other.ID), []string{milk.ID})
		if !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}

		// The item is untouched.
		if _, err := env.items.UpdateItem(env.ctx, milk.ID, ItemInput{
			Name:     "Milk",
			Quantity: 2,
			Price:    money(t, "10"),
			OwnerIDs: []string{env.alice.ID},
		}); err != nil {
			t.Fatalf("item should still exist: %v", err)
		}
	})

	t.Run("list sorts by the requested column", func(t *testing.T) {
		trip, _, _ := env.seedTrip(t)
		items, err := env.items.ListItems(env.ctx, trip.ID, "price")
		if err != nil {
			t.Fatalf("failed to list items: %v", err)
		}
		if len(items) != 2 || items[0].Name != "Beer" || items[1].Name != "Milk" {
			t.Errorf("expected [Beer Milk] by price, got %v", itemNames(items))
		}
	})
}

func TestExpenseSheet(t *testing.T) {
	env := newTestEnv(t)
	trip, _, _ := env.seedTrip(t)

	sheet, err := env.expenses.GetExpenseSheet(env.ctx, trip.ID, "name")
	if err != nil {
		t.Fatalf("failed to build sheet: %v", err)
	}

	if len(sheet.Sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Sheet.Rows))
	}
	if sheet.Sheet.Rows[0].Name != "Beer" || sheet.Sheet.Rows[1].Name != "Milk" {
		t.Errorf("expected rows sorted by name, got %s, %s", sheet.Sheet.Rows[0].Name, sheet.Sheet.Rows[1].Name)
	}

	milk := sheet.Sheet.Rows[1]
	if !milk.TotalDue.Equal(money(t, "11")) {
		t.Errorf("expected milk total due 11, got %s", milk.TotalDue)
	}
	if !milk.Contributions[env.alice.ID].Equal(money(t, "5.5")) {
		t.Errorf("expected alice owes 5.5 on milk, got %s", milk.Contributions[env.alice.ID])
	}

	if !sheet.Sheet.Totals.TotalDue.Equal(money(t, "16.5")) {
		t.Errorf("expected grand total 16.5, got %s", sheet.Sheet.Totals.TotalDue)
	}
	if !sheet.Sheet.Totals.Contributions[env.bob.ID].Equal(money(t, "11")) {
		t.Errorf("expected bob owes 11 overall, got %s", sheet.Sheet.Totals.Contributions[env.bob.ID])
	}

	if len(sheet.Members) != 2 {
		t.Fatalf("expected 2 member columns, got %d", len(sheet.Members))
	}
	for _, m := range sheet.Members {
		if m.Paid {
			t.Errorf("expected member %s unpaid on a fresh trip", m.Member.Name)
		}
	}

	// Bob pays; his column flips, alice's does not.
	if _, err := env.settlement.MarkPaid(env.ctx, trip.ID, env.bob.ID, true, "venmo"); err != nil {
		t.Fatalf("failed to mark paid: %v", err)
	}
	sheet, err = env.expenses.GetExpenseSheet(env.ctx, trip.ID, "name")
	if err != nil {
		t.Fatalf("failed to build sheet: %v", err)
	}
	for _, m := range sheet.Members {
		want := m.Member.ID == env.bob.ID
		if m.Paid != want {
			t.Errorf("member %s: expected paid=%v, got %v", m.Member.Name, want, m.Paid)
		}
	}
}

func TestSettlementService(t *testing.T) {
	env := newTestEnv(t)
	trip, _, _ := env.seedTrip(t)

	t.Run("mark paid covers all of the member's splits", func(t *testing.T) {
		n, err := env.settlement.MarkPaid(env.ctx, trip.ID, env.bob.ID, true, "cash")
		if err != nil {
			t.Fatalf("failed to mark paid: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 splits updated for bob, got %d", n)
		}

		settled, err := env.settlement.IsSettled(env.ctx, trip.ID, env.bob.ID)
		if err != nil {
			t.Fatalf("failed to check settlement: %v", err)
		}
		if !settled {
			t.Error("expected bob settled after paying")
		}
		settled, err = env.settlement.IsSettled(env.ctx, trip.ID, env.alice.ID)
		if err != nil {
			t.Fatalf("failed to check settlement: %v", err)
		}
		if settled {
			t.Error("expected alice still unsettled")
		}
	})

	t.Run("trip settles when the last member pays", func(t *testing.T) {
		if _, err := env.settlement.MarkPaid(env.ctx, trip.ID, env.alice.ID, true, ""); err != nil {
			t.Fatalf("failed to mark paid: %v", err)
		}
		got, err := env.trips.GetTrip(env.ctx, trip.ID)
		if err != nil {
			t.Fatalf("failed to get trip: %v", err)
		}
		if !got.IsSettled {
			t.Error("expected trip settled after everyone paid")
		}
	})

	t.Run("member with no splits is not found", func(t *testing.T) {
		ghost, err := env.members.AddMember(env.ctx, "Ghost", "", "")
		if err != nil {
			t.Fatalf("failed to add member: %v", err)
		}
		_, err = env.settlement.MarkPaid(env.ctx, trip.ID, ghost.ID, true, "")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		settled, err := env.settlement.IsSettled(env.ctx, trip.ID, ghost.ID)
		if err != nil {
			t.Fatalf("failed to check settlement: %v", err)
		}
		if settled {
			t.Error("a member with no splits has nothing settled")
		}
	})
}

func TestMemberService(t *testing.T) {
	env := newTestEnv(t)

	t.Run("rejects duplicate names case-insensitively", func(t *testing.T) {
		_, err := env.members.AddMember(env.ctx, "alice", "", "")
		if !errors.Is(err, ErrMemberExists) {
			t.Errorf("expected ErrMemberExists, got %v", err)
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := env.members.AddMember(env.ctx, "Carol", "", "superuser")
		if !errors.Is(err, ErrInvalidRole) {
			t.Errorf("expected ErrInvalidRole, got %v", err)
		}
	})

	t.Run("rename cannot collide with an existing member", func(t *testing.T) {
		_, err := env.members.EditMember(env.ctx, env.bob.ID, "Alice", "", "")
		if !errors.Is(err, ErrMemberExists) {
			t.Errorf("expected ErrMemberExists, got %v", err)
		}
	})

	t.Run("deletion is blocked while splits are unpaid", func(t *testing.T) {
		trip, _, _ := env.seedTrip(t)

		err := env.members.DeleteMember(env.ctx, env.alice.ID)
		if !errors.Is(err, storage.ErrMemberHasUnpaidSplits) {
			t.Errorf("expected ErrMemberHasUnpaidSplits, got %v", err)
		}

		if _, err := env.settlement.MarkPaid(env.ctx, trip.ID, env.alice.ID, true, ""); err != nil {
			t.Fatalf("failed to mark paid: %v", err)
		}
		if err := env.members.DeleteMember(env.ctx, env.alice.ID); err != nil {
			t.Errorf("expected deletion to succeed after settling, got %v", err)
		}
	})
}

func TestReportService(t *testing.T) {
	env := newTestEnv(t)
	env.seedTrip(t)

	// A trip in a different month must not leak into March.
	april, err := env.trips.CreateTrip(env.ctx, TripInput{
		Date: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC).Unix(),
	})
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	if _, err := env.items.CreateItem(env.ctx, april.ID, ItemInput{
		Name:     "Eggs",
		Price:    money(t, "100"),
		OwnerIDs: []string{env.alice.ID},
	}); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	report, err := env.reports.GetMonthlySummary(env.ctx, 2025, time.March)
	if err != nil {
		t.Fatalf("failed to build report: %v", err)
	}

	if !report.TotalSpending.Equal(money(t, "16.5")) {
		t.Errorf("expected total spending 16.5, got %s", report.TotalSpending)
	}
	if !report.AverageSpending.Equal(money(t, "8.25")) {
		t.Errorf("expected average spending 8.25, got %s", report.AverageSpending)
	}
	if report.TopSpenderID != env.bob.ID || report.TopSpenderName != "Bob" {
		t.Errorf("expected top spender Bob, got %s (%s)", report.TopSpenderName, report.TopSpenderID)
	}
	if !report.TopSpenderAmount.Equal(money(t, "11")) {
		t.Errorf("expected top spender amount 11, got %s", report.TopSpenderAmount)
	}

	if len(report.PerMember) != 2 {
		t.Fatalf("expected 2 per-member rows, got %d", len(report.PerMember))
	}
	if report.PerMember[0].MemberID != env.bob.ID || !report.PerMember[0].Amount.Equal(money(t, "11")) {
		t.Errorf("expected bob first with 11, got %s %s", report.PerMember[0].MemberName, report.PerMember[0].Amount)
	}
	if report.PerMember[1].MemberID != env.alice.ID || !report.PerMember[1].Amount.Equal(money(t, "5.5")) {
		t.Errorf("expected alice second with 5.5, got %s %s", report.PerMember[1].MemberName, report.PerMember[1].Amount)
	}
}

func itemNames(items []*models.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}
