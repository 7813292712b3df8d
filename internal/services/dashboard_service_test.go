package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
	applog "fintrack/internal/log"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedExpense(t *testing.T, store *memory.Store, owner int64, amount string, date time.Time) {
	t.Helper()
	_, err := store.CreateExpense(context.Background(), core.Expense{
		OwnerID:     owner,
		CategoryID:  1,
		Amount:      dec(amount),
		Description: "seed",
		PaymentMode: "card",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}
}

func TestStatsWithOverallBudget(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	seedExpense(t, store, 1, "4200", now)
	if _, err := store.CreateBudget(ctx, core.Budget{
		OwnerID: 1, Amount: dec("5000"), Period: core.Monthly, IsOverall: true,
	}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}

	svc := NewDashboardService(store, dec("5000"))
	stats, err := svc.statsAt(ctx, 1, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if !stats.MonthlyTotal.Equal(dec("4200")) {
		t.Fatalf("monthly total = %s, want 4200", stats.MonthlyTotal)
	}
	if !stats.BudgetAmount.Equal(dec("5000")) {
		t.Fatalf("budget amount = %s, want 5000", stats.BudgetAmount)
	}
	if !stats.BudgetRemaining.Equal(dec("800")) {
		t.Fatalf("budget remaining = %s, want 800", stats.BudgetRemaining)
	}
	if stats.CategoriesCount != 8 {
		t.Fatalf("categories count = %d, want 8 defaults", stats.CategoriesCount)
	}
}

func TestStatsFallsBackToDefaultBudget(t *testing.T) {
	store := memory.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	seedExpense(t, store, 1, "5300", now)

	svc := NewDashboardService(store, dec("5000"))
	stats, err := svc.statsAt(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if !stats.BudgetAmount.Equal(dec("5000")) {
		t.Fatalf("budget amount = %s, want configured default 5000", stats.BudgetAmount)
	}
	// Overspend stays negative, never clamped.
	if !stats.BudgetRemaining.Equal(dec("-300")) {
		t.Fatalf("budget remaining = %s, want -300", stats.BudgetRemaining)
	}
}

func TestStatsPicksFirstOverallBudget(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	for _, amount := range []string{"3000", "7000"} {
		if _, err := store.CreateBudget(ctx, core.Budget{
			OwnerID: 1, Amount: dec(amount), Period: core.Monthly, IsOverall: true,
		}); err != nil {
			t.Fatalf("seed budget: %v", err)
		}
	}

	svc := NewDashboardService(store, dec("5000"))
	stats, err := svc.statsAt(ctx, 1, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.BudgetAmount.Equal(dec("3000")) {
		t.Fatalf("budget amount = %s, want first overall budget 3000", stats.BudgetAmount)
	}
}

func TestStatsSavingsProgressTreatsUnsetAsZero(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	if _, err := store.CreateSavingsGoal(ctx, core.SavingsGoal{
		OwnerID:       1,
		Name:          "vacation",
		TargetAmount:  dec("1000"),
		CurrentAmount: decimal.NullDecimal{Decimal: dec("250.00"), Valid: true},
	}); err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	if _, err := store.CreateSavingsGoal(ctx, core.SavingsGoal{
		OwnerID:      1,
		Name:         "emergency fund",
		TargetAmount: dec("5000"),
	}); err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	svc := NewDashboardService(store, dec("5000"))
	stats, err := svc.statsAt(ctx, 1, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.SavingsProgress.Equal(dec("250.00")) {
		t.Fatalf("savings progress = %s, want 250.00", stats.SavingsProgress)
	}
}

func TestStatsScopedToOwner(t *testing.T) {
	store := memory.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	seedExpense(t, store, 1, "100", now)
	seedExpense(t, store, 2, "900", now)

	svc := NewDashboardService(store, dec("5000"))
	stats, err := svc.statsAt(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.MonthlyTotal.Equal(dec("100")) {
		t.Fatalf("monthly total = %s, want 100", stats.MonthlyTotal)
	}
}

// failingBudgets makes any budget read fail, simulating an unavailable
// collaborator.
type failingBudgets struct {
	*memory.Store
}

var errDown = errors.New("backend down")

func (f failingBudgets) ListBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	return nil, errDown
}

func TestStatsFailsAtomically(t *testing.T) {
	store := memory.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	seedExpense(t, store, 1, "100", now)

	svc := NewDashboardService(failingBudgets{store}, dec("5000"))
	_, err := svc.statsAt(context.Background(), 1, now)
	if !errors.Is(err, errDown) {
		t.Fatalf("got %v, want wrapped collaborator error", err)
	}
}

func TestStatsRejectsInvalidOwner(t *testing.T) {
	svc := NewDashboardService(memory.New(), dec("5000"))
	if _, err := svc.Stats(context.Background(), 0); !errors.Is(err, core.ErrInvalidOwner) {
		t.Fatalf("got %v, want ErrInvalidOwner", err)
	}
}

func TestStatsLogsThroughComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{
		Level:   slog.LevelDebug,
		Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	ctx := context.WithValue(context.Background(), applog.LoggerContextKey, logger)

	svc := NewDashboardService(memory.New(), dec("5000"))
	if _, err := svc.Stats(ctx, 1); err != nil {
		t.Fatalf("stats: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Dashboard stats computed",
		applog.FieldComponent + "=" + applog.ComponentDashboard,
		applog.FieldOwnerID + "=1",
		applog.FieldYear + "=",
		applog.FieldMonth + "=",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
