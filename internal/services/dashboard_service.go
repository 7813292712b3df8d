package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

// DashboardService assembles the current-month DashboardStats snapshot.
// The four repository reads are mutually read-only and touch disjoint
// record sets, so they run concurrently; the snapshot either composes
// fully or the call fails.
type DashboardService struct {
	expenses      ledger.ExpenseStore
	categories    ledger.CategoryStore
	budgets       ledger.BudgetStore
	goals         ledger.SavingsGoalStore
	defaultBudget decimal.Decimal
}

// NewDashboardService wires the summarizer. defaultBudget is the
// baseline used when the owner has no overall budget configured.
func NewDashboardService(repo ledger.Repository, defaultBudget decimal.Decimal) *DashboardService {
	return &DashboardService{
		expenses:      repo,
		categories:    repo,
		budgets:       repo,
		goals:         repo,
		defaultBudget: defaultBudget,
	}
}

// Stats computes the owner's dashboard snapshot for the month containing
// now. No state is retained between calls.
func (s *DashboardService) Stats(ctx context.Context, ownerID int64) (core.DashboardStats, error) {
	return s.statsAt(ctx, ownerID, time.Now().UTC())
}

func (s *DashboardService) statsAt(ctx context.Context, ownerID int64, now time.Time) (core.DashboardStats, error) {
	if ownerID <= 0 {
		return core.DashboardStats{}, core.ErrInvalidOwner
	}

	year, month := now.Year(), int(now.Month())
	start, end, err := core.MonthWindow(year, month)
	if err != nil {
		return core.DashboardStats{}, err
	}

	var (
		monthExpenses []core.Expense
		budgets       []core.Budget
		categories    []core.Category
		goals         []core.SavingsGoal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthExpenses, err = s.expenses.ListExpensesByDateRange(gctx, ownerID, start, end)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = s.goals.ListSavingsGoals(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list savings goals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.DashboardStats{}, err
	}

	monthlyTotal, err := core.MonthlyTotal(monthExpenses, ownerID, year, month)
	if err != nil {
		return core.DashboardStats{}, err
	}

	// First overall budget in retrieval order wins; the schema does not
	// enforce at-most-one, so the tie-break stays deterministic here.
	budgetAmount := s.defaultBudget
	for _, b := range budgets {
		if b.IsOverall {
			budgetAmount = b.Amount
			break
		}
	}

	// An unset current amount counts as zero, never as an error.
	savings := decimal.Zero
	for _, goal := range goals {
		if goal.CurrentAmount.Valid {
			savings = savings.Add(goal.CurrentAmount.Decimal)
		}
	}

	stats := core.DashboardStats{
		MonthlyTotal:    monthlyTotal,
		BudgetAmount:    budgetAmount,
		BudgetRemaining: budgetAmount.Sub(monthlyTotal), // negative means overspend, preserved
		CategoriesCount: len(categories),
		SavingsProgress: savings,
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentDashboard).DebugContext(ctx,
		"Dashboard stats computed", applog.NewFields().
			WithOperation(applog.OpRead).
			WithOwner(ownerID).
			WithMonth(year, month).
			ToSlice()...)

	return stats, nil
}
