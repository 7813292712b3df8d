// Package ledger defines the read/write contracts the analytics layer
// consumes. Storage backends are external collaborators; the core never
// reaches for ambient state, every operation receives its repository
// explicitly.
package ledger

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

// ErrNotFound is returned by update and delete operations when no
// record matches the given id.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters. All reads are owner-scoped; stores never
// return another owner's records (system-default categories excepted).
type (
	ExpenseStore interface {
		// ListExpenses returns the owner's expenses, newest first.
		// limit <= 0 means no limit.
		ListExpenses(ctx context.Context, ownerID int64, limit int) ([]core.Expense, error)
		// ListExpensesByDateRange returns the owner's expenses with
		// dates inside the inclusive [start, end] window.
		ListExpensesByDateRange(ctx context.Context, ownerID int64, start, end time.Time) ([]core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, ownerID, id int64) error
	}

	CategoryStore interface {
		// ListCategories returns system-default categories plus the
		// owner's own.
		ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, ownerID, id int64) error
	}

	BudgetStore interface {
		// ListBudgets returns the owner's budgets in insertion order.
		// The dashboard relies on that order when picking the overall
		// baseline.
		ListBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, ownerID, id int64) error
	}

	SavingsGoalStore interface {
		ListSavingsGoals(ctx context.Context, ownerID int64) ([]core.SavingsGoal, error)
		CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
		UpdateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
		DeleteSavingsGoal(ctx context.Context, ownerID, id int64) error
	}

	// Repository bundles every store a full backend provides.
	Repository interface {
		ExpenseStore
		CategoryStore
		BudgetStore
		SavingsGoalStore
		Close() error
	}
)
