// Package memory provides an in-memory ledger repository, used as the
// default development backend and as fixture storage in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type Store struct {
	mu sync.Mutex

	expenses   map[int64]core.Expense
	categories map[int64]core.Category
	budgets    map[int64]core.Budget
	goals      map[int64]core.SavingsGoal

	nextExpenseID int64
	nextCategory  int64
	nextBudgetID  int64
	nextGoalID    int64
}

var _ ledger.Repository = (*Store)(nil)

// New returns an empty store seeded with the system-default categories.
func New() *Store {
	s := &Store{
		expenses:      make(map[int64]core.Expense),
		categories:    make(map[int64]core.Category),
		budgets:       make(map[int64]core.Budget),
		goals:         make(map[int64]core.SavingsGoal),
		nextExpenseID: 1,
		nextCategory:  1,
		nextBudgetID:  1,
		nextGoalID:    1,
	}
	s.seedDefaultCategories()
	return s
}

func (s *Store) seedDefaultCategories() {
	defaults := []core.Category{
		{Name: "Food & Drinks", Icon: "🍕", Color: "#F44336"},
		{Name: "Transportation", Icon: "🚗", Color: "#2196F3"},
		{Name: "Shopping", Icon: "🛍️", Color: "#4CAF50"},
		{Name: "Entertainment", Icon: "🎬", Color: "#9C27B0"},
		{Name: "Health & Medical", Icon: "🏥", Color: "#FF9800"},
		{Name: "Utilities", Icon: "💡", Color: "#607D8B"},
		{Name: "Travel", Icon: "✈️", Color: "#FF5722"},
		{Name: "Education", Icon: "📚", Color: "#3F51B5"},
	}
	for _, c := range defaults {
		c.ID = s.nextCategory
		s.nextCategory++
		s.categories[c.ID] = c
	}
}

func (s *Store) Close() error { return nil }

// ListExpenses returns the owner's expenses, newest first.
func (s *Store) ListExpenses(_ context.Context, ownerID int64, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListExpensesByDateRange(_ context.Context, ownerID int64, start, end time.Time) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextExpenseID
	s.nextExpenseID++
	e.CreatedAt = time.Now().UTC()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.expenses[e.ID]
	if !ok || existing.OwnerID != e.OwnerID {
		return core.Expense{}, ledger.ErrNotFound
	}
	e.CreatedAt = existing.CreatedAt
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return ledger.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// ListCategories returns system defaults plus the owner's own, by id.
func (s *Store) ListCategories(_ context.Context, ownerID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Category
	for _, c := range s.categories {
		if c.VisibleTo(ownerID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextCategory
	s.nextCategory++
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.categories[c.ID]
	if !ok {
		return core.Category{}, ledger.ErrNotFound
	}
	// System defaults and other owners' categories are not updatable
	// through an owner's request; stored ownership never changes.
	if stored.OwnerID == nil || c.OwnerID == nil || *stored.OwnerID != *c.OwnerID {
		return core.Category{}, ledger.ErrNotFound
	}
	stored.Name = c.Name
	stored.Icon = c.Icon
	stored.Color = c.Color
	s.categories[c.ID] = stored
	return stored, nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return ledger.ErrNotFound
	}
	// System defaults cannot be deleted through an owner's request.
	if c.OwnerID == nil || *c.OwnerID != ownerID {
		return ledger.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// ListBudgets returns the owner's budgets in insertion order.
func (s *Store) ListBudgets(_ context.Context, ownerID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.nextBudgetID
	s.nextBudgetID++
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.budgets[b.ID]
	if !ok || existing.OwnerID != b.OwnerID {
		return core.Budget{}, ledger.ErrNotFound
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return ledger.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListSavingsGoals(_ context.Context, ownerID int64) ([]core.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.SavingsGoal
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateSavingsGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.nextGoalID
	s.nextGoalID++
	g.CreatedAt = time.Now().UTC()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) UpdateSavingsGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.goals[g.ID]
	if !ok || existing.OwnerID != g.OwnerID {
		return core.SavingsGoal{}, ledger.ErrNotFound
	}
	g.CreatedAt = existing.CreatedAt
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) DeleteSavingsGoal(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return ledger.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}
