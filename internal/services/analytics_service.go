// Package services binds the pure aggregation engine to the ledger
// repository and composes the dashboard snapshot.
package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
)

// AnalyticsService answers the analytics queries by fetching the needed
// window from the repository and delegating to the pure functions in
// core. It holds no state between calls.
type AnalyticsService struct {
	expenses   ledger.ExpenseStore
	categories ledger.CategoryStore
	mode       core.CategoryResolution
}

func NewAnalyticsService(expenses ledger.ExpenseStore, categories ledger.CategoryStore, mode core.CategoryResolution) *AnalyticsService {
	return &AnalyticsService{
		expenses:   expenses,
		categories: categories,
		mode:       mode,
	}
}

// MonthlyTotal returns the owner's expense total for the given calendar
// month.
func (s *AnalyticsService) MonthlyTotal(ctx context.Context, ownerID int64, year, month int) (total core.TrendPoint, err error) {
	start, end, err := core.MonthWindow(year, month)
	if err != nil {
		return core.TrendPoint{}, err
	}
	if ownerID <= 0 {
		return core.TrendPoint{}, core.ErrInvalidOwner
	}
	records, err := s.expenses.ListExpensesByDateRange(ctx, ownerID, start, end)
	if err != nil {
		return core.TrendPoint{}, fmt.Errorf("list expenses: %w", err)
	}
	sum, err := core.MonthlyTotal(records, ownerID, year, month)
	if err != nil {
		return core.TrendPoint{}, err
	}
	return core.TrendPoint{Month: start.Format("Jan"), Total: sum}, nil
}

// CategoryTotals returns the per-category breakdown for the inclusive
// [start, end] window.
func (s *AnalyticsService) CategoryTotals(ctx context.Context, ownerID int64, start, end time.Time) ([]core.CategoryTotal, error) {
	if ownerID <= 0 {
		return nil, core.ErrInvalidOwner
	}
	if end.Before(start) {
		return nil, core.ErrInvalidDateRange
	}

	records, err := s.expenses.ListExpensesByDateRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	cats, err := s.categories.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return core.CategoryTotals(records, cats, ownerID, start, end, s.mode)
}

// MonthlyTrends returns monthsBack points ending with the current
// calendar month. A single ranged fetch covers every requested month.
func (s *AnalyticsService) MonthlyTrends(ctx context.Context, ownerID int64, monthsBack int) ([]core.TrendPoint, error) {
	return s.monthlyTrendsAt(ctx, ownerID, monthsBack, time.Now().UTC())
}

func (s *AnalyticsService) monthlyTrendsAt(ctx context.Context, ownerID int64, monthsBack int, asOf time.Time) ([]core.TrendPoint, error) {
	if ownerID <= 0 {
		return nil, core.ErrInvalidOwner
	}
	if monthsBack <= 0 {
		return nil, core.ErrInvalidMonthsBack
	}

	oldest := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthsBack - 1), 0)
	_, end, err := core.MonthWindow(asOf.Year(), int(asOf.Month()))
	if err != nil {
		return nil, err
	}

	records, err := s.expenses.ListExpensesByDateRange(ctx, ownerID, oldest, end)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	applog.FromContext(ctx).WithComponent(applog.ComponentAnalytics).DebugContext(ctx,
		"Trend window fetched", applog.NewFields().
			WithOperation(applog.OpList).
			WithOwner(ownerID).
			WithMonths(monthsBack).
			ToSlice()...)
	return core.MonthlyTrends(records, ownerID, monthsBack, asOf)
}
