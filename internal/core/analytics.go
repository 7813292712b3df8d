package core

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTrendMonths is the number of trend points produced when the
// caller does not ask for a specific count.
const DefaultTrendMonths = 6

// UnknownCategoryLabel is the label substituted for an unresolvable
// category when running with LenientCategories.
const UnknownCategoryLabel = "Unknown"

// CategoryResolution controls what happens when an expense references a
// category that cannot be resolved. Strict surfaces it as a
// data-integrity fault; lenient reproduces the legacy behavior of
// labeling the group "Unknown".
type CategoryResolution int

const (
	StrictCategories CategoryResolution = iota
	LenientCategories
)

var (
	// ErrInvalidArgument is the base for malformed-input failures. All
	// more specific argument errors wrap it, so callers can classify
	// with errors.Is.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrInvalidYear       = fmt.Errorf("%w: year must have four digits", ErrInvalidArgument)
	ErrInvalidMonth      = fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidArgument)
	ErrInvalidMonthsBack = fmt.Errorf("%w: months back must be positive", ErrInvalidArgument)
	ErrInvalidDateRange  = fmt.Errorf("%w: end date before start date", ErrInvalidArgument)
	ErrInvalidOwner      = fmt.Errorf("%w: owner must be positive", ErrInvalidArgument)

	// ErrUnknownCategory marks a ledger expense whose category id does
	// not resolve to any category visible to its owner. Distinct from
	// ErrInvalidArgument so operators can tell corruption from bad input.
	ErrUnknownCategory = errors.New("expense references unknown category")
)

type (
	// CategoryTotal is the per-category sum of expense amounts within a
	// window. Derived, never persisted.
	CategoryTotal struct {
		CategoryID   int64           `json:"categoryId"`
		CategoryName string          `json:"categoryName"`
		Total        decimal.Decimal `json:"total"`
	}

	// TrendPoint is one month of a trend series.
	TrendPoint struct {
		Month string          `json:"month"`
		Total decimal.Decimal `json:"total"`
	}

	// DashboardStats is the composed snapshot for the current month.
	DashboardStats struct {
		MonthlyTotal    decimal.Decimal `json:"monthlyTotal"`
		BudgetRemaining decimal.Decimal `json:"budgetRemaining"`
		CategoriesCount int             `json:"categoriesCount"`
		SavingsProgress decimal.Decimal `json:"savingsProgress"`
		BudgetAmount    decimal.Decimal `json:"budgetAmount"`
	}
)

// MonthWindow returns the inclusive UTC window covering the given
// calendar month: first day 00:00:00.000 through last day 23:59:59.999.
// The last day is derived as day zero of the following month, which
// handles variable month lengths and leap years.
func MonthWindow(year, month int) (start, end time.Time, err error) {
	if year < 1000 || year > 9999 {
		return time.Time{}, time.Time{}, ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 999_000_000, time.UTC)
	return start, end, nil
}

// inWindow reports whether t falls inside the inclusive [start, end]
// window.
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// MonthlyTotal sums the amounts of the owner's expenses dated within the
// given calendar month. An empty match yields exactly zero, not an
// error; malformed input fails fast.
func MonthlyTotal(expenses []Expense, ownerID int64, year, month int) (decimal.Decimal, error) {
	if ownerID <= 0 {
		return decimal.Zero, ErrInvalidOwner
	}
	start, end, err := MonthWindow(year, month)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if !inWindow(e.Date, start, end) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}

// CategoryTotals groups the owner's expenses within the inclusive
// [start, end] window by category and sums each group. Category names
// are resolved against the supplied category set; an unresolvable
// reference fails with ErrUnknownCategory under StrictCategories and is
// labeled "Unknown" under LenientCategories.
//
// Rows are ordered by descending total, category id ascending on ties,
// so output is stable for identical input.
func CategoryTotals(expenses []Expense, categories []Category, ownerID int64, start, end time.Time, mode CategoryResolution) ([]CategoryTotal, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidOwner
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		if c.VisibleTo(ownerID) {
			names[c.ID] = c.Name
		}
	}

	sums := make(map[int64]decimal.Decimal)
	for _, e := range expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if !inWindow(e.Date, start, end) {
			continue
		}
		sums[e.CategoryID] = sums[e.CategoryID].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for id, total := range sums {
		name, ok := names[id]
		if !ok {
			if mode == StrictCategories {
				return nil, fmt.Errorf("%w: category %d for owner %d", ErrUnknownCategory, id, ownerID)
			}
			name = UnknownCategoryLabel
		}
		out = append(out, CategoryTotal{CategoryID: id, CategoryName: name, Total: total})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out, nil
}

// MonthlyTrends produces exactly monthsBack points, one per calendar
// month, oldest first, ending with the month containing asOf. Each
// point's total is the owner's MonthlyTotal for that month and its label
// is the English three-letter month abbreviation.
func MonthlyTrends(expenses []Expense, ownerID int64, monthsBack int, asOf time.Time) ([]TrendPoint, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidOwner
	}
	if monthsBack <= 0 {
		return nil, ErrInvalidMonthsBack
	}

	// Anchor on the first of the month before stepping back, so day
	// normalization in AddDate cannot skip a month.
	anchor := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)

	points := make([]TrendPoint, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		m := anchor.AddDate(0, -i, 0)
		total, err := MonthlyTotal(expenses, ownerID, m.Year(), int(m.Month()))
		if err != nil {
			return nil, err
		}
		points = append(points, TrendPoint{Month: m.Format("Jan"), Total: total})
	}
	return points, nil
}
