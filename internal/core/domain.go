package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Monthly BudgetPeriod = "monthly"
	Weekly  BudgetPeriod = "weekly"
	Daily   BudgetPeriod = "daily"
)

type (
	BudgetPeriod string

	// Expense is an immutable ledger fact recorded on user submission.
	// Amounts are exact decimals; never route them through float64.
	Expense struct {
		ID          int64
		OwnerID     int64
		CategoryID  int64
		Amount      decimal.Decimal
		Description string
		PaymentMode string
		Date        time.Time
		Notes       string
		IsRecurring bool
		CreatedAt   time.Time
	}

	// Category labels expenses. OwnerID is nil for system defaults,
	// which are visible to every owner.
	Category struct {
		ID      int64
		Name    string
		Icon    string
		Color   string
		OwnerID *int64
	}

	// Budget is a spending ceiling. CategoryID is nil for the overall
	// baseline used by the dashboard.
	Budget struct {
		ID         int64
		OwnerID    int64
		CategoryID *int64
		Amount     decimal.Decimal
		Period     BudgetPeriod
		IsOverall  bool
	}

	// SavingsGoal tracks progress toward a target amount. CurrentAmount
	// may be unset; the dashboard treats that as zero.
	SavingsGoal struct {
		ID            int64
		OwnerID       int64
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.NullDecimal
		TargetDate    *time.Time
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyPaymentMode = errors.New("empty payment mode")
	ErrMissingCategory  = errors.New("missing category reference")
	ErrMissingOwner     = errors.New("missing owner")
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrInvalidPeriod    = errors.New("invalid budget period")
)

func (p BudgetPeriod) Validate() error {
	switch p {
	case Monthly, Weekly, Daily:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

func (e Expense) Validate() error {
	if e.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(e.PaymentMode) == "" {
		return ErrEmptyPaymentMode
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// VisibleTo reports whether the category can label an expense of the
// given owner: either a system default or owned by that owner.
func (c Category) VisibleTo(ownerID int64) bool {
	return c.OwnerID == nil || *c.OwnerID == ownerID
}

func (b Budget) Validate() error {
	if b.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return b.Period.Validate()
}

func (g SavingsGoal) Validate() error {
	if g.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Valid && g.CurrentAmount.Decimal.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
