package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validExpense() Expense {
	return Expense{
		OwnerID:     1,
		CategoryID:  1,
		Amount:      decimal.NewFromInt(100),
		Description: "groceries",
		PaymentMode: "cash",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := validExpense().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	mutations := []struct {
		name   string
		mutate func(*Expense)
	}{
		{"zero owner", func(e *Expense) { e.OwnerID = 0 }},
		{"zero category", func(e *Expense) { e.CategoryID = 0 }},
		{"zero amount", func(e *Expense) { e.Amount = decimal.Zero }},
		{"negative amount", func(e *Expense) { e.Amount = decimal.NewFromInt(-1) }},
		{"zero date", func(e *Expense) { e.Date = time.Time{} }},
		{"empty description", func(e *Expense) { e.Description = "  " }},
		{"empty payment mode", func(e *Expense) { e.PaymentMode = "" }},
	}
	for _, tc := range mutations {
		e := validExpense()
		tc.mutate(&e)
		if err := e.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestBudgetPeriodValidate(t *testing.T) {
	for _, p := range []BudgetPeriod{Monthly, Weekly, Daily} {
		if err := p.Validate(); err != nil {
			t.Fatalf("%s: expected ok, got %v", p, err)
		}
	}
	if err := BudgetPeriod("yearly").Validate(); err == nil {
		t.Fatal("expected error for unsupported period")
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{OwnerID: 1, Amount: decimal.NewFromInt(5000), Period: Monthly, IsOverall: true}
	if err := b.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	b.Amount = decimal.Zero
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	g := SavingsGoal{OwnerID: 1, Name: "vacation", TargetAmount: decimal.NewFromInt(1000)}
	if err := g.Validate(); err != nil {
		t.Fatalf("unset current amount should be valid, got %v", err)
	}
	g.CurrentAmount = decimal.NullDecimal{Decimal: decimal.NewFromInt(-5), Valid: true}
	if err := g.Validate(); err == nil {
		t.Fatal("expected error for negative current amount")
	}
}

func TestCategoryVisibleTo(t *testing.T) {
	system := Category{ID: 1, Name: "Food & Drinks"}
	if !system.VisibleTo(1) || !system.VisibleTo(42) {
		t.Fatal("system category should be visible to every owner")
	}
	owner := int64(7)
	private := Category{ID: 2, Name: "Hobby", OwnerID: &owner}
	if !private.VisibleTo(7) {
		t.Fatal("owned category should be visible to its owner")
	}
	if private.VisibleTo(8) {
		t.Fatal("owned category should not be visible to other owners")
	}
}
