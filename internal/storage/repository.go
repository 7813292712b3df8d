// Package storage implements the ledger repository on top of
// database/sql, with SQLite and Postgres backends sharing one query set.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLRepository implements ledger.Repository for both supported
// dialects. Queries are written with ? placeholders and rebound to $n
// for Postgres.
type SQLRepository struct {
	db      *sql.DB
	dialect dialect
}

var _ ledger.Repository = (*SQLRepository)(nil)

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// q rebinds ? placeholders to $1..$n for Postgres.
func (r *SQLRepository) q(query string) string {
	if r.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

const expenseColumns = "id, owner_id, category_id, amount, description, payment_mode, date, notes, is_recurring, created_at"

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var notes sql.NullString
	err := row.Scan(&e.ID, &e.OwnerID, &e.CategoryID, &e.Amount, &e.Description,
		&e.PaymentMode, &e.Date, &notes, &e.IsRecurring, &e.CreatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.Notes = notes.String
	e.Date = e.Date.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (r *SQLRepository) ListExpenses(ctx context.Context, ownerID int64, limit int) ([]core.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE owner_id = ? ORDER BY date DESC, id DESC"
	args := []any{ownerID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLRepository) ListExpensesByDateRange(ctx context.Context, ownerID int64, start, end time.Time) ([]core.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE owner_id = ? AND date >= ? AND date <= ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, r.q(query), ownerID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list expenses by date range: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.CreatedAt = time.Now().UTC()

	query := `INSERT INTO expenses (owner_id, category_id, amount, description, payment_mode, date, notes, is_recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	err := r.db.QueryRowContext(ctx, r.q(query),
		e.OwnerID, e.CategoryID, e.Amount, e.Description, e.PaymentMode,
		e.Date.UTC(), e.Notes, e.IsRecurring, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (r *SQLRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	query := `UPDATE expenses SET category_id = ?, amount = ?, description = ?, payment_mode = ?, date = ?, notes = ?, is_recurring = ?
		WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, r.q(query),
		e.CategoryID, e.Amount, e.Description, e.PaymentMode, e.Date.UTC(),
		e.Notes, e.IsRecurring, e.ID, e.OwnerID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLRepository) DeleteExpense(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM expenses WHERE id = ? AND owner_id = ?"), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLRepository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	query := "SELECT id, name, icon, color, owner_id FROM categories WHERE owner_id IS NULL OR owner_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, r.q(query), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var owner sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &owner); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if owner.Valid {
			c.OwnerID = &owner.Int64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	query := "INSERT INTO categories (name, icon, color, owner_id) VALUES (?, ?, ?, ?) RETURNING id"
	err := r.db.QueryRowContext(ctx, r.q(query), c.Name, c.Icon, c.Color, nullableID(c.OwnerID)).Scan(&c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.OwnerID == nil {
		return core.Category{}, ledger.ErrNotFound
	}
	// owner_id is part of the WHERE clause, so system defaults
	// (owner_id IS NULL) and other owners' rows never match, and
	// stored ownership never changes.
	query := "UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ? AND owner_id = ?"
	res, err := r.db.ExecContext(ctx, r.q(query), c.Name, c.Icon, c.Color, c.ID, *c.OwnerID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (r *SQLRepository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	// System defaults (owner_id IS NULL) are not deletable per owner.
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM categories WHERE id = ? AND owner_id = ?"), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLRepository) ListBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	query := "SELECT id, owner_id, category_id, amount, period, is_overall FROM budgets WHERE owner_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, r.q(query), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var cat sql.NullInt64
		var period string
		if err := rows.Scan(&b.ID, &b.OwnerID, &cat, &b.Amount, &period, &b.IsOverall); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if cat.Valid {
			b.CategoryID = &cat.Int64
		}
		b.Period = core.BudgetPeriod(period)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	query := "INSERT INTO budgets (owner_id, category_id, amount, period, is_overall) VALUES (?, ?, ?, ?, ?) RETURNING id"
	err := r.db.QueryRowContext(ctx, r.q(query),
		b.OwnerID, nullableID(b.CategoryID), b.Amount, string(b.Period), b.IsOverall).Scan(&b.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return b, nil
}

func (r *SQLRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	query := "UPDATE budgets SET category_id = ?, amount = ?, period = ?, is_overall = ? WHERE id = ? AND owner_id = ?"
	res, err := r.db.ExecContext(ctx, r.q(query),
		nullableID(b.CategoryID), b.Amount, string(b.Period), b.IsOverall, b.ID, b.OwnerID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (r *SQLRepository) DeleteBudget(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM budgets WHERE id = ? AND owner_id = ?"), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func (r *SQLRepository) ListSavingsGoals(ctx context.Context, ownerID int64) ([]core.SavingsGoal, error) {
	query := "SELECT id, owner_id, name, target_amount, current_amount, target_date, created_at FROM savings_goals WHERE owner_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, r.q(query), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var current decimal.NullDecimal
		var target sql.NullTime
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.TargetAmount, &current, &target, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		g.CurrentAmount = current
		if target.Valid {
			utc := target.Time.UTC()
			g.TargetDate = &utc
		}
		g.CreatedAt = g.CreatedAt.UTC()
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLRepository) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	g.CreatedAt = time.Now().UTC()

	query := "INSERT INTO savings_goals (owner_id, name, target_amount, current_amount, target_date, created_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"
	err := r.db.QueryRowContext(ctx, r.q(query),
		g.OwnerID, g.Name, g.TargetAmount, g.CurrentAmount, nullableTime(g.TargetDate), g.CreatedAt).Scan(&g.ID)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	return g, nil
}

func (r *SQLRepository) UpdateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	query := "UPDATE savings_goals SET name = ?, target_amount = ?, current_amount = ?, target_date = ? WHERE id = ? AND owner_id = ?"
	res, err := r.db.ExecContext(ctx, r.q(query),
		g.Name, g.TargetAmount, g.CurrentAmount, nullableTime(g.TargetDate), g.ID, g.OwnerID)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update savings goal: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

func (r *SQLRepository) DeleteSavingsGoal(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM savings_goals WHERE id = ? AND owner_id = ?"), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return requireRow(res)
}

// requireRow maps a zero-row mutation to ledger.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
