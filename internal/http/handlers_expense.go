package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// expenseRequest is the JSON body for creating or updating an expense.
// Amounts travel as strings so they stay exact.
type expenseRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId"`
	Date        string `json:"date"`
	PaymentMode string `json:"paymentMode"`
	Notes       string `json:"notes"`
	IsRecurring bool   `json:"isRecurring"`
}

type expenseResponse struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"categoryId"`
	Date        string          `json:"date"`
	PaymentMode string          `json:"paymentMode"`
	Notes       string          `json:"notes,omitempty"`
	IsRecurring bool            `json:"isRecurring"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Amount:      e.Amount,
		Description: e.Description,
		CategoryID:  e.CategoryID,
		Date:        e.Date.Format(dateLayout),
		PaymentMode: e.PaymentMode,
		Notes:       e.Notes,
		IsRecurring: e.IsRecurring,
		CreatedAt:   e.CreatedAt,
	}
}

// expenseWithCategory is the list shape: each expense joined with its
// resolved category, when one is visible to the owner.
type expenseWithCategory struct {
	expenseResponse
	Category *categoryResponse `json:"category,omitempty"`
}

// expensesWithCategories resolves each expense's category against the
// owner's visible set. Unresolvable references stay bare rather than
// failing the listing.
func (s *Server) expensesWithCategories(r *http.Request, ownerID int64, expenses []core.Expense) ([]expenseWithCategory, error) {
	categories, err := s.repo.ListCategories(r.Context(), ownerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := make([]expenseWithCategory, 0, len(expenses))
	for _, e := range expenses {
		item := expenseWithCategory{expenseResponse: toExpenseResponse(e)}
		if c, ok := byID[e.CategoryID]; ok {
			resp := toCategoryResponse(c)
			item.Category = &resp
		}
		out = append(out, item)
	}
	return out, nil
}

// expenseFromRequest validates and converts the wire form.
func expenseFromRequest(req expenseRequest, ownerID, id int64) (core.Expense, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: date must be YYYY-MM-DD", core.ErrInvalidArgument)
	}

	e := core.Expense{
		ID:          id,
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		PaymentMode: sanitizeInput(req.PaymentMode),
		Date:        date,
		Notes:       sanitizeInput(req.Notes),
		IsRecurring: req.IsRecurring,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	expenses, err := s.repo.ListExpenses(r.Context(), ownerID, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out, err := s.expensesWithCategories(r, ownerID, expenses)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleExpensesByDateRange lists expenses inside an inclusive
// [startDate, endDate] window.
func (s *Server) handleExpensesByDateRange(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	start, err := queryDate(r, "startDate")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	end, err := queryDate(r, "endDate")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if end.Before(start) {
		writeDomainError(w, r, core.ErrInvalidDateRange)
		return
	}
	end = end.Add(24*time.Hour - time.Millisecond)

	expenses, err := s.repo.ListExpensesByDateRange(r.Context(), ownerID, start, end)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out, err := s.expensesWithCategories(r, ownerID, expenses)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	e, err := expenseFromRequest(req, ownerID, 0)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.CreateExpense(r.Context(), e)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense recorded", log.NewFields().
		WithOperation(log.OpCreate).
		WithOwner(ownerID).
		WithExpense(created.Amount.String(), created.CategoryID).
		ToSlice()...)
	writeJSON(w, r, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	e, err := expenseFromRequest(req, ownerID, id)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.repo.UpdateExpense(r.Context(), e)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense updated", log.NewFields().
		WithOperation(log.OpUpdate).
		WithOwner(ownerID).
		WithExpense(updated.Amount.String(), updated.CategoryID).
		ToSlice()...)
	writeJSON(w, r, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.repo.DeleteExpense(r.Context(), ownerID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithOwner(ownerID).
		ToSlice()...)
	writeJSON(w, r, http.StatusNoContent, nil)
}
