package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type budgetRequest struct {
	CategoryID *int64 `json:"categoryId"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	IsOverall  bool   `json:"isOverall"`
}

type budgetResponse struct {
	ID         int64           `json:"id"`
	OwnerID    int64           `json:"userId"`
	CategoryID *int64          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `json:"period"`
	IsOverall  bool            `json:"isOverall"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:         b.ID,
		OwnerID:    b.OwnerID,
		CategoryID: b.CategoryID,
		Amount:     b.Amount,
		Period:     string(b.Period),
		IsOverall:  b.IsOverall,
	}
}

func budgetFromRequest(req budgetRequest, ownerID, id int64) (core.Budget, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Budget{}, err
	}

	period := core.BudgetPeriod(req.Period)
	if req.Period == "" {
		period = core.Monthly
	}

	b := core.Budget{
		ID:         id,
		OwnerID:    ownerID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Period:     period,
		IsOverall:  req.IsOverall,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	budgets, err := s.repo.ListBudgets(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	b, err := budgetFromRequest(req, ownerID, 0)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.CreateBudget(r.Context(), b)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toBudgetResponse(created))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
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

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	b, err := budgetFromRequest(req, ownerID, id)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.repo.UpdateBudget(r.Context(), b)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toBudgetResponse(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
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

	if err := s.repo.DeleteBudget(r.Context(), ownerID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusNoContent, nil)
}
