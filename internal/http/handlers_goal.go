package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type savingsGoalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"targetAmount"`
	CurrentAmount string `json:"currentAmount"`
	TargetDate    string `json:"targetDate"`
}

type savingsGoalResponse struct {
	ID            int64               `json:"id"`
	OwnerID       int64               `json:"userId"`
	Name          string              `json:"name"`
	TargetAmount  decimal.Decimal     `json:"targetAmount"`
	CurrentAmount decimal.NullDecimal `json:"currentAmount"`
	TargetDate    *string             `json:"targetDate"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func toSavingsGoalResponse(g core.SavingsGoal) savingsGoalResponse {
	resp := savingsGoalResponse{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		CreatedAt:     g.CreatedAt,
	}
	if g.TargetDate != nil {
		d := g.TargetDate.Format(dateLayout)
		resp.TargetDate = &d
	}
	return resp
}

func savingsGoalFromRequest(req savingsGoalRequest, ownerID, id int64) (core.SavingsGoal, error) {
	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	current, err := core.ParseNullableAmount(req.CurrentAmount)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	g := core.SavingsGoal{
		ID:            id,
		OwnerID:       ownerID,
		Name:          sanitizeInput(req.Name),
		TargetAmount:  target,
		CurrentAmount: current,
	}
	if req.TargetDate != "" {
		d, err := time.ParseInLocation(dateLayout, req.TargetDate, time.UTC)
		if err != nil {
			return core.SavingsGoal{}, fmt.Errorf("%w: targetDate must be YYYY-MM-DD", core.ErrInvalidArgument)
		}
		g.TargetDate = &d
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

func (s *Server) handleListSavingsGoals(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	goals, err := s.repo.ListSavingsGoals(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]savingsGoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toSavingsGoalResponse(g))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req savingsGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	g, err := savingsGoalFromRequest(req, ownerID, 0)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.CreateSavingsGoal(r.Context(), g)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toSavingsGoalResponse(created))
}

func (s *Server) handleUpdateSavingsGoal(w http.ResponseWriter, r *http.Request) {
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

	var req savingsGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	g, err := savingsGoalFromRequest(req, ownerID, id)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.repo.UpdateSavingsGoal(r.Context(), g)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSavingsGoalResponse(updated))
}

func (s *Server) handleDeleteSavingsGoal(w http.ResponseWriter, r *http.Request) {
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

	if err := s.repo.DeleteSavingsGoal(r.Context(), ownerID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusNoContent, nil)
}
