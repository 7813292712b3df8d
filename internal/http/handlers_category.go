package http

import (
	"net/http"

	"fintrack/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type categoryResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	Color   string `json:"color"`
	OwnerID *int64 `json:"userId"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:      c.ID,
		Name:    c.Name,
		Icon:    c.Icon,
		Color:   c.Color,
		OwnerID: c.OwnerID,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	categories, err := s.repo.ListCategories(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	c := core.Category{
		Name:    sanitizeInput(req.Name),
		Icon:    sanitizeInput(req.Icon),
		Color:   sanitizeInput(req.Color),
		OwnerID: &ownerID,
	}
	if err := c.Validate(); err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.repo.CreateCategory(r.Context(), c)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
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

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	c := core.Category{
		ID:      id,
		Name:    sanitizeInput(req.Name),
		Icon:    sanitizeInput(req.Icon),
		Color:   sanitizeInput(req.Color),
		OwnerID: &ownerID,
	}
	if err := c.Validate(); err != nil {
		writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.repo.UpdateCategory(r.Context(), c)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCategoryResponse(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
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

	if err := s.repo.DeleteCategory(r.Context(), ownerID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusNoContent, nil)
}
