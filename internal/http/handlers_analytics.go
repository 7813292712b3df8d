package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

// handleMonthlyTotal reports the owner's expense total for one calendar
// month. Year and month default to the current UTC month.
func (s *Server) handleMonthlyTotal(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	now := time.Now().UTC()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	point, err := s.analytics.MonthlyTotal(r.Context(), ownerID, year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, point)
}

// handleCategoryTotals breaks the window down by category. startDate
// and endDate are required, YYYY-MM-DD, inclusive.
func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
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
	// The end date covers its whole day.
	end = end.Add(24*time.Hour - time.Millisecond)

	totals, err := s.analytics.CategoryTotals(r.Context(), ownerID, start, end)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if totals == nil {
		totals = []core.CategoryTotal{}
	}
	writeJSON(w, r, http.StatusOK, totals)
}

// handleMonthlyTrends returns one point per month, oldest first, ending
// at the current month.
func (s *Server) handleMonthlyTrends(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	months, err := queryInt(r, "months", core.DefaultTrendMonths)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	trends, err := s.analytics.MonthlyTrends(r.Context(), ownerID, months)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, trends)
}

// handleDashboardStats returns the composed current-month snapshot.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ownerID, err := ownerFromRequest(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	stats, err := s.dashboard.Stats(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
