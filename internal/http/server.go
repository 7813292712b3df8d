package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// Options carries the listener and throttling knobs for the API server.
type Options struct {
	Addr              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestsPerMinute int
}

// Server is the JSON API front end. It owns the rate limiter and the
// middleware chain; all domain work is delegated to the services.
type Server struct {
	http.Server

	analytics *services.AnalyticsService
	dashboard *services.DashboardService
	repo      ledger.Repository

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options, analytics *services.AnalyticsService, dashboard *services.DashboardService, repo ledger.Repository, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         opts.Addr,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
		analytics:   analytics,
		dashboard:   dashboard,
		repo:        repo,
		rateLimiter: newRateLimiter(opts.RequestsPerMinute),
		metrics:     &securityMetrics{},
		logger:      logger.WithComponent(log.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/analytics/monthly-total", s.withAPI(s.handleMonthlyTotal))
	mux.HandleFunc("GET /api/analytics/category-totals", s.withAPI(s.handleCategoryTotals))
	mux.HandleFunc("GET /api/analytics/monthly-trends", s.withAPI(s.handleMonthlyTrends))
	mux.HandleFunc("GET /api/dashboard/stats", s.withAPI(s.handleDashboardStats))

	mux.HandleFunc("GET /api/expenses", s.withAPI(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/date-range", s.withAPI(s.handleExpensesByDateRange))
	mux.HandleFunc("POST /api/expenses", s.withAPI(s.handleCreateExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withAPI(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withAPI(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/categories", s.withAPI(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withAPI(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withAPI(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withAPI(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/budgets", s.withAPI(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withAPI(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withAPI(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withAPI(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/savings-goals", s.withAPI(s.handleListSavingsGoals))
	mux.HandleFunc("POST /api/savings-goals", s.withAPI(s.handleCreateSavingsGoal))
	mux.HandleFunc("PUT /api/savings-goals/{id}", s.withAPI(s.handleUpdateSavingsGoal))
	mux.HandleFunc("DELETE /api/savings-goals/{id}", s.withAPI(s.handleDeleteSavingsGoal))

	handler := log.Middleware(s.logger)(log.RequestIDMiddleware(requestIDFrom)(mux))
	s.Server.Handler = handler

	return s
}

// requestIDFrom honors a caller-supplied X-Request-ID, generating one
// otherwise.
func requestIDFrom(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" {
		return id
	}
	return generateRequestID()
}

// withAPI adds security headers, rate limiting on mutating requests,
// and request start/completion logging.
func (s *Server) withAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := log.FromContext(ctx)
		clientIP := extractClientIP(r)

		logger.InfoContext(ctx, "Request started", log.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.Header.Get("User-Agent")).
			WithClientIP(clientIP).
			ToSlice()...)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request pattern", log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, "").
				WithClientIP(clientIP).
				ToSlice()...)
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.NewFields().
				WithComponent(log.ComponentRateLimit).
				WithHTTPRequest(r.Method, r.URL.Path, "").
				WithClientIP(clientIP).
				ToSlice()...)
			w.Header().Set("Retry-After", "60")
			writeMessage(w, r, http.StatusTooManyRequests, "rate limit exceeded, retry later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed", log.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, "").
			WithHTTPResponse(rw.statusCode, duration.Milliseconds()).
			WithClientIP(clientIP).
			ToSlice()...)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the repository answers before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.repo.ListCategories(ctx, defaultOwnerID); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
