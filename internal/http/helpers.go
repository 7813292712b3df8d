package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// defaultOwnerID is assumed when the request carries no owner
// parameter. Matches the single-user deployments this started as.
const defaultOwnerID int64 = 1

const dateLayout = "2006-01-02"

type errorResponse struct {
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures are
// logged; headers are already gone at that point.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Response encoding failed",
			log.FieldError, err.Error(), log.FieldPath, r.URL.Path)
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Message: msg})
}

// writeDomainError maps a service or repository error to an HTTP status.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.FromContext(r.Context())
	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		writeMessage(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeMessage(w, r, http.StatusNotFound, "record not found")
	case errors.Is(err, core.ErrUnknownCategory):
		logger.ErrorContext(r.Context(), "Data integrity fault", log.NewFields().
			WithError(err).WithHTTPRequest(r.Method, r.URL.Path, "").ToSlice()...)
		writeMessage(w, r, http.StatusInternalServerError, "ledger refers to an unknown category")
	default:
		logger.ErrorContext(r.Context(), "Request failed", log.NewFields().
			WithError(err).WithHTTPRequest(r.Method, r.URL.Path, "").ToSlice()...)
		writeMessage(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// ownerFromRequest reads the owner scope from the `user` query
// parameter, falling back to the default owner.
func ownerFromRequest(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get("user"))
	if v == "" {
		return defaultOwnerID, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidOwner
	}
	return id, nil
}

// pathID reads the {id} segment of the matched route.
func pathID(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: malformed id %q", core.ErrInvalidArgument, v)
	}
	return id, nil
}

// queryInt parses an integer query parameter, using def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", core.ErrInvalidArgument, name)
	}
	return n, nil
}

// queryDate parses a required YYYY-MM-DD query parameter as a UTC date.
func queryDate(r *http.Request, name string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", core.ErrInvalidArgument, name)
	}
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", core.ErrInvalidArgument, name)
	}
	return t, nil
}

// decodeBody decodes a JSON request body, rejecting unknown trailing data.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", core.ErrInvalidArgument)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
