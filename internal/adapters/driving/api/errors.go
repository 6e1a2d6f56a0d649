// Package api provides the HTTP driving adapter for sercha-scan.
//
// It exposes the search backend over JSON: health, search, sources and
// filter labels. Gates run as ordered middleware around the handlers so the
// core never sees an unauthenticated request.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/sercha-scan/internal/core/domain"
)

// ErrMissingSearchService is returned when the server is built without a search service.
var ErrMissingSearchService = errors.New("api: search service is required")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps a domain error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error body.
// Internal failures are not echoed to the caller.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
