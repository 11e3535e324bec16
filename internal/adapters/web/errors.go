package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-terminal/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the register error taxonomy onto HTTP statuses.
// Anything untyped is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *core.ValidationError
		ne *core.NotFoundError
		ce *core.ConflictError
		be *core.BackendError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, r, ve.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.As(err, &ne):
		writeError(w, r, ne.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &ce):
		writeError(w, r, ce.Error(), "CONFLICT", http.StatusConflict)
	case errors.As(err, &be):
		writeError(w, r, be.Error(), "BACKEND_ERROR", http.StatusBadGateway)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
