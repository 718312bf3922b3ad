// Package handlers provides HTTP handlers and middleware for the Banyan
// REST API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/scrypster/banyan/internal/engine"
)

// ErrorResponse is the JSON shape of all error payloads.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// parseInt parses s, falling back to defaultValue on empty or bad input.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, nothing more to write.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}

// respondEngineError maps the engine's typed errors to HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	var verr *engine.ValidationError
	var nferr *engine.NotFoundError
	var aerr *engine.AuthorizationError
	var cerr *engine.ConflictError
	var derr *engine.DependencyError

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Msg, nil)
	case errors.As(err, &nferr):
		respondError(w, http.StatusNotFound, nferr.Error(), nil)
	case errors.As(err, &aerr):
		respondError(w, http.StatusForbidden, aerr.Msg, nil)
	case errors.As(err, &cerr):
		respondError(w, http.StatusConflict, cerr.Msg, nil)
	case errors.As(err, &derr):
		respondError(w, http.StatusServiceUnavailable, "storage unavailable, retry later", err)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}
