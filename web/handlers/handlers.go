// Package handlers provides the HTTP request handlers for the Handoff API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/handoff-dev/handoff/services"
)

// errorResponse is the JSON envelope for failed requests
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Handler operation failed",
			"layer", "handler",
			"operation", "write_json",
			"error", err)
	}
}

// writeError maps service error kinds to HTTP statuses and logs the
// technical error while returning the user-facing message.
func writeError(w http.ResponseWriter, operation string, err error) {
	slog.Error("Handler operation failed",
		"layer", "handler",
		"operation", operation,
		"error", err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	}

	resp := errorResponse{Error: services.FormatErrorForUser(err)}
	if status == http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// parseIDParam parses the named chi URL parameter as a UUID
func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// parseOptionalUUID parses a UUID string that may be absent
func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
