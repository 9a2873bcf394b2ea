// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/hlsforge/internal/jobs"
	"github.com/ManuGH/hlsforge/internal/log"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// writeError maps job service errors onto status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, jobs.ErrInvalidRequest):
		code, kind = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, jobs.ErrOutputBusy):
		code, kind = http.StatusConflict, "output_busy"
	case errors.Is(err, jobs.ErrNotFound):
		code, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, jobs.ErrShuttingDown):
		code, kind = http.StatusServiceUnavailable, "shutting_down"
	}

	body := errorBody{Error: kind, RequestID: log.RequestIDFromContext(r.Context())}
	if code == http.StatusInternalServerError {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Str(log.FieldEvent, "api.internal_error").
			Err(err).
			Msg("request failed")
	} else {
		body.Detail = err.Error()
	}
	writeJSON(w, code, body)
}
