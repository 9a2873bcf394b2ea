// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/hlsforge/internal/jobs"
	"github.com/ManuGH/hlsforge/internal/rendition"
)

const (
	maxRequestBody   = 1 << 20
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req jobs.Request
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: decode body: %w", jobs.ErrInvalidRequest, err))
		return
	}

	rec, err := s.jobs.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/jobs/"+rec.ID)
	writeJSON(w, http.StatusAccepted, rec)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", jobs.ErrInvalidRequest))
			return
		}
		limit = min(n, maxListLimit)
	}

	records, err := s.jobs.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if records == nil {
		records = []jobs.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": records})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	rec, err := s.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDefaultRenditions(w http.ResponseWriter, _ *http.Request) {
	ladder := rendition.Resolve(nil, s.defaults)
	writeJSON(w, http.StatusOK, map[string]any{"renditions": ladder})
}
