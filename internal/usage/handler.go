// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package usage

import (
	"net/http"
	"time"

	"github.com/ManuGH/launchpad/internal/log"
	"github.com/ManuGH/launchpad/internal/platform/httpx"
)

const (
	defaultWindow = 24 * time.Hour
	maxWindow     = 90 * 24 * time.Hour
)

// SummaryResponse is the body of GET /api/chat/usage.
type SummaryResponse struct {
	Since  time.Time      `json:"since"`
	Models []ModelSummary `json:"models"`
}

// Handler serves per-model usage totals. Authentication is applied by the router.
type Handler struct {
	store Store
	now   func() time.Time
}

// NewHandler creates a summary handler backed by store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	window := defaultWindow
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 || d > maxWindow {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "Invalid request",
				"message": "since must be a positive duration up to 2160h",
			})
			return
		}
		window = d
	}

	since := h.now().Add(-window).UTC()
	models, err := h.store.Summary(r.Context(), since)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "usage")
		logger.Error().Err(err).Str("event", "usage.summary_failed").Msg("usage summary query failed")
		httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, SummaryResponse{Since: since, Models: models})
}
