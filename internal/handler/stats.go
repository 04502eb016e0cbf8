package handler

import (
	"net/http"
	"time"

	"github.com/budbeer/console/internal/query"
	"github.com/budbeer/console/internal/service"
)

// StatsHandler serves the console dashboard counters.
type StatsHandler struct {
	moderation *service.ModerationService
	trust      *service.TrustService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(moderation *service.ModerationService, trust *service.TrustService) *StatsHandler {
	return &StatsHandler{moderation: moderation, trust: trust}
}

// Get computes the dashboard counters from the current store contents.
// GET /api/admin/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	bars, err := h.moderation.ListBars(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to load stats")
		return
	}
	reports, err := h.moderation.ListReports(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to load stats")
		return
	}
	bans, err := h.trust.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, query.Stats(bars, reports, bans, time.Now()))
}
