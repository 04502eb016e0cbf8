package handler

import (
	"net/http"

	"github.com/budbeer/console/internal/query"
	"github.com/budbeer/console/internal/service"
)

// ReportsHandler serves the abuse report queue.
type ReportsHandler struct {
	moderation *service.ModerationService
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(moderation *service.ModerationService) *ReportsHandler {
	return &ReportsHandler{moderation: moderation}
}

// List returns reports filtered by ?status=.
// GET /api/admin/reports
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.moderation.ListReports(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, query.Reports(reports, queryString(r, "status")))
}

// Resolve marks a report resolved. Resolving twice is a no-op success and
// the reported bar is left untouched either way.
// PATCH /api/admin/reports/{id}/resolve
func (h *ReportsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid report id")
		return
	}
	if err := h.moderation.ResolveReport(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to resolve report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Report resolved",
	})
}

// Delete removes a report permanently.
// DELETE /api/admin/reports/{id}
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid report id")
		return
	}
	if err := h.moderation.DeleteReport(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Report deleted",
	})
}
