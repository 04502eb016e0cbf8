package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/budbeer/console/internal/query"
	"github.com/budbeer/console/internal/service"
)

// BarsHandler serves the moderation queue and admin bar management.
type BarsHandler struct {
	moderation *service.ModerationService
}

// NewBarsHandler creates a new BarsHandler.
func NewBarsHandler(moderation *service.ModerationService) *BarsHandler {
	return &BarsHandler{moderation: moderation}
}

// List returns bars filtered by ?status= and ordered by ?sort=.
// GET /api/admin/bars
func (h *BarsHandler) List(w http.ResponseWriter, r *http.Request) {
	bars, err := h.moderation.ListBars(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list bars")
		return
	}
	filtered := query.Bars(bars, query.BarFilter{
		Status: queryString(r, "status"),
		Sort:   queryString(r, "sort"),
	})
	writeJSON(w, http.StatusOK, filtered)
}

// Get returns a single bar.
// GET /api/admin/bars/{id}
func (h *BarsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bar id")
		return
	}
	bar, err := h.moderation.GetBar(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to load bar")
		return
	}
	writeJSON(w, http.StatusOK, bar)
}

// Create adds a bar directly as approved, bypassing the moderation queue.
// The body is decoded with legacy key folding so older console builds
// that send lowercase field names keep working.
// POST /api/admin/bars
func (h *BarsHandler) Create(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeBarBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	bar, err := h.moderation.CreateBar(r.Context(), rec.Input(), clientIP(r))
	if err != nil {
		writeServiceError(w, err, "Failed to create bar")
		return
	}
	writeJSON(w, http.StatusCreated, bar)
}

func decodeBarBody(r *http.Request) (*query.BarRecord, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return query.DecodeBarRecord(body)
}

// Update edits a bar's details. Status and submission metadata are not
// editable through this endpoint.
// PUT /api/admin/bars/{id}
func (h *BarsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bar id")
		return
	}
	rec, err := decodeBarBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	bar, err := h.moderation.EditBar(r.Context(), id, rec.Input())
	if err != nil {
		writeServiceError(w, err, "Failed to update bar")
		return
	}
	writeJSON(w, http.StatusOK, bar)
}

// Approve marks a bar approved. Approving an already-approved bar is a
// no-op success.
// PATCH /api/admin/bars/{id}/approve
func (h *BarsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.moderation.ApproveBar, "Bar approved")
}

// Reject marks a bar rejected.
// PATCH /api/admin/bars/{id}/reject
func (h *BarsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.moderation.RejectBar, "Bar rejected")
}

func (h *BarsHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) error, message string) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bar id")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to update bar status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

// Delete removes a bar. Reports referencing it survive with an empty
// bar name.
// DELETE /api/admin/bars/{id}
func (h *BarsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bar id")
		return
	}
	if err := h.moderation.DeleteBar(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete bar")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Bar deleted",
	})
}
