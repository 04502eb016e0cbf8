package handler

import (
	"net/http"

	"github.com/budbeer/console/internal/service"
)

// BansHandler manages the IP/device ban registry.
type BansHandler struct {
	trust *service.TrustService
}

// NewBansHandler creates a new BansHandler.
func NewBansHandler(trust *service.TrustService) *BansHandler {
	return &BansHandler{trust: trust}
}

// List returns all ban entries, most recent first.
// GET /api/admin/banned (also mounted at /api/admin/banned-ips)
func (h *BansHandler) List(w http.ResponseWriter, r *http.Request) {
	bans, err := h.trust.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list bans")
		return
	}
	writeJSON(w, http.StatusOK, bans)
}

type banRequest struct {
	IP       string `json:"ip"`
	DeviceID string `json:"deviceId"`
	Reason   string `json:"reason"`
}

// Create records a new ban. At least one of ip or deviceId is required;
// duplicates against existing entries are allowed.
// POST /api/admin/ban
func (h *BansHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	ban, err := h.trust.Ban(r.Context(), req.IP, req.DeviceID, req.Reason)
	if err != nil {
		writeServiceError(w, err, "Failed to create ban")
		return
	}
	writeJSON(w, http.StatusCreated, ban)
}

// Delete lifts a single ban entry. Other entries covering the same IP or
// device remain in force.
// DELETE /api/admin/banned/{id}
func (h *BansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ban id")
		return
	}
	if err := h.trust.Unban(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete ban")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Ban removed",
	})
}
