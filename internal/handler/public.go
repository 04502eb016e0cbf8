package handler

import (
	"net/http"

	"github.com/budbeer/console/internal/service"
)

// PublicHandler serves the unauthenticated intake endpoints used by the
// mobile app. Every submission is checked against the ban registry before
// it is accepted.
type PublicHandler struct {
	moderation *service.ModerationService
	trust      *service.TrustService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(moderation *service.ModerationService, trust *service.TrustService) *PublicHandler {
	return &PublicHandler{moderation: moderation, trust: trust}
}

// SubmitBar accepts a public bar submission into the moderation queue.
// POST /api/bars
func (h *PublicHandler) SubmitBar(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeBarBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ip := clientIP(r)
	if !h.allowSubmission(w, r, ip, rec.DeviceID) {
		return
	}

	bar, err := h.moderation.SubmitBar(r.Context(), rec.Input(), ip, rec.DeviceID)
	if err != nil {
		writeServiceError(w, err, "Failed to submit bar")
		return
	}
	writeJSON(w, http.StatusCreated, bar)
}

type reportRequest struct {
	BarID    int64  `json:"barId"`
	Reason   string `json:"reason"`
	DeviceID string `json:"deviceId"`
}

// SubmitReport accepts a public abuse report against an existing bar.
// POST /api/reports
func (h *PublicHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.BarID <= 0 {
		writeError(w, http.StatusBadRequest, "barId is required")
		return
	}

	ip := clientIP(r)
	if !h.allowSubmission(w, r, ip, req.DeviceID) {
		return
	}

	report, err := h.moderation.SubmitReport(r.Context(), req.BarID, req.Reason, ip, req.DeviceID)
	if err != nil {
		writeServiceError(w, err, "Failed to submit report")
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// allowSubmission consults the ban registry and writes the rejection
// itself when the caller is banned. The response does not distinguish an
// IP ban from a device ban.
func (h *PublicHandler) allowSubmission(w http.ResponseWriter, r *http.Request, ip, deviceID string) bool {
	banned, err := h.trust.IsBanned(r.Context(), ip, deviceID)
	if err != nil {
		writeServiceError(w, err, "Failed to check submission")
		return false
	}
	if banned {
		writeServiceError(w, service.ErrBanned, "Submission rejected")
		return false
	}
	return true
}
