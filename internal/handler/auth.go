package handler

import (
	"net/http"

	"github.com/budbeer/console/internal/server/middleware"
	"github.com/budbeer/console/internal/service"
)

// AuthHandler serves the login flow and the two-factor settings screen.
type AuthHandler struct {
	auth      *service.AuthService
	twoFactor *service.TwoFactorService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, twoFactor *service.TwoFactorService) *AuthHandler {
	return &AuthHandler{auth: auth, twoFactor: twoFactor}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin. Accounts without a second factor get a
// session token directly; accounts with TOTP enabled get a temp token
// that must go through Verify2FA first.
// POST /api/admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err, "Authentication error")
		return
	}

	if result.RequiresTwoFactor {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"requiresTwoFactor": true,
			"tempToken":         result.TempToken,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     result.Token,
		"expiresIn": int(h.auth.SessionTTL().Seconds()),
	})
}

type verify2FARequest struct {
	TempToken string `json:"tempToken"`
	Code      string `json:"code"`
}

// Verify2FA upgrades a pending challenge into a session token. A replay of
// an already-consumed temp token gets a 401 challenge error; the console
// treats that as a signal to restart login, not as a fault.
// POST /api/admin/verify-2fa
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req verify2FARequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.TempToken == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "tempToken and code are required")
		return
	}

	token, err := h.auth.VerifyTwoFactor(r.Context(), req.TempToken, req.Code)
	if err != nil {
		writeServiceError(w, err, "Verification error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"expiresIn": int(h.auth.SessionTTL().Seconds()),
	})
}

// Status2FA reports whether the authenticated admin has 2FA enabled.
// GET /api/admin/2fa-status
func (h *AuthHandler) Status2FA(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	enabled, err := h.twoFactor.Enabled(r.Context(), principal.AdminID)
	if err != nil {
		writeServiceError(w, err, "Failed to read 2FA status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"enabled": enabled})
}

// Setup2FA generates a pending secret and returns the provisioning
// payload. Login behavior is unchanged until Enable2FA confirms a code.
// POST /api/admin/setup-2fa
func (h *AuthHandler) Setup2FA(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	setup, err := h.twoFactor.Setup(r.Context(), principal.AdminID)
	if err != nil {
		writeServiceError(w, err, "Failed to set up 2FA")
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

// Enable2FA activates the pending secret after validating a code from the
// authenticator app.
// POST /api/admin/enable-2fa
func (h *AuthHandler) Enable2FA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	if err := h.twoFactor.Enable(r.Context(), principal.AdminID, req.Code); err != nil {
		writeServiceError(w, err, "Failed to enable 2FA")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Two-factor authentication enabled",
	})
}

// Disable2FA turns off two-factor auth. The account password is required
// again here; a bearer token alone is not enough.
// POST /api/admin/disable-2fa
func (h *AuthHandler) Disable2FA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	principal := middleware.GetPrincipal(r.Context())
	if err := h.twoFactor.Disable(r.Context(), principal.AdminID, req.Password); err != nil {
		writeServiceError(w, err, "Failed to disable 2FA")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Two-factor authentication disabled",
	})
}
