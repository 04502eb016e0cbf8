package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/budbeer/console/internal/model"
	"github.com/budbeer/console/internal/service"
	"github.com/budbeer/console/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testJWTSecret = "test-secret-for-jwt-integration-tests"
	testPassword  = "supersecretpassword"
)

// testEnv holds all the shared state for integration tests.
type testEnv struct {
	server    *Server
	store     *store.Store
	auth      *service.AuthService
	twoFactor *service.TwoFactorService
}

// newTestEnv creates a fresh test environment with an in-memory store and
// a fully wired Server. Rate limits are off so tests can hammer endpoints.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(store.Options{}) // in-memory SQLite
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := service.NewAuthService(st, service.AuthConfig{JWTSecret: testJWTSecret, Logger: logger})
	twoFactor := service.NewTwoFactorService(st, "BudBeer-Test")
	moderation := service.NewModerationService(st)
	trust := service.NewTrustService(st)

	cfg := DefaultConfig()
	cfg.LoginRateLimit = 0
	cfg.IntakeRateLimit = 0
	srv := New(cfg, st, auth, twoFactor, moderation, trust, logger)

	return &testEnv{
		server:    srv,
		store:     st,
		auth:      auth,
		twoFactor: twoFactor,
	}
}

// seedAdmin creates a default admin account and returns it.
func (e *testEnv) seedAdmin(t *testing.T) *model.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	admin := &model.Admin{
		Username:     "admin",
		PasswordHash: string(hash),
	}
	if err := e.store.CreateAdmin(context.Background(), admin); err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
	return admin
}

// adminToken logs in as the default admin and returns the JWT token string.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	body := jsonBody(t, map[string]string{
		"username": "admin",
		"password": testPassword,
	})
	rr := e.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Token == "" {
		t.Fatal("adminToken: got empty token from login")
	}
	return resp.Token
}

// do executes an HTTP request against the test server and returns the recorder.
// headers is an optional map of header key-value pairs.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

// doAuth executes an authenticated HTTP request using the admin JWT.
func (e *testEnv) doAuth(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("jsonBody: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func assertContentType(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	got := rr.Header().Get("Content-Type")
	if got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

// submitBar posts a public bar submission and returns the created bar.
func (e *testEnv) submitBar(t *testing.T, name string, deviceID string) model.Bar {
	t.Helper()
	body := jsonBody(t, map[string]interface{}{
		"name":         name,
		"latitude":     48.85,
		"longitude":    2.35,
		"regularPrice": 7.5,
		"deviceId":     deviceID,
	})
	rr := e.do(t, "POST", "/api/bars", body, nil)
	assertStatus(t, rr, http.StatusCreated)

	var bar model.Bar
	decodeJSON(t, rr, &bar)
	return bar
}

// ---------------------------------------------------------------------------
// Health check tests
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/healthz", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "application/json")

	var resp map[string]string
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp map[string]interface{}
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
}

// ---------------------------------------------------------------------------
// Login tests
// ---------------------------------------------------------------------------

func TestAdminLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	body := jsonBody(t, map[string]string{"username": "admin", "password": testPassword})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Token             string `json:"token"`
		RequiresTwoFactor bool   `json:"requiresTwoFactor"`
		ExpiresIn         int    `json:"expiresIn"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Token == "" {
		t.Error("expected a session token")
	}
	if resp.RequiresTwoFactor {
		t.Error("account without 2FA should not be challenged")
	}
	if resp.ExpiresIn != int((24 * time.Hour).Seconds()) {
		t.Errorf("expiresIn = %d, want 24h in seconds", resp.ExpiresIn)
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	body := jsonBody(t, map[string]string{"username": "admin", "password": "nope"})
	rr := env.do(t, "POST", "/api/admin/login", body, nil)
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestAdminLogin_UnknownUsername(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)

	wrongPw := env.do(t, "POST", "/api/admin/login",
		jsonBody(t, map[string]string{"username": "admin", "password": "nope"}), nil)
	unknown := env.do(t, "POST", "/api/admin/login",
		jsonBody(t, map[string]string{"username": "ghost", "password": testPassword}), nil)

	assertStatus(t, wrongPw, http.StatusUnauthorized)
	assertStatus(t, unknown, http.StatusUnauthorized)
	// Identical responses, so the API does not leak which usernames exist.
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Errorf("bodies differ: %q vs %q", wrongPw.Body.String(), unknown.Body.String())
	}
}

func TestAdminLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/admin/login", jsonBody(t, map[string]string{"username": "admin"}), nil)
	assertStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, "POST", "/api/admin/login", bytes.NewBufferString("{not json"), nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Two-factor flow tests
// ---------------------------------------------------------------------------

func TestTwoFactorEnrollAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	// Status starts off.
	rr := env.doAuth(t, "GET", "/api/admin/2fa-status", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var status struct {
		Enabled bool `json:"enabled"`
	}
	decodeJSON(t, rr, &status)
	if status.Enabled {
		t.Fatal("2FA should start disabled")
	}

	// Setup returns the provisioning payload.
	rr = env.doAuth(t, "POST", "/api/admin/setup-2fa", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var setup struct {
		Secret     string `json:"secret"`
		OtpauthURL string `json:"otpauthUrl"`
		QRCode     string `json:"qrCode"`
	}
	decodeJSON(t, rr, &setup)
	if setup.Secret == "" || setup.OtpauthURL == "" || setup.QRCode == "" {
		t.Fatalf("incomplete setup payload: %+v", setup)
	}

	// Enable with a wrong code fails and keeps the pending secret.
	rr = env.doAuth(t, "POST", "/api/admin/enable-2fa", jsonBody(t, map[string]string{"code": "000000"}), token)
	assertStatus(t, rr, http.StatusUnauthorized)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	rr = env.doAuth(t, "POST", "/api/admin/enable-2fa", jsonBody(t, map[string]string{"code": code}), token)
	assertStatus(t, rr, http.StatusOK)

	// Login now yields a challenge instead of a session.
	rr = env.do(t, "POST", "/api/admin/login",
		jsonBody(t, map[string]string{"username": "admin", "password": testPassword}), nil)
	assertStatus(t, rr, http.StatusOK)
	var challenge struct {
		Token             string `json:"token"`
		RequiresTwoFactor bool   `json:"requiresTwoFactor"`
		TempToken         string `json:"tempToken"`
	}
	decodeJSON(t, rr, &challenge)
	if !challenge.RequiresTwoFactor || challenge.TempToken == "" {
		t.Fatalf("expected a two-factor challenge, got %+v", challenge)
	}
	if challenge.Token != "" {
		t.Error("no session token may be issued before verification")
	}

	// Wrong code: challenge survives.
	rr = env.do(t, "POST", "/api/admin/verify-2fa",
		jsonBody(t, map[string]string{"tempToken": challenge.TempToken, "code": "000000"}), nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	// Right code: session issued.
	code, _ = totp.GenerateCode(setup.Secret, time.Now())
	rr = env.do(t, "POST", "/api/admin/verify-2fa",
		jsonBody(t, map[string]string{"tempToken": challenge.TempToken, "code": code}), nil)
	assertStatus(t, rr, http.StatusOK)
	var session struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rr, &session)
	if session.Token == "" {
		t.Fatal("expected a session token after verification")
	}

	// Replaying the consumed temp token fails.
	rr = env.do(t, "POST", "/api/admin/verify-2fa",
		jsonBody(t, map[string]string{"tempToken": challenge.TempToken, "code": code}), nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	// The new session works against protected endpoints.
	rr = env.doAuth(t, "GET", "/api/admin/bars", nil, session.Token)
	assertStatus(t, rr, http.StatusOK)
}

func TestDisableTwoFactor(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	rr := env.doAuth(t, "POST", "/api/admin/setup-2fa", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var setup struct {
		Secret string `json:"secret"`
	}
	decodeJSON(t, rr, &setup)

	code, _ := totp.GenerateCode(setup.Secret, time.Now())
	rr = env.doAuth(t, "POST", "/api/admin/enable-2fa", jsonBody(t, map[string]string{"code": code}), token)
	assertStatus(t, rr, http.StatusOK)

	// A session token alone is not enough to disable.
	rr = env.doAuth(t, "POST", "/api/admin/disable-2fa", jsonBody(t, map[string]string{"password": "wrong"}), token)
	assertStatus(t, rr, http.StatusUnauthorized)

	rr = env.doAuth(t, "POST", "/api/admin/disable-2fa", jsonBody(t, map[string]string{"password": testPassword}), token)
	assertStatus(t, rr, http.StatusOK)

	// Login goes straight to a session again.
	rr = env.do(t, "POST", "/api/admin/login",
		jsonBody(t, map[string]string{"username": "admin", "password": testPassword}), nil)
	assertStatus(t, rr, http.StatusOK)
	var resp struct {
		RequiresTwoFactor bool `json:"requiresTwoFactor"`
	}
	decodeJSON(t, rr, &resp)
	if resp.RequiresTwoFactor {
		t.Error("2FA challenge after disable")
	}
}

// ---------------------------------------------------------------------------
// Authorization tests
// ---------------------------------------------------------------------------

func TestAdminEndpoints_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method, path string
	}{
		{"GET", "/api/admin/bars"},
		{"GET", "/api/admin/reports"},
		{"GET", "/api/admin/banned"},
		{"GET", "/api/admin/stats"},
		{"POST", "/api/admin/setup-2fa"},
		{"PATCH", "/api/admin/bars/1/approve"},
	}
	for _, p := range paths {
		rr := env.do(t, p.method, p.path, nil, nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", p.method, p.path, rr.Code)
		}
	}
}

func TestAdminEndpoints_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doAuth(t, "GET", "/api/admin/bars", nil, "garbage.token.here")
	assertStatus(t, rr, http.StatusUnauthorized)
}

// ---------------------------------------------------------------------------
// Moderation workflow tests
// ---------------------------------------------------------------------------

func TestBarModerationWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	bar := env.submitBar(t, "Le Zinc", "device-1")
	if bar.Status != model.BarStatusPending {
		t.Fatalf("submitted bar status = %q, want pending", bar.Status)
	}

	// The pending bar shows up in the queue.
	rr := env.doAuth(t, "GET", "/api/admin/bars?status=pending", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var bars []model.Bar
	decodeJSON(t, rr, &bars)
	if len(bars) != 1 || bars[0].ID != bar.ID {
		t.Fatalf("pending queue = %+v", bars)
	}

	// Approve, twice (idempotent).
	rr = env.doAuth(t, "PATCH", fmt.Sprintf("/api/admin/bars/%d/approve", bar.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)
	rr = env.doAuth(t, "PATCH", fmt.Sprintf("/api/admin/bars/%d/approve", bar.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)

	// Flip to rejected.
	rr = env.doAuth(t, "PATCH", fmt.Sprintf("/api/admin/bars/%d/reject", bar.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.doAuth(t, "GET", fmt.Sprintf("/api/admin/bars/%d", bar.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)
	var got model.Bar
	decodeJSON(t, rr, &got)
	if got.Status != model.BarStatusRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}

	// Edit does not change status.
	rr = env.doAuth(t, "PUT", fmt.Sprintf("/api/admin/bars/%d", bar.ID),
		jsonBody(t, map[string]interface{}{"name": "Le Zinc Doré", "latitude": 48.86, "longitude": 2.36, "regularPrice": 9}), token)
	assertStatus(t, rr, http.StatusOK)
	decodeJSON(t, rr, &got)
	if got.Name != "Le Zinc Doré" || got.Status != model.BarStatusRejected {
		t.Errorf("after edit: %+v", got)
	}

	// Delete.
	rr = env.doAuth(t, "DELETE", fmt.Sprintf("/api/admin/bars/%d", bar.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)
	rr = env.doAuth(t, "GET", fmt.Sprintf("/api/admin/bars/%d", bar.ID), nil, token)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestAdminCreateBar_LegacyCasing(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	// Older console builds send flattened lowercase keys and string prices.
	rr := env.doAuth(t, "POST", "/api/admin/bars",
		jsonBody(t, map[string]interface{}{
			"name":         "Legacy Bar",
			"latitude":     48.1,
			"longitude":    2.1,
			"regularprice": "6.50",
		}), token)
	assertStatus(t, rr, http.StatusCreated)

	var bar model.Bar
	decodeJSON(t, rr, &bar)
	if bar.RegularPrice != 6.5 {
		t.Errorf("RegularPrice = %v, want 6.5 from legacy keys", bar.RegularPrice)
	}
	// Admin-created bars skip the moderation queue.
	if bar.Status != model.BarStatusApproved {
		t.Errorf("status = %q, want approved", bar.Status)
	}
}

func TestPublicSubmit_Validation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/bars",
		jsonBody(t, map[string]interface{}{"name": "", "regularPrice": 5}), nil)
	assertStatus(t, rr, http.StatusBadRequest)

	rr = env.do(t, "POST", "/api/bars",
		jsonBody(t, map[string]interface{}{"name": "x", "regularPrice": -1}), nil)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestBarsSortParam(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	cheap := jsonBody(t, map[string]interface{}{"name": "cheap", "latitude": 1, "longitude": 1, "regularPrice": 3})
	dear := jsonBody(t, map[string]interface{}{"name": "dear", "latitude": 1, "longitude": 1, "regularPrice": 12})
	assertStatus(t, env.do(t, "POST", "/api/bars", cheap, nil), http.StatusCreated)
	assertStatus(t, env.do(t, "POST", "/api/bars", dear, nil), http.StatusCreated)

	rr := env.doAuth(t, "GET", "/api/admin/bars?sort=priceDesc", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var bars []model.Bar
	decodeJSON(t, rr, &bars)
	if len(bars) != 2 || bars[0].Name != "dear" {
		t.Errorf("priceDesc order = %+v", bars)
	}
}

// ---------------------------------------------------------------------------
// Report workflow tests
// ---------------------------------------------------------------------------

func TestReportWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	bar := env.submitBar(t, "Reported Bar", "device-1")

	// Reporting a missing bar fails.
	rr := env.do(t, "POST", "/api/reports",
		jsonBody(t, map[string]interface{}{"barId": 9999, "reason": "x"}), nil)
	assertStatus(t, rr, http.StatusNotFound)

	rr = env.do(t, "POST", "/api/reports",
		jsonBody(t, map[string]interface{}{"barId": bar.ID, "reason": "wrong prices", "deviceId": "device-2"}), nil)
	assertStatus(t, rr, http.StatusCreated)
	var report model.Report
	decodeJSON(t, rr, &report)
	if report.Status != model.ReportStatusPending {
		t.Errorf("report status = %q, want pending", report.Status)
	}

	// The list view joins the bar name in.
	rr = env.doAuth(t, "GET", "/api/admin/reports?status=pending", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var reports []model.Report
	decodeJSON(t, rr, &reports)
	if len(reports) != 1 || reports[0].BarName != "Reported Bar" {
		t.Fatalf("reports = %+v", reports)
	}

	// Resolve, twice (idempotent); the bar is untouched.
	rr = env.doAuth(t, "PATCH", fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)
	rr = env.doAuth(t, "PATCH", fmt.Sprintf("/api/admin/reports/%d/resolve", report.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.doAuth(t, "GET", fmt.Sprintf("/api/admin/bars/%d", bar.ID), nil, token)
	var got model.Bar
	decodeJSON(t, rr, &got)
	if got.Status != model.BarStatusPending {
		t.Errorf("bar status = %q; resolving a report must not touch the bar", got.Status)
	}

	rr = env.doAuth(t, "DELETE", fmt.Sprintf("/api/admin/reports/%d", report.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)
	rr = env.doAuth(t, "GET", "/api/admin/reports", nil, token)
	decodeJSON(t, rr, &reports)
	if len(reports) != 0 {
		t.Errorf("reports after delete = %+v", reports)
	}
}

// ---------------------------------------------------------------------------
// Ban registry tests
// ---------------------------------------------------------------------------

func TestBanRegistry(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	// Both empty: validation error.
	rr := env.doAuth(t, "POST", "/api/admin/ban", jsonBody(t, map[string]string{"reason": "x"}), token)
	assertStatus(t, rr, http.StatusBadRequest)

	rr = env.doAuth(t, "POST", "/api/admin/ban",
		jsonBody(t, map[string]string{"deviceId": "bad-device", "reason": "spam"}), token)
	assertStatus(t, rr, http.StatusCreated)
	var ban model.BanEntry
	decodeJSON(t, rr, &ban)

	// Both the canonical path and the legacy alias serve the list.
	for _, path := range []string{"/api/admin/banned", "/api/admin/banned-ips"} {
		rr = env.doAuth(t, "GET", path, nil, token)
		assertStatus(t, rr, http.StatusOK)
		var bans []model.BanEntry
		decodeJSON(t, rr, &bans)
		if len(bans) != 1 {
			t.Errorf("%s: len = %d, want 1", path, len(bans))
		}
	}

	// A banned device is rejected at intake without distinguishing why.
	body := jsonBody(t, map[string]interface{}{
		"name": "Sneaky", "latitude": 1, "longitude": 1, "regularPrice": 5, "deviceId": "bad-device",
	})
	rr = env.do(t, "POST", "/api/bars", body, nil)
	assertStatus(t, rr, http.StatusForbidden)

	rr = env.do(t, "POST", "/api/reports",
		jsonBody(t, map[string]interface{}{"barId": 1, "reason": "x", "deviceId": "bad-device"}), nil)
	assertStatus(t, rr, http.StatusForbidden)

	// Lift the ban; intake opens again.
	rr = env.doAuth(t, "DELETE", fmt.Sprintf("/api/admin/banned/%d", ban.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)
	env.submitBar(t, "Sneaky", "bad-device")
}

// ---------------------------------------------------------------------------
// Stats tests
// ---------------------------------------------------------------------------

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	token := env.adminToken(t)

	first := env.submitBar(t, "one", "d1")
	env.submitBar(t, "two", "d1")
	env.submitBar(t, "three", "d2")

	rr := env.doAuth(t, "PATCH", fmt.Sprintf("/api/admin/bars/%d/approve", first.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)

	rr = env.do(t, "POST", "/api/reports",
		jsonBody(t, map[string]interface{}{"barId": first.ID, "reason": "x"}), nil)
	assertStatus(t, rr, http.StatusCreated)

	rr = env.doAuth(t, "POST", "/api/admin/ban",
		jsonBody(t, map[string]string{"ip": "203.0.113.5"}), token)
	assertStatus(t, rr, http.StatusCreated)

	rr = env.doAuth(t, "GET", "/api/admin/stats", nil, token)
	assertStatus(t, rr, http.StatusOK)
	var stats model.Stats
	decodeJSON(t, rr, &stats)

	if stats.TotalBars != 3 || stats.BarsThisWeek != 3 {
		t.Errorf("bar counts = %d/%d, want 3/3", stats.TotalBars, stats.BarsThisWeek)
	}
	if stats.ActiveDevices != 2 {
		t.Errorf("ActiveDevices = %d, want 2", stats.ActiveDevices)
	}
	if stats.Pending != 2 || stats.Approved != 1 || stats.Rejected != 0 {
		t.Errorf("status counts = %d/%d/%d", stats.Pending, stats.Approved, stats.Rejected)
	}
	if stats.Reports != 1 || stats.BannedIPs != 1 {
		t.Errorf("reports/bans = %d/%d, want 1/1", stats.Reports, stats.BannedIPs)
	}
}

// ---------------------------------------------------------------------------
// Misc endpoint tests
// ---------------------------------------------------------------------------

func TestOpenAPISpec(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/openapi.json", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "application/json")

	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	decodeJSON(t, rr, &doc)
	if doc.OpenAPI == "" {
		t.Error("expected an openapi version field")
	}
	if _, ok := doc.Paths["/api/admin/login"]; !ok {
		t.Error("expected /api/admin/login in the document paths")
	}
}

func TestErrorResponseFormat(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/admin/login",
		jsonBody(t, map[string]string{"username": "ghost", "password": "x"}), nil)
	assertStatus(t, rr, http.StatusUnauthorized)

	var resp model.ErrorResponse
	decodeJSON(t, rr, &resp)
	if resp.Error.Code != http.StatusUnauthorized {
		t.Errorf("error.code = %d, want 401", resp.Error.Code)
	}
	if resp.Error.Message == "" {
		t.Error("expected an error message")
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/healthz", nil, nil)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID on responses")
	}
}
