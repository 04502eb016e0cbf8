package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/budbeer/console/internal/handler"
	"github.com/budbeer/console/internal/openapi"
	"github.com/budbeer/console/internal/server/middleware"
	"github.com/budbeer/console/internal/service"
	"github.com/budbeer/console/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Requests per minute. Zero disables the corresponding limiter.
	LoginRateLimit  int
	IntakeRateLimit int
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		LoginRateLimit:  10,
		IntakeRateLimit: 30,
	}
}

// Server is the console's HTTP server. It owns the Chi router, the store,
// and the services behind the admin and public intake APIs.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	auth       *service.AuthService
	twoFactor  *service.TwoFactorService
	moderation *service.ModerationService
	trust      *service.TrustService
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, auth *service.AuthService, twoFactor *service.TwoFactorService,
	moderation *service.ModerationService, trust *service.TrustService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		store:      st,
		auth:       auth,
		twoFactor:  twoFactor,
		moderation: moderation,
		trust:      trust,
		logger:     logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-ID", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	authHandler := handler.NewAuthHandler(s.auth, s.twoFactor)
	barsHandler := handler.NewBarsHandler(s.moderation)
	reportsHandler := handler.NewReportsHandler(s.moderation)
	bansHandler := handler.NewBansHandler(s.trust)
	statsHandler := handler.NewStatsHandler(s.moderation, s.trust)
	publicHandler := handler.NewPublicHandler(s.moderation, s.trust)

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// --- OpenAPI spec (no auth required) ---
	r.Get("/openapi.json", openapi.Handler())

	r.Route("/api", func(r chi.Router) {

		// Public intake from the mobile app
		r.Group(func(r chi.Router) {
			if s.cfg.IntakeRateLimit > 0 {
				r.Use(middleware.RateLimitBySubmitter(s.cfg.IntakeRateLimit))
			}
			r.Post("/bars", publicHandler.SubmitBar)
			r.Post("/reports", publicHandler.SubmitReport)
		})

		r.Route("/admin", func(r chi.Router) {

			// Login flow is unauthenticated but throttled
			r.Group(func(r chi.Router) {
				if s.cfg.LoginRateLimit > 0 {
					r.Use(middleware.RateLimit(s.cfg.LoginRateLimit))
				}
				r.Post("/login", authHandler.Login)
				r.Post("/verify-2fa", authHandler.Verify2FA)
			})

			// Everything else requires a session token
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(s.auth))

				// Two-factor settings
				r.Get("/2fa-status", authHandler.Status2FA)
				r.Get("/setup-2fa", authHandler.Setup2FA)
				r.Post("/setup-2fa", authHandler.Setup2FA)
				r.Post("/enable-2fa", authHandler.Enable2FA)
				r.Post("/disable-2fa", authHandler.Disable2FA)

				// Moderation queue
				r.Get("/bars", barsHandler.List)
				r.Post("/bars", barsHandler.Create)
				r.Get("/bars/{id}", barsHandler.Get)
				r.Put("/bars/{id}", barsHandler.Update)
				r.Patch("/bars/{id}/approve", barsHandler.Approve)
				r.Patch("/bars/{id}/reject", barsHandler.Reject)
				r.Delete("/bars/{id}", barsHandler.Delete)

				// Abuse reports
				r.Get("/reports", reportsHandler.List)
				r.Patch("/reports/{id}/resolve", reportsHandler.Resolve)
				r.Delete("/reports/{id}", reportsHandler.Delete)

				// Ban registry. The banned-ips alias matches what older
				// console builds request.
				r.Get("/banned", bansHandler.List)
				r.Get("/banned-ips", bansHandler.List)
				r.Post("/ban", bansHandler.Create)
				r.Delete("/banned/{id}", bansHandler.Delete)

				// Dashboard
				r.Get("/stats", statsHandler.Get)
			})
		})
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the store is
// reachable, or 503 when it is not.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": status})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the store.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("store close", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
