package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/budbeer/console/internal/server"
	"github.com/budbeer/console/internal/service"
	"github.com/budbeer/console/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the console API server",
		Long:  "Start the HTTP server that exposes the admin console and public intake APIs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, CORS *)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	logger := newLogger(dev)

	// 1. Open the store
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("store opened", "driver", viperStringOr("store.driver", "sqlite"))

	// 2. Wire services
	jwtSecret := viper.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not set (BUDBEER_AUTH_JWT_SECRET or console.yaml)")
	}
	authSvc := service.NewAuthService(st, service.AuthConfig{
		JWTSecret:    jwtSecret,
		SessionTTL:   viperDurationOr("auth.session_ttl", 24*time.Hour),
		ChallengeTTL: viperDurationOr("auth.challenge_ttl", 5*time.Minute),
		Logger:       logger,
	})
	twoFactorSvc := service.NewTwoFactorService(st, viper.GetString("auth.totp_issuer"))
	moderationSvc := service.NewModerationService(st)
	trustSvc := service.NewTrustService(st)

	// 3. First-run check
	hasAdmin, err := st.HasAnyAdmin(context.Background())
	if err != nil {
		logger.Warn("failed to check for admin", "error", err)
	}
	if !hasAdmin {
		logger.Warn("no admin account found - run: console admin create")
	}

	// 4. Build and start HTTP server
	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	if origins := viper.GetStringSlice("server.cors.origins"); len(origins) > 0 && !dev {
		srvCfg.CORSOrigins = origins
	}
	if viper.IsSet("server.login_rate_limit") {
		srvCfg.LoginRateLimit = viper.GetInt("server.login_rate_limit")
	}
	if viper.IsSet("server.intake_rate_limit") {
		srvCfg.IntakeRateLimit = viper.GetInt("server.intake_rate_limit")
	}
	srvCfg.ShutdownTimeout = viperDurationOr("server.shutdown_timeout", 30*time.Second)

	srv := server.New(srvCfg, st, authSvc, twoFactorSvc, moderationSvc, trustSvc, logger)

	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ OpenAPI:  http://%s:%d/openapi.json\n", host, port)
	fmt.Printf("→ Health:   http://%s:%d/healthz\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}

// openStore builds store options from the loaded configuration.
func openStore() (*store.Store, error) {
	return store.Open(store.Options{
		Driver:  viper.GetString("store.driver"),
		DataDir: viperStringOr("store.data_dir", "./data"),
		DSN:     viper.GetString("store.dsn"),
	})
}

func newLogger(dev bool) *slog.Logger {
	level := slog.LevelInfo
	switch viper.GetString("logging.level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if dev {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if viper.GetString("logging.format") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func viperStringOr(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func viperDurationOr(key string, fallback time.Duration) time.Duration {
	if v := viper.GetDuration(key); v > 0 {
		return v
	}
	return fallback
}
