// Package main is the entrypoint for the kontobank API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/kontobank/kontobank/internal/auth"
	"github.com/kontobank/kontobank/internal/cache"
	"github.com/kontobank/kontobank/internal/config"
	"github.com/kontobank/kontobank/internal/handler"
	"github.com/kontobank/kontobank/internal/metrics"
	"github.com/kontobank/kontobank/internal/middleware"
	"github.com/kontobank/kontobank/internal/repository"
	"github.com/kontobank/kontobank/internal/server"
	"github.com/kontobank/kontobank/internal/service"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", sanitizeError(err, os.Getenv("DATABASE_URL"), os.Getenv("REDIS_URL")))
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.Options{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        min(2, cfg.DBMaxConns),
		ConnectAttempts: cfg.DBConnectAttempts,
		ConnectInterval: cfg.DBConnectInterval,
		QueryTimeout:    cfg.DBQueryTimeout,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	defer repo.Close()
	logger.Info("connected to database")

	if err := repo.Migrate(ctx, logger); err != nil {
		return err
	}

	recorder := metrics.NewInMemory()

	// The session cache is optional; leave the interface nil when disabled.
	var sessionCache service.SessionCache
	var cacheHealth handler.HealthChecker
	if cfg.CacheEnabled() {
		cacheClient, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			return err
		}
		defer cacheClient.Close()
		sessionCache = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Info("session cache disabled")
	}

	hasher := auth.NewHasher(auth.DefaultParams)
	credentials := service.NewCredentialStore(repo, hasher)
	ledger := service.NewLedger(repo, recorder)
	sessions := service.NewSessionRegistry(repo, sessionCache, cfg.SessionTTL, logger, recorder)
	authService := service.NewAuthService(repo, credentials, ledger, sessions, logger, recorder)
	balanceService := service.NewBalanceService(sessions, ledger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	router := handler.NewRouter(handler.RouterConfig{
		Index:    handler.New(version),
		Health:   handler.NewHealthHandler(repo, cacheHealth, logger),
		Metrics:  handler.NewMetricsHandler(recorder),
		Auth:     handler.NewAuthHandler(authService, logger),
		Accounts: handler.NewAccountHandler(balanceService, logger),
		Logger:   logger,
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORS:        corsCfg,
		PrintStacks: cfg.IsDevelopment(),
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	sweeper := service.NewSessionSweeper(sessions, cfg.SessionSweepInterval, logger)
	go func() {
		if err := sweeper.Run(ctx); err != nil {
			logger.Error("session sweeper stopped", "error", err)
		}
	}()
	srv.OnShutdown("session-sweeper", sweeper.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"session_ttl", cfg.SessionTTL,
		"session_cache", cfg.CacheEnabled(),
	)

	return srv.Run(ctx)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "kontobank")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection URL, keeping the username.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	q := parsed.Query()
	if q.Has("password") {
		q.Set("password", "redacted")
		parsed.RawQuery = q.Encode()
	}

	return parsed.String()
}

// sanitizeError replaces every secret-bearing URL in err's message with its
// redacted form and masks any remaining password=... fragments.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
