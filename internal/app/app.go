package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/askinbilir/bookmarker-api/internal/account"
	"github.com/askinbilir/bookmarker-api/internal/auth"
	"github.com/askinbilir/bookmarker-api/internal/bookmark"
	"github.com/askinbilir/bookmarker-api/internal/config"
	"github.com/askinbilir/bookmarker-api/internal/db/migrations"
	db "github.com/askinbilir/bookmarker-api/internal/db/sqlc"
	"github.com/askinbilir/bookmarker-api/internal/ratelimit"
	"github.com/askinbilir/bookmarker-api/internal/server"
	"github.com/askinbilir/bookmarker-api/internal/validation"
)

// limiterIdleTTL is how long an idle client bucket is kept.
const limiterIdleTTL = 10 * time.Minute

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DBPool  *pgxpool.Pool
	Server  *server.Server
	Limiter *ratelimit.KeyedRateLimiter
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"service", cfg.App.ServiceName,
		"env", cfg.App.Environment,
		"version", cfg.App.ServiceVersion,
	)

	if cfg.Database.AutoMigrate {
		logger.Info("applying database migrations")
		if err := migrations.Up(cfg.Database.URL()); err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	dbPool, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a, err := NewWithPool(cfg, logger, dbPool)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	logger.Info("application initialized",
		"addr", cfg.Server.Addr(),
		"rate_limit", cfg.RateLimit.Enabled,
	)

	return a, nil
}

// NewWithPool wires repositories, services, handlers and the server on top
// of an already connected pool. The pool is owned by the returned App.
func NewWithPool(cfg *config.Config, logger *slog.Logger, dbPool *pgxpool.Pool) (*App, error) {
	tokenKey := cfg.Auth.TokenKey
	if tokenKey == "" {
		key, err := auth.GenerateKeyHex()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token key: %w", err)
		}
		tokenKey = key
		logger.Warn("AUTH_TOKEN_KEY not set, using an ephemeral key; tokens will not survive a restart")
	}

	tokens, err := auth.NewTokenService(tokenKey, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	v := validation.New()
	queries := db.New(dbPool)

	accountRepo := account.NewRepository(queries, nil)
	accountSvc := account.NewService(accountRepo, tokens, &account.ServiceConfig{
		Hasher:    auth.NewPasswordHasher(),
		Validator: v,
	})
	accountHandler := account.NewHandler(account.HandlerConfig{
		Service: accountSvc,
		Logger:  logger,
	})

	bookmarkRepo := bookmark.NewRepository(queries, nil)
	bookmarkSvc := bookmark.NewService(bookmarkRepo, &bookmark.ServiceConfig{
		ShortCodeMaxAttempts: cfg.Bookmark.ShortCodeMaxAttempts,
		MaxPerPage:           cfg.Bookmark.MaxPerPage,
		Validator:            v,
	})
	bookmarkHandler := bookmark.NewHandler(bookmark.HandlerConfig{
		Service: bookmarkSvc,
		Logger:  logger,
	})

	var limiter *ratelimit.KeyedRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, limiterIdleTTL)
	}

	srv := server.New(cfg, logger, server.Deps{
		Accounts:  accountHandler,
		Bookmarks: bookmarkHandler,
		Tokens:    tokens,
		Limiter:   limiter,
		DB:        dbPool,
	})

	return &App{
		Config:  cfg,
		Logger:  logger,
		DBPool:  dbPool,
		Server:  srv,
		Limiter: limiter,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting",
		"addr", a.Config.Server.Addr(),
		"base_url", a.Config.Server.BaseURL,
	)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown releases the limiter sweeper and the database pool.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Limiter != nil {
		a.Limiter.Stop()
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	return nil
}

// loadEnv loads a .env file in local environments only.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "" || env == "development" || env == "test" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

// connectDatabase establishes a connection to the PostgreSQL database.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}
