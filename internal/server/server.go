package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/askinbilir/bookmarker-api/internal/account"
	"github.com/askinbilir/bookmarker-api/internal/auth"
	"github.com/askinbilir/bookmarker-api/internal/bookmark"
	"github.com/askinbilir/bookmarker-api/internal/config"
	"github.com/askinbilir/bookmarker-api/internal/httpx"
	"github.com/askinbilir/bookmarker-api/internal/ratelimit"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the handlers and collaborators the routes are built from.
type Deps struct {
	Accounts  *account.Handler
	Bookmarks *bookmark.Handler
	Tokens    auth.Verifier
	// Limiter guards register and login. Nil disables rate limiting.
	Limiter *ratelimit.KeyedRateLimiter
	DB      Pinger
}

// Server represents the HTTP server with all dependencies.
type Server struct {
	config *config.Config
	logger *slog.Logger
	deps   Deps
	server *http.Server
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// Start starts the HTTP server and blocks until ctx is done or a shutdown
// signal arrives, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())

	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(
		httpx.Chain(
			httpx.Recovery(s.logger),
			httpx.RequestID,
			httpx.Logger(s.logger),
		),
		s.cors(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	r.Get("/x/health", s.healthCheckHandler)

	requireAccess := auth.Require(s.deps.Tokens, auth.ScopeAccess, s.logger)
	requireRefresh := auth.Require(s.deps.Tokens, auth.ScopeRefresh, s.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if s.deps.Limiter != nil {
					if s.config.RateLimit.TrustProxy {
						r.Use(middleware.RealIP)
					}
					r.Use(ratelimit.Middleware(s.deps.Limiter, s.logger))
				}
				r.Post("/register", s.deps.Accounts.Register)
				r.Post("/login", s.deps.Accounts.Login)
			})

			r.With(requireAccess).Get("/me", s.deps.Accounts.Me)
			r.With(requireRefresh).Get("/token/refresh", s.deps.Accounts.RefreshToken)
		})

		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(requireAccess)

			r.Get("/", s.deps.Bookmarks.List)
			r.Post("/", s.deps.Bookmarks.Create)
			r.Get("/stats", s.deps.Bookmarks.Stats)
			r.Get("/{id}", s.deps.Bookmarks.Get)
			r.Put("/{id}", s.deps.Bookmarks.Update)
			r.Patch("/{id}", s.deps.Bookmarks.Update)
			r.Delete("/{id}", s.deps.Bookmarks.Delete)
		})
	})

	r.Get("/{code}", s.deps.Bookmarks.Redirect)

	return r
}

func (s *Server) cors() func(http.Handler) http.Handler {
	origins := s.config.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", httpx.RequestIDHeader},
		ExposedHeaders: []string{httpx.RequestIDHeader},
		MaxAge:         300,
	})
}

// healthCheckHandler reports service identity and database reachability.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := map[string]string{
		"status":   "ok",
		"service":  s.config.App.ServiceName,
		"version":  s.config.App.ServiceVersion,
		"database": "ok",
	}

	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.deps.DB.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "health check: database unreachable",
				"request_id", httpx.GetRequestID(r.Context()),
				"error", err.Error(),
			)
			status = http.StatusServiceUnavailable
			resp["status"] = "degraded"
			resp["database"] = "unavailable"
		}
	}

	httpx.WriteJSON(w, status, resp)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded, forcing close")
			return s.server.Close()
		}
		return err
	}

	return nil
}
