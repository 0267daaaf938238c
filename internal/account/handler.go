package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/askinbilir/bookmarker-api/internal/auth"
	"github.com/askinbilir/bookmarker-api/internal/errx"
	"github.com/askinbilir/bookmarker-api/internal/httpx"
	"github.com/askinbilir/bookmarker-api/internal/validation"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse is returned by Register.
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// LoginUser is the user section of a login response.
type LoginUser struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}

// LoginResponse is returned by Login.
type LoginResponse struct {
	User LoginUser `json:"user"`
}

// RefreshResponse is returned by RefreshToken.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Handler provides HTTP handlers for the account service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[RegisterRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	user, err := h.service.Register(ctx, req)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())

	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Message: "User created",
		User:    UserResponse{Username: user.Username, Email: user.Email},
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[LoginRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	session, err := h.service.Login(ctx, req)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "user logged in", "user_id", session.User.ID.String())

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		User: LoginUser{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			Username:     session.User.Username,
			Email:        session.User.Email,
		},
	})
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteKindError(w, errx.Unauthorized, "Missing authorization token", nil)
		return
	}

	user, err := h.service.Me(ctx, userID)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{Username: user.Username, Email: user.Email})
}

// RefreshToken handles GET /auth/token/refresh.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteKindError(w, errx.Unauthorized, "Missing authorization token", nil)
		return
	}

	access, err := h.service.Refresh(ctx, userID)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, RefreshResponse{AccessToken: access})
}

func (h *Handler) handleError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Invalid:
		logger.WarnContext(ctx, "invalid account request", logAttrs...)
		var details any
		if fields := validation.Details(err); fields != nil {
			details = fields
		}
		httpx.WriteKindError(w, kind, "Invalid input", details)

	case errx.Conflict:
		logger.WarnContext(ctx, "account conflict", logAttrs...)
		message := "Account already exists"
		switch {
		case errors.Is(err, ErrEmailTaken):
			message = "Email is already registered"
		case errors.Is(err, ErrUsernameTaken):
			message = "Username is already taken"
		}
		httpx.WriteKindError(w, kind, message, nil)

	case errx.Unauthorized:
		logger.WarnContext(ctx, "authentication failed", logAttrs...)
		httpx.WriteKindError(w, kind, "Invalid email or password", nil)

	case errx.NotFound:
		logger.WarnContext(ctx, "user not found", logAttrs...)
		httpx.WriteKindError(w, kind, "User not found", nil)

	case errx.Unavailable:
		logger.ErrorContext(ctx, "service unavailable", logAttrs...)
		httpx.WriteKindError(w, kind, "Service temporarily unavailable. Please try again.", nil)

	default:
		logger.ErrorContext(ctx, "unexpected account error", logAttrs...)
		httpx.WriteKindError(w, errx.Internal, "Unable to process request at this time", nil)
	}
}
