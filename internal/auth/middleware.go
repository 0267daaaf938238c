package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/askinbilir/bookmarker-api/internal/errx"
	"github.com/askinbilir/bookmarker-api/internal/httpx"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// Verifier checks a bearer token for a scope.
type Verifier interface {
	Verify(token string, scope Scope) (Claims, error)
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}

// UserID returns the authenticated user id placed in ctx by Require.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Require rejects requests without a valid bearer token of the given scope
// and exposes the token's user id to downstream handlers.
func Require(v Verifier, scope Scope, logger *slog.Logger) httpx.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := httpx.BearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "missing bearer token",
					"request_id", httpx.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				httpx.WriteKindError(w, errx.Unauthorized, "Missing authorization token", nil)
				return
			}

			claims, err := v.Verify(token, scope)
			if err != nil {
				logger.WarnContext(ctx, "token rejected",
					"request_id", httpx.GetRequestID(ctx),
					"path", r.URL.Path,
					"scope", string(scope),
					"error", err.Error(),
				)
				httpx.WriteKindError(w, errx.Unauthorized, "Invalid or expired token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(ctx, claims.UserID)))
		})
	}
}
