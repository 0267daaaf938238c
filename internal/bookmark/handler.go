package bookmark

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/askinbilir/bookmarker-api/internal/auth"
	"github.com/askinbilir/bookmarker-api/internal/errx"
	"github.com/askinbilir/bookmarker-api/internal/httpx"
	"github.com/askinbilir/bookmarker-api/internal/validation"
)

// BookmarkResponse is the JSON form of a bookmark.
type BookmarkResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ShortURL  string    `json:"short_url"`
	Visits    int64     `json:"visits"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetaResponse is the pagination block of a listing.
type MetaResponse struct {
	CurrentPage   int   `json:"current_page"`
	PageCount     int   `json:"page_count"`
	BookmarkCount int64 `json:"bookmark_count"`
	PrevPage      *int  `json:"prev_page"`
	NextPage      *int  `json:"next_page"`
	HasPrev       bool  `json:"has_prev"`
	HasNext       bool  `json:"has_next"`
}

// ListResponse is returned by List.
type ListResponse struct {
	Data []BookmarkResponse `json:"data"`
	Meta MetaResponse       `json:"meta"`
}

// StatResponse is one row of the stats report.
type StatResponse struct {
	ID       string `json:"id"`
	Visits   int64  `json:"visits"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
}

// StatsResponse is returned by Stats.
type StatsResponse struct {
	Data []StatResponse `json:"data"`
}

// Handler provides HTTP handlers for the bookmark service.
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

func toResponse(b Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:        b.ID.String(),
		URL:       b.URL,
		ShortURL:  b.ShortCode,
		Visits:    b.Visits,
		Body:      b.Body,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// owner returns the authenticated user, answering 401 when there is none.
func owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.WriteKindError(w, errx.Unauthorized, "Missing authorization token", nil)
	}
	return userID, ok
}

// bookmarkID parses the {id} path segment. A malformed id cannot name any
// bookmark, so it is answered like a missing one.
func bookmarkID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteKindError(w, errx.NotFound, "Bookmark not found", nil)
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /bookmarks/.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := owner(w, r)
	if !ok {
		return
	}

	page, err := httpx.QueryInt(r, "page", DefaultPage)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}
	perPage, err := httpx.QueryInt(r, "per_page", DefaultPerPage)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	result, err := h.service.List(ctx, userID, page, perPage)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	data := make([]BookmarkResponse, 0, len(result.Bookmarks))
	for _, b := range result.Bookmarks {
		data = append(data, toResponse(b))
	}

	httpx.WriteJSON(w, http.StatusOK, ListResponse{
		Data: data,
		Meta: MetaResponse{
			CurrentPage:   result.Meta.CurrentPage,
			PageCount:     result.Meta.PageCount,
			BookmarkCount: result.Meta.BookmarkCount,
			PrevPage:      result.Meta.PrevPage,
			NextPage:      result.Meta.NextPage,
			HasPrev:       result.Meta.HasPrev,
			HasNext:       result.Meta.HasNext,
		},
	})
}

// Create handles POST /bookmarks/.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := owner(w, r)
	if !ok {
		return
	}

	req, err := httpx.DecodeJSON[CreateRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	b, err := h.service.Create(ctx, userID, req)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "bookmark created",
		"bookmark_id", b.ID.String(),
		"short_code", b.ShortCode,
	)

	httpx.WriteJSON(w, http.StatusCreated, toResponse(b))
}

// Get handles GET /bookmarks/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := bookmarkID(w, r)
	if !ok {
		return
	}

	b, err := h.service.Get(ctx, userID, id)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toResponse(b))
}

// Update handles PUT and PATCH /bookmarks/{id}. Both replace url and body.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := bookmarkID(w, r)
	if !ok {
		return
	}

	req, err := httpx.DecodeJSON[UpdateRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	b, err := h.service.Update(ctx, userID, id, req)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "bookmark updated", "bookmark_id", b.ID.String())

	httpx.WriteJSON(w, http.StatusOK, toResponse(b))
}

// Delete handles DELETE /bookmarks/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := owner(w, r)
	if !ok {
		return
	}
	id, ok := bookmarkID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID, id); err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "bookmark deleted", "bookmark_id", id.String())

	httpx.WriteNoContent(w)
}

// Stats handles GET /bookmarks/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	userID, ok := owner(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(ctx, userID)
	if err != nil {
		h.handleError(ctx, logger, w, err)
		return
	}

	data := make([]StatResponse, 0, len(stats))
	for _, s := range stats {
		data = append(data, StatResponse{
			ID:       s.ID.String(),
			Visits:   s.Visits,
			URL:      s.URL,
			ShortURL: s.ShortCode,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, StatsResponse{Data: data})
}

// Redirect handles GET /{code}: it counts the visit and sends the client on
// to the bookmarked URL.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code := chi.URLParam(r, "code")

	target, err := h.service.Resolve(ctx, code)
	if err != nil {
		if errx.KindOf(err) == errx.NotFound {
			logger.WarnContext(ctx, "short code not found", "short_code", code)
			httpx.WriteKindError(w, errx.NotFound, "Short link doesn't exist", nil)
			return
		}
		h.handleError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "short code resolved",
		"short_code", code,
		"user_agent", r.UserAgent(),
		"referer", r.Referer(),
	)

	http.Redirect(w, r, target, http.StatusFound)
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
		logger.WarnContext(ctx, "invalid bookmark request", logAttrs...)
		var details any
		if fields := validation.Details(err); fields != nil {
			details = fields
		}
		httpx.WriteKindError(w, kind, "Invalid input", details)

	case errx.NotFound:
		if errors.Is(err, ErrPageOutOfRange) {
			logger.WarnContext(ctx, "page not found", logAttrs...)
			httpx.WriteKindError(w, kind, "Page not found", nil)
			return
		}
		logger.WarnContext(ctx, "bookmark not found", logAttrs...)
		httpx.WriteKindError(w, kind, "Bookmark not found", nil)

	case errx.Conflict:
		logger.WarnContext(ctx, "bookmark conflict", logAttrs...)
		message := "Bookmark already exists"
		if errors.Is(err, ErrURLTaken) {
			message = "URL already exists"
		}
		httpx.WriteKindError(w, kind, message, nil)

	case errx.Exhausted:
		logger.ErrorContext(ctx, "short codes exhausted", logAttrs...)
		httpx.WriteKindError(w, kind, "Unable to allocate a short link. Please try again.", nil)

	case errx.Unavailable:
		logger.ErrorContext(ctx, "service unavailable", logAttrs...)
		httpx.WriteKindError(w, kind, "Service temporarily unavailable. Please try again.", nil)

	default:
		logger.ErrorContext(ctx, "unexpected bookmark error", logAttrs...)
		httpx.WriteKindError(w, errx.Internal, "Unable to process request at this time", nil)
	}
}
