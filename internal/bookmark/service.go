package bookmark

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/askinbilir/bookmarker-api/internal/errx"
	"github.com/askinbilir/bookmarker-api/internal/validation"
	"github.com/askinbilir/bookmarker-api/shortcode"
)

const (
	DefaultPage                 = 1
	DefaultPerPage              = 5
	DefaultMaxPerPage           = 100
	DefaultShortCodeMaxAttempts = 10
)

// ErrShortCodesExhausted is returned when every drawn short code collided.
var ErrShortCodesExhausted = errors.New("could not allocate a unique short code")

// ErrPageOutOfRange is returned when a listing page lies past the last one.
var ErrPageOutOfRange = errors.New("page out of range")

// CreateRequest carries the fields of a new bookmark.
type CreateRequest struct {
	URL  string `json:"url" validate:"required,http_url,max=2048"`
	Body string `json:"body"`
}

// UpdateRequest replaces url and body of a bookmark. A missing body clears it.
type UpdateRequest struct {
	URL  string `json:"url" validate:"required,http_url,max=2048"`
	Body string `json:"body"`
}

// Service defines the bookmark operations. All but Resolve act on the
// bookmarks of ownerID only.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreateRequest) (Bookmark, error)
	List(ctx context.Context, ownerID uuid.UUID, page, perPage int) (Page, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Bookmark, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateRequest) (Bookmark, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) ([]Stat, error)
	Resolve(ctx context.Context, code string) (string, error)
}

type service struct {
	repo                 Repository
	codes                shortcode.Generator
	shortCodeMaxAttempts int
	maxPerPage           int
	validator            *validation.Validator
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	ShortCodeGenerator   shortcode.Generator
	ShortCodeMaxAttempts int // candidates drawn per Create (default: 10)
	MaxPerPage           int // per_page above this is clamped (default: 100)
	Validator            *validation.Validator
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	codes := config.ShortCodeGenerator
	if codes == nil {
		codes = shortcode.NewBase62()
	}

	attempts := config.ShortCodeMaxAttempts
	if attempts <= 0 {
		attempts = DefaultShortCodeMaxAttempts
	}

	maxPerPage := config.MaxPerPage
	if maxPerPage <= 0 {
		maxPerPage = DefaultMaxPerPage
	}

	v := config.Validator
	if v == nil {
		v = validation.New()
	}

	return &service{
		repo:                 repo,
		codes:                codes,
		shortCodeMaxAttempts: attempts,
		maxPerPage:           maxPerPage,
		validator:            v,
	}
}

// Create stores a bookmark under a freshly drawn short code. A code that
// collides with an existing one is replaced by a new draw, up to the
// configured number of attempts.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreateRequest) (Bookmark, error) {
	const op = "bookmark.service.Create"

	req.URL = strings.TrimSpace(req.URL)
	if err := s.validator.Validate(op, req); err != nil {
		return Bookmark{}, err
	}

	taken, err := s.repo.URLExists(ctx, req.URL)
	if err != nil {
		return Bookmark{}, errx.Wrap(op, err)
	}
	if taken {
		return Bookmark{}, errx.E(op, errx.Conflict, ErrURLTaken)
	}

	for range s.shortCodeMaxAttempts {
		code, err := s.codes.Generate(shortcode.Length)
		if err != nil {
			return Bookmark{}, errx.E(op, errx.Unavailable, err)
		}

		created, err := s.repo.CreateBookmark(ctx, Bookmark{
			UserID:    ownerID,
			URL:       req.URL,
			Body:      req.Body,
			ShortCode: code,
		})
		if err == nil {
			return created, nil
		}

		if errx.KindOf(err) != errx.Conflict || !errors.Is(err, ErrShortCodeTaken) {
			return Bookmark{}, errx.Wrap(op, err)
		}
	}

	return Bookmark{}, errx.E(op, errx.Exhausted,
		fmt.Errorf("%w after %d attempts", ErrShortCodesExhausted, s.shortCodeMaxAttempts))
}

// List returns one page of the owner's bookmarks, oldest first. A page past
// the last one is NotFound, except page 1 of an empty listing.
func (s *service) List(ctx context.Context, ownerID uuid.UUID, page, perPage int) (Page, error) {
	const op = "bookmark.service.List"

	if err := s.validator.Var(op, "page", page, "gte=1"); err != nil {
		return Page{}, err
	}
	if err := s.validator.Var(op, "per_page", perPage, "gte=1"); err != nil {
		return Page{}, err
	}
	perPage = min(perPage, s.maxPerPage)

	total, err := s.repo.CountBookmarks(ctx, ownerID)
	if err != nil {
		return Page{}, errx.Wrap(op, err)
	}

	meta := newPageMeta(page, perPage, total)
	if page > 1 && page > meta.PageCount {
		return Page{}, errx.E(op, errx.NotFound,
			fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, meta.PageCount))
	}

	items, err := s.repo.ListBookmarks(ctx, ownerID, perPage, (page-1)*perPage)
	if err != nil {
		return Page{}, errx.Wrap(op, err)
	}

	return Page{Bookmarks: items, Meta: meta}, nil
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (Bookmark, error) {
	const op = "bookmark.service.Get"

	b, err := s.repo.GetBookmark(ctx, ownerID, id)
	if err != nil {
		return Bookmark{}, errx.Wrap(op, err)
	}
	return b, nil
}

// Update replaces url and body. Short code and visits are never touched.
func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateRequest) (Bookmark, error) {
	const op = "bookmark.service.Update"

	current, err := s.repo.GetBookmark(ctx, ownerID, id)
	if err != nil {
		return Bookmark{}, errx.Wrap(op, err)
	}

	req.URL = strings.TrimSpace(req.URL)
	if err := s.validator.Validate(op, req); err != nil {
		return Bookmark{}, err
	}

	if req.URL != current.URL {
		taken, err := s.repo.URLExists(ctx, req.URL)
		if err != nil {
			return Bookmark{}, errx.Wrap(op, err)
		}
		if taken {
			return Bookmark{}, errx.E(op, errx.Conflict, ErrURLTaken)
		}
	}

	current.URL = req.URL
	current.Body = req.Body

	updated, err := s.repo.UpdateBookmark(ctx, current)
	if err != nil {
		return Bookmark{}, errx.Wrap(op, err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const op = "bookmark.service.Delete"

	if err := s.repo.DeleteBookmark(ctx, ownerID, id); err != nil {
		return errx.Wrap(op, err)
	}
	return nil
}

func (s *service) Stats(ctx context.Context, ownerID uuid.UUID) ([]Stat, error) {
	const op = "bookmark.service.Stats"

	stats, err := s.repo.ListStats(ctx, ownerID)
	if err != nil {
		return nil, errx.Wrap(op, err)
	}
	return stats, nil
}

// Resolve returns the URL behind code and counts the visit.
func (s *service) Resolve(ctx context.Context, code string) (string, error) {
	const op = "bookmark.service.Resolve"

	if !shortcode.Valid(code) {
		return "", errx.E(op, errx.NotFound, fmt.Errorf("%q is not a short code", code))
	}

	b, err := s.repo.ResolveAndTrack(ctx, code)
	if err != nil {
		return "", errx.Wrap(op, err)
	}
	return b.URL, nil
}
