package bookmark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/askinbilir/bookmarker-api/internal/db/sqlc"
	"github.com/askinbilir/bookmarker-api/internal/errx"
	"github.com/askinbilir/bookmarker-api/internal/idgen"
)

// querier is the subset of *db.Queries the repository needs.
type querier interface {
	CreateBookmark(ctx context.Context, arg db.CreateBookmarkParams) (db.Bookmark, error)
	GetBookmarkForUser(ctx context.Context, arg db.GetBookmarkForUserParams) (db.Bookmark, error)
	ListBookmarksByUser(ctx context.Context, arg db.ListBookmarksByUserParams) ([]db.Bookmark, error)
	CountBookmarksByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	BookmarkExistsByURL(ctx context.Context, url string) (bool, error)
	UpdateBookmarkForUser(ctx context.Context, arg db.UpdateBookmarkForUserParams) (db.Bookmark, error)
	DeleteBookmarkForUser(ctx context.Context, arg db.DeleteBookmarkForUserParams) (int64, error)
	ListBookmarkStatsByUser(ctx context.Context, userID uuid.UUID) ([]db.ListBookmarkStatsByUserRow, error)
	ResolveAndTrackBookmark(ctx context.Context, shortUrl string) (db.Bookmark, error)
}

type repo struct {
	q   querier
	ids idgen.Generator
}

// RepositoryConfig holds configuration for the repository.
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

// NewRepository creates a Repository backed by sqlc queries.
func NewRepository(q querier, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}
	if config.IDGenerator == nil {
		config.IDGenerator = idgen.NewV7()
	}

	return &repo{
		q:   q,
		ids: config.IDGenerator,
	}
}

var errNoRowsAffected = errors.New("no rows affected")

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func toDomainBookmark(x db.Bookmark) (Bookmark, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Bookmark{}, err
	}
	updatedAt, err := mustTime(x.UpdatedAt, "updated_at")
	if err != nil {
		return Bookmark{}, err
	}

	return Bookmark{
		ID:        x.ID,
		UserID:    x.UserID,
		URL:       x.Url,
		Body:      x.Body,
		ShortCode: x.ShortUrl,
		Visits:    x.Visits,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, errNoRowsAffected) {
		return errx.E(op, errx.NotFound, err)
	}
	if taken := takenError(err); taken != nil {
		return errx.E(op, errx.Conflict, fmt.Errorf("%w: %w", taken, err))
	}
	return errx.E(op, errx.Unavailable, err)
}

func (r *repo) one(op string, row db.Bookmark, err error) (Bookmark, error) {
	if err != nil {
		return Bookmark{}, mapRepoError(op, err)
	}
	b, err := toDomainBookmark(row)
	if err != nil {
		return Bookmark{}, errx.E(op, errx.Internal, err)
	}
	return b, nil
}

func (r *repo) CreateBookmark(ctx context.Context, b Bookmark) (Bookmark, error) {
	const op = "bookmark.repo.CreateBookmark"

	if b.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Bookmark{}, errx.E(op, errx.Unavailable, err)
		}
		b.ID = id
	}

	row, err := r.q.CreateBookmark(ctx, db.CreateBookmarkParams{
		ID:       b.ID,
		UserID:   b.UserID,
		Url:      b.URL,
		Body:     b.Body,
		ShortUrl: b.ShortCode,
	})
	return r.one(op, row, err)
}

func (r *repo) GetBookmark(ctx context.Context, userID, id uuid.UUID) (Bookmark, error) {
	const op = "bookmark.repo.GetBookmark"

	row, err := r.q.GetBookmarkForUser(ctx, db.GetBookmarkForUserParams{ID: id, UserID: userID})
	return r.one(op, row, err)
}

func (r *repo) ListBookmarks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Bookmark, error) {
	const op = "bookmark.repo.ListBookmarks"

	if limit < 0 || offset < 0 || limit > math.MaxInt32 || offset > math.MaxInt32 {
		return nil, errx.E(op, errx.Invalid, fmt.Errorf("limit %d / offset %d out of range", limit, offset))
	}

	rows, err := r.q.ListBookmarksByUser(ctx, db.ListBookmarksByUserParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	out := make([]Bookmark, 0, len(rows))
	for _, row := range rows {
		b, err := toDomainBookmark(row)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *repo) CountBookmarks(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "bookmark.repo.CountBookmarks"

	n, err := r.q.CountBookmarksByUser(ctx, userID)
	if err != nil {
		return 0, mapRepoError(op, err)
	}
	return n, nil
}

func (r *repo) URLExists(ctx context.Context, url string) (bool, error) {
	const op = "bookmark.repo.URLExists"

	exists, err := r.q.BookmarkExistsByURL(ctx, url)
	if err != nil {
		return false, mapRepoError(op, err)
	}
	return exists, nil
}

func (r *repo) UpdateBookmark(ctx context.Context, b Bookmark) (Bookmark, error) {
	const op = "bookmark.repo.UpdateBookmark"

	row, err := r.q.UpdateBookmarkForUser(ctx, db.UpdateBookmarkForUserParams{
		ID:     b.ID,
		UserID: b.UserID,
		Url:    b.URL,
		Body:   b.Body,
	})
	return r.one(op, row, err)
}

func (r *repo) DeleteBookmark(ctx context.Context, userID, id uuid.UUID) error {
	const op = "bookmark.repo.DeleteBookmark"

	n, err := r.q.DeleteBookmarkForUser(ctx, db.DeleteBookmarkForUserParams{ID: id, UserID: userID})
	if err != nil {
		return mapRepoError(op, err)
	}
	if n == 0 {
		return mapRepoError(op, errNoRowsAffected)
	}
	return nil
}

func (r *repo) ListStats(ctx context.Context, userID uuid.UUID) ([]Stat, error) {
	const op = "bookmark.repo.ListStats"

	rows, err := r.q.ListBookmarkStatsByUser(ctx, userID)
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	out := make([]Stat, 0, len(rows))
	for _, row := range rows {
		out = append(out, Stat{
			ID:        row.ID,
			Visits:    row.Visits,
			URL:       row.Url,
			ShortCode: row.ShortUrl,
		})
	}
	return out, nil
}

func (r *repo) ResolveAndTrack(ctx context.Context, shortCode string) (Bookmark, error) {
	const op = "bookmark.repo.ResolveAndTrack"

	row, err := r.q.ResolveAndTrackBookmark(ctx, shortCode)
	return r.one(op, row, err)
}
