package bookmark

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for Bookmark entities.
// Every read and write except ResolveAndTrack is scoped to the owning user,
// so a bookmark owned by someone else is indistinguishable from a missing one.
type Repository interface {
	CreateBookmark(ctx context.Context, b Bookmark) (Bookmark, error)
	GetBookmark(ctx context.Context, userID, id uuid.UUID) (Bookmark, error)
	ListBookmarks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Bookmark, error)
	CountBookmarks(ctx context.Context, userID uuid.UUID) (int64, error)
	URLExists(ctx context.Context, url string) (bool, error)
	UpdateBookmark(ctx context.Context, b Bookmark) (Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, id uuid.UUID) error
	ListStats(ctx context.Context, userID uuid.UUID) ([]Stat, error)
	ResolveAndTrack(ctx context.Context, shortCode string) (Bookmark, error)
}
