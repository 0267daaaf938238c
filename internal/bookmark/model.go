package bookmark

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark is a saved URL owned by one user.
type Bookmark struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	URL       string
	Body      string
	ShortCode string
	Visits    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stat is the reporting view of a bookmark.
type Stat struct {
	ID        uuid.UUID
	Visits    int64
	URL       string
	ShortCode string
}

// Page is one page of a user's bookmarks.
type Page struct {
	Bookmarks []Bookmark
	Meta      PageMeta
}

// PageMeta describes where a Page sits in the full listing.
// PrevPage and NextPage are nil when there is no such page.
type PageMeta struct {
	CurrentPage   int
	PageCount     int
	BookmarkCount int64
	PrevPage      *int
	NextPage      *int
	HasPrev       bool
	HasNext       bool
}

func newPageMeta(page, perPage int, total int64) PageMeta {
	pageCount := int((total + int64(perPage) - 1) / int64(perPage))

	meta := PageMeta{
		CurrentPage:   page,
		PageCount:     pageCount,
		BookmarkCount: total,
		HasPrev:       page > 1,
		HasNext:       page < pageCount,
	}
	if meta.HasPrev {
		prev := page - 1
		meta.PrevPage = &prev
	}
	if meta.HasNext {
		next := page + 1
		meta.NextPage = &next
	}
	return meta
}
