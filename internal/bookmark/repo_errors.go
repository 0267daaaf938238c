package bookmark

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	urlUniqueConstraint       = "bookmarks_url_unique"
	shortCodeUniqueConstraint = "bookmarks_short_url_unique"
)

var (
	ErrURLTaken       = errors.New("url is already bookmarked")
	ErrShortCodeTaken = errors.New("short code is already in use")
)

func takenError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case urlUniqueConstraint:
		return ErrURLTaken
	case shortCodeUniqueConstraint:
		return ErrShortCodeTaken
	default:
		return nil
	}
}
