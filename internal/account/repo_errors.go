package account

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	usernameUniqueConstraint = "users_username_unique"
	emailUniqueConstraint    = "users_email_unique"
)

var (
	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already taken")
)

// takenError reports which unique constraint err violated, or nil when err is
// not a unique violation on users.
func takenError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case emailUniqueConstraint:
		return ErrEmailTaken
	case usernameUniqueConstraint:
		return ErrUsernameTaken
	default:
		return nil
	}
}
