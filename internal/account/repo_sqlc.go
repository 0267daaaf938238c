package account

import (
	"context"
	"errors"
	"fmt"
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
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (db.User, error)
	GetUserByEmail(ctx context.Context, email string) (db.User, error)
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	UserExistsByUsername(ctx context.Context, username string) (bool, error)
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

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func toDomainUser(x db.User) (User, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return User{}, err
	}
	updatedAt, err := mustTime(x.UpdatedAt, "updated_at")
	if err != nil {
		return User{}, err
	}

	return User{
		ID:           x.ID,
		Username:     x.Username,
		Email:        x.Email,
		PasswordHash: x.PasswordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errx.E(op, errx.NotFound, err)
	}
	if taken := takenError(err); taken != nil {
		return errx.E(op, errx.Conflict, fmt.Errorf("%w: %w", taken, err))
	}
	return errx.E(op, errx.Unavailable, err)
}

func (r *repo) CreateUser(ctx context.Context, user User) (User, error) {
	const op = "account.repo.CreateUser"

	if user.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return User{}, errx.E(op, errx.Unavailable, err)
		}
		user.ID = id
	}

	row, err := r.q.CreateUser(ctx, db.CreateUserParams{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		return User{}, mapRepoError(op, err)
	}

	created, err := toDomainUser(row)
	if err != nil {
		return User{}, errx.E(op, errx.Internal, err)
	}
	return created, nil
}

func (r *repo) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	const op = "account.repo.GetUserByID"

	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return User{}, mapRepoError(op, err)
	}
	user, err := toDomainUser(row)
	if err != nil {
		return User{}, errx.E(op, errx.Internal, err)
	}
	return user, nil
}

func (r *repo) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op = "account.repo.GetUserByEmail"

	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return User{}, mapRepoError(op, err)
	}
	user, err := toDomainUser(row)
	if err != nil {
		return User{}, errx.E(op, errx.Internal, err)
	}
	return user, nil
}

func (r *repo) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "account.repo.EmailExists"

	exists, err := r.q.UserExistsByEmail(ctx, email)
	if err != nil {
		return false, mapRepoError(op, err)
	}
	return exists, nil
}

func (r *repo) UsernameExists(ctx context.Context, username string) (bool, error) {
	const op = "account.repo.UsernameExists"

	exists, err := r.q.UserExistsByUsername(ctx, username)
	if err != nil {
		return false, mapRepoError(op, err)
	}
	return exists, nil
}
