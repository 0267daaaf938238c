package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/askinbilir/bookmarker-api/internal/auth"
	"github.com/askinbilir/bookmarker-api/internal/errx"
	"github.com/askinbilir/bookmarker-api/internal/validation"
)

// ErrInvalidCredentials is the single login failure, whether the email is
// unknown or the password is wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80,alphanum"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginRequest carries login credentials.
// Blank fields are not validated: they fail as bad credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the result of a successful login.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
}

// Service defines the account operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (User, error)
	Login(ctx context.Context, req LoginRequest) (Session, error)
	Me(ctx context.Context, userID uuid.UUID) (User, error)
	Refresh(ctx context.Context, userID uuid.UUID) (string, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) bool
	VerifyMissing(password string) bool
}

// TokenIssuer mints bearer tokens for a user id.
type TokenIssuer interface {
	IssueAccess(userID uuid.UUID) (string, error)
	IssueRefresh(userID uuid.UUID) (string, error)
}

type service struct {
	repo      Repository
	tokens    TokenIssuer
	hasher    PasswordHasher
	validator *validation.Validator
}

// ServiceConfig holds optional collaborators for the service.
type ServiceConfig struct {
	Hasher    PasswordHasher
	Validator *validation.Validator
}

// NewService creates a new account service.
func NewService(repo Repository, tokens TokenIssuer, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	hasher := config.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher()
	}

	v := config.Validator
	if v == nil {
		v = validation.New()
	}

	return &service{
		repo:      repo,
		tokens:    tokens,
		hasher:    hasher,
		validator: v,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account. Email and username taken are reported as
// Conflict both from the pre-checks and from the unique constraints.
func (s *service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	const op = "account.service.Register"

	req.Email = normalizeEmail(req.Email)

	if err := s.validator.Validate(op, req); err != nil {
		return User{}, err
	}

	taken, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return User{}, errx.Wrap(op, err)
	}
	if taken {
		return User{}, errx.E(op, errx.Conflict, ErrEmailTaken)
	}

	taken, err = s.repo.UsernameExists(ctx, req.Username)
	if err != nil {
		return User{}, errx.Wrap(op, err)
	}
	if taken {
		return User{}, errx.E(op, errx.Conflict, ErrUsernameTaken)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return User{}, errx.E(op, errx.Internal, err)
	}

	user, err := s.repo.CreateUser(ctx, User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return User{}, errx.Wrap(op, err)
	}
	return user, nil
}

// Login checks credentials and issues an access and a refresh token.
func (s *service) Login(ctx context.Context, req LoginRequest) (Session, error) {
	const op = "account.service.Login"

	req.Email = normalizeEmail(req.Email)

	if req.Email == "" || req.Password == "" {
		s.hasher.VerifyMissing(req.Password)
		return Session{}, errx.E(op, errx.Unauthorized, ErrInvalidCredentials)
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	switch {
	case errx.KindOf(err) == errx.NotFound:
		// Burn the same hashing time as a real check.
		s.hasher.VerifyMissing(req.Password)
		return Session{}, errx.E(op, errx.Unauthorized, ErrInvalidCredentials)
	case err != nil:
		return Session{}, errx.Wrap(op, err)
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return Session{}, errx.E(op, errx.Unauthorized, ErrInvalidCredentials)
	}

	access, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return Session{}, errx.E(op, errx.Internal, err)
	}
	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return Session{}, errx.E(op, errx.Internal, err)
	}

	return Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (User, error) {
	const op = "account.service.Me"

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, errx.Wrap(op, err)
	}
	return user, nil
}

// Refresh issues a new access token for the holder of a refresh token. The
// refresh token itself stays valid until it expires.
func (s *service) Refresh(ctx context.Context, userID uuid.UUID) (string, error) {
	const op = "account.service.Refresh"

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return "", errx.Wrap(op, err)
	}

	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return "", errx.E(op, errx.Internal, err)
	}
	return access, nil
}
