// Package auth hashes passwords and issues the bearer tokens that carry a
// user's identity between requests. Tokens are self-contained: nothing about
// a session is stored server side and expiry is the only way a token ends.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/askinbilir/bookmarker-api/internal/errx"
)

const (
	tokenIssuer   = "bookmarker-api"
	tokenAudience = "bookmarker-client"
	scopeClaim    = "scope"

	// PASETO v4 symmetric keys are 256 bits.
	keyBytesSize = 32
	keyHexSize   = 64
)

// Scope limits what a token may be used for.
type Scope string

const (
	// ScopeAccess authorizes general API requests.
	ScopeAccess Scope = "access"
	// ScopeRefresh may only be exchanged for a new access token.
	ScopeRefresh Scope = "refresh"
)

// ErrInvalidToken is returned for any token that fails to decrypt, has expired,
// or carries the wrong scope.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the verified content of a token.
type Claims struct {
	UserID    uuid.UUID
	Scope     Scope
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies PASETO v4.local tokens.
type TokenService struct {
	key        paseto.V4SymmetricKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService builds a token service from a 64 character hex key.
func NewTokenService(keyHex string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("token key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for token key: %w", err)
	}
	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	return &TokenService{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// GenerateKeyHex returns a fresh random key suitable for NewTokenService.
func GenerateKeyHex() (string, error) {
	b := make([]byte, keyBytesSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IssueAccess creates a short-lived access token bound to userID.
func (s *TokenService) IssueAccess(userID uuid.UUID) (string, error) {
	return s.issue(userID, ScopeAccess, s.accessTTL)
}

// IssueRefresh creates a long-lived refresh token bound to userID.
func (s *TokenService) IssueRefresh(userID uuid.UUID) (string, error) {
	return s.issue(userID, ScopeRefresh, s.refreshTTL)
}

func (s *TokenService) issue(userID uuid.UUID, scope Scope, ttl time.Duration) (string, error) {
	const op = "auth.tokens.issue"

	jti, err := gonanoid.New()
	if err != nil {
		return "", errx.E(op, errx.Internal, fmt.Errorf("generate token id: %w", err))
	}

	now := s.now()
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(userID.String())
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))
	token.SetJti(jti)
	token.SetString(scopeClaim, string(scope))

	return token.V4Encrypt(s.key, nil), nil
}

// Verify decrypts token and checks issuer, audience, validity window and scope.
// Every failure is reported as errx.Unauthorized wrapping ErrInvalidToken.
func (s *TokenService) Verify(token string, scope Scope) (Claims, error) {
	const op = "auth.tokens.Verify"

	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))
	parser.AddRule(hasScope(scope))

	parsed, err := parser.ParseV4Local(s.key, token, nil)
	if err != nil {
		return Claims{}, errx.E(op, errx.Unauthorized, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}

	sub, err := parsed.GetSubject()
	if err != nil {
		return Claims{}, errx.E(op, errx.Unauthorized, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Claims{}, errx.E(op, errx.Unauthorized, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken))
	}

	claims := Claims{UserID: userID, Scope: scope}
	claims.TokenID, _ = parsed.GetJti()
	claims.IssuedAt, _ = parsed.GetIssuedAt()
	claims.ExpiresAt, _ = parsed.GetExpiration()
	return claims, nil
}

func hasScope(want Scope) paseto.Rule {
	return func(token paseto.Token) error {
		got, err := token.GetString(scopeClaim)
		if err != nil {
			return fmt.Errorf("missing %s claim: %w", scopeClaim, err)
		}
		if Scope(got) != want {
			return fmt.Errorf("token scope %q, want %q", got, want)
		}
		return nil
	}
}
