package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askinbilir/bookmarker-api/internal/errx"
)

const testKeyHex = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	return ts
}

func TestNewTokenService_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		access  time.Duration
		refresh time.Duration
	}{
		{name: "short key", key: "abcd", access: time.Minute, refresh: time.Hour},
		{name: "non hex key", key: strings.Repeat("zz", 32), access: time.Minute, refresh: time.Hour},
		{name: "zero access ttl", key: testKeyHex, access: 0, refresh: time.Hour},
		{name: "negative refresh ttl", key: testKeyHex, access: time.Minute, refresh: -time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.key, tt.access, tt.refresh)
			assert.Error(t, err)
		})
	}
}

func TestGenerateKeyHex(t *testing.T) {
	key, err := GenerateKeyHex()
	require.NoError(t, err)
	assert.Len(t, key, keyHexSize)

	_, err = NewTokenService(key, time.Minute, time.Hour)
	assert.NoError(t, err)
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	userID := uuid.Must(uuid.NewV7())

	token, err := ts.IssueAccess(userID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := ts.Verify(token, ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, ScopeAccess, claims.Scope)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, claims.IssuedAt.Add(15*time.Minute), claims.ExpiresAt, time.Second)
}

func TestTokenService_RefreshRoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	userID := uuid.Must(uuid.NewV7())

	token, err := ts.IssueRefresh(userID)
	require.NoError(t, err)

	claims, err := ts.Verify(token, ScopeRefresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, claims.IssuedAt.Add(30*24*time.Hour), claims.ExpiresAt, time.Second)
}

func TestTokenService_ScopesAreNotInterchangeable(t *testing.T) {
	ts := newTestTokenService(t)
	userID := uuid.Must(uuid.NewV7())

	access, err := ts.IssueAccess(userID)
	require.NoError(t, err)
	refresh, err := ts.IssueRefresh(userID)
	require.NoError(t, err)

	_, err = ts.Verify(access, ScopeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, errx.Unauthorized, errx.KindOf(err))

	_, err = ts.Verify(refresh, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, errx.Unauthorized, errx.KindOf(err))
}

func TestTokenService_RejectsExpired(t *testing.T) {
	issuer := newTestTokenService(t)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.IssueAccess(uuid.Must(uuid.NewV7()))
	require.NoError(t, err)

	_, err = newTestTokenService(t).Verify(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsForeignKeyAndGarbage(t *testing.T) {
	other, err := NewTokenService(strings.Repeat("ab", 32), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := other.IssueAccess(uuid.Must(uuid.NewV7()))
	require.NoError(t, err)

	ts := newTestTokenService(t)
	for _, tok := range []string{token, "", "not-a-token", "v4.local.AAAA"} {
		_, err := ts.Verify(tok, ScopeAccess)
		assert.Equal(t, errx.Unauthorized, errx.KindOf(err), "token %q", tok)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	}
}

func TestTokenService_DistinctTokenIDs(t *testing.T) {
	ts := newTestTokenService(t)
	userID := uuid.Must(uuid.NewV7())

	seen := make(map[string]bool)
	for range 20 {
		token, err := ts.IssueAccess(userID)
		require.NoError(t, err)
		claims, err := ts.Verify(token, ScopeAccess)
		require.NoError(t, err)
		assert.False(t, seen[claims.TokenID], "duplicate jti %s", claims.TokenID)
		seen[claims.TokenID] = true
	}
}
