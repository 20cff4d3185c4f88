package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

func newTestIssuer(accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return NewTokenIssuer(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		AccessTTL:     accessTTL,
		RefreshSecret: []byte("refresh-secret"),
		RefreshTTL:    refreshTTL,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(time.Hour, 24*time.Hour)
	userID := uuid.New()

	access, err := issuer.IssueAccessToken(userID)
	require.NoError(t, err)
	got, err := issuer.VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	refresh, err := issuer.IssueRefreshToken(userID)
	require.NoError(t, err)
	got, err = issuer.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenKindsNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(time.Hour, 24*time.Hour)
	userID := uuid.New()

	access, err := issuer.IssueAccessToken(userID)
	require.NoError(t, err)
	refresh, err := issuer.IssueRefreshToken(userID)
	require.NoError(t, err)

	_, err = issuer.VerifyRefreshToken(access)
	require.ErrorIs(t, err, shared.ErrInvalidToken)
	_, err = issuer.VerifyAccessToken(refresh)
	require.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	issuer := newTestIssuer(-time.Minute, 24*time.Hour)

	access, err := issuer.IssueAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(access)
	require.ErrorIs(t, err, shared.ErrTokenExpired)
}

func TestTokenGarbageInput(t *testing.T) {
	issuer := newTestIssuer(time.Hour, 24*time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.VerifyAccessToken(token)
		require.ErrorIs(t, err, shared.ErrInvalidToken)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := newTestIssuer(time.Hour, 24*time.Hour)
	other := NewTokenIssuer(TokenConfig{
		AccessSecret:  []byte("different-secret"),
		AccessTTL:     time.Hour,
		RefreshSecret: []byte("another-secret"),
		RefreshTTL:    24 * time.Hour,
	})

	access, err := issuer.IssueAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(access)
	require.ErrorIs(t, err, shared.ErrInvalidToken)
}
