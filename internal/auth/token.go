package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// TokenConfig carries the signing material for both token kinds. The access
// and refresh secrets are distinct so a leaked refresh secret cannot mint
// access tokens.
type TokenConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

// TokenIssuer mints and verifies HS256 bearer tokens. Verification is
// stateless: signature and expiry only.
type TokenIssuer struct {
	cfg TokenConfig
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg}
}

type claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// IssueAccessToken returns a short-lived access token for the user.
func (t *TokenIssuer) IssueAccessToken(userID uuid.UUID) (string, error) {
	return t.sign(userID, t.cfg.AccessSecret, t.cfg.AccessTTL)
}

// IssueRefreshToken returns a longer-lived refresh token for the user.
// The caller persists it on the user record so it can be invalidated.
func (t *TokenIssuer) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return t.sign(userID, t.cfg.RefreshSecret, t.cfg.RefreshTTL)
}

// VerifyAccessToken returns the user id encoded in a valid access token.
func (t *TokenIssuer) VerifyAccessToken(token string) (uuid.UUID, error) {
	return t.verify(token, t.cfg.AccessSecret)
}

// VerifyRefreshToken returns the user id encoded in a valid refresh token.
func (t *TokenIssuer) VerifyRefreshToken(token string) (uuid.UUID, error) {
	return t.verify(token, t.cfg.RefreshSecret)
}

func (t *TokenIssuer) sign(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}

func (t *TokenIssuer) verify(tokenString string, secret []byte) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, shared.ErrInvalidToken
	}
	parsed := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, shared.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, shared.ErrTokenExpired
		}
		return uuid.Nil, shared.ErrInvalidToken
	}
	if !token.Valid {
		return uuid.Nil, shared.ErrInvalidToken
	}
	id, err := uuid.Parse(parsed.UserID)
	if err != nil {
		return uuid.Nil, shared.ErrInvalidToken
	}
	return id, nil
}
