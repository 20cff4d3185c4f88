package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Niyatinagar/Quickpick/internal/platform/httpx"
	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// AccessTokenCookie is the cookie carrying the access token. The cookie
// takes precedence over the Authorization header.
const AccessTokenCookie = "access_token"

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refresh_token"

// Middleware wires token based authorization helpers for HTTP handlers.
type Middleware struct {
	Tokens  *TokenIssuer
	Service *Service
	Logger  *slog.Logger
}

// RequireAuth verifies the inbound access token and attaches the resolved
// user id to the request context. Failures short-circuit before any handler.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		userID, err := m.Tokens.VerifyAccessToken(token)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		ctx := shared.ContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin loads the authenticated user and rejects non-admin roles.
// It must run inside RequireAuth.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := shared.UserIDFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrInvalidToken)
			return
		}
		user, err := m.Service.GetUserByID(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Error("load user for admin check", slog.Any("error", err))
			}
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		if user.Role != RoleAdmin {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
