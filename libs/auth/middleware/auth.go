package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/profactive/backend/libs/auth/service"
	"github.com/profactive/backend/libs/middlewares"
)

// AccessTokenCookie is the cookie the web frontend keeps the access token in
const AccessTokenCookie = "access_token"

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// AuthMiddleware requires a valid access token and stores the user in the request context
func AuthMiddleware(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return requireRole(tokenGenerator, 0)
}

// OptionalAuthMiddleware stores the user in the context when a valid token is present
// and lets anonymous requests through otherwise. Guests can order a course this way.
func OptionalAuthMiddleware(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, role, ok := authenticate(tokenGenerator, r); ok {
				r = r.WithContext(withUser(r.Context(), userID, role))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireRole answers 401 without a valid token and 403 when the role is below minRole
func requireRole(tokenGenerator *service.TokenGenerator, minRole int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if extractToken(r) == "" {
				middlewares.WriteJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, role, ok := authenticate(tokenGenerator, r)
			if !ok {
				middlewares.WriteJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if role < minRole {
				middlewares.WriteJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), userID, role)))
		})
	}
}

func authenticate(tokenGenerator *service.TokenGenerator, r *http.Request) (int, int, bool) {
	token := extractToken(r)
	if token == "" {
		return 0, 0, false
	}
	userID, role, err := tokenGenerator.ValidateAccessToken(token)
	if err != nil {
		return 0, 0, false
	}
	return userID, role, true
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// GetRole retrieves the user role from context
func GetRole(ctx context.Context) (int, bool) {
	role, ok := ctx.Value(roleKey).(int)
	return role, ok
}

// WithUser returns a context carrying the given user, for tests and internal calls
func WithUser(ctx context.Context, userID, role int) context.Context {
	return withUser(ctx, userID, role)
}

func withUser(ctx context.Context, userID, role int) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// extractToken prefers the Authorization header and falls back to the access token cookie
func extractToken(r *http.Request) string {
	if token := bearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func bearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
