package middleware

import (
	"net/http"

	"github.com/profactive/backend/libs/auth/service"
)

// RoleMiddleware lets through users whose role is at least requiredRole
func RoleMiddleware(tokenGenerator *service.TokenGenerator, requiredRole int) func(http.Handler) http.Handler {
	return requireRole(tokenGenerator, requiredRole)
}
