package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/profactive/backend/libs/middlewares"
)

// APIKeyMiddleware guards operational endpoints such as /metrics. The key is read from
// X-API-Key or, for scrapers that only speak bearer auth, the Authorization header.
// An empty configured key disables access entirely.
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				provided = bearerToken(r)
			}

			if apiKey == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				middlewares.WriteJSONError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
