package transport

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ganot/entreate/internal/drive"
)

// ErrUnauthorized indicates missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// requestToken returns the bearer token or access_token query parameter.
func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

// TokenMiddleware passes the caller's drive token through to drive requests.
// With required set, requests without a token are rejected; otherwise they
// fall back to the configured drive token.
func TokenMiddleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r)
			if token == "" {
				if required {
					writeAPIError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "missing drive token", "Send Authorization: Bearer <token>")
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := drive.WithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
