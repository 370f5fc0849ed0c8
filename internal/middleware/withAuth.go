package middleware

import (
	"net/http"
	"strings"

	"github.com/atinyakov/go-qr-manager/internal/app/service"
)

// WithAuth guards the management API. A request passes with either the
// shared secret in X-API-Key or a bearer token minted from it. The public
// resolution path is never behind this middleware.
func WithAuth(auth service.AuthIface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := r.Header.Get("X-API-Key"); key != "" && auth.VerifyAPIKey(key) {
				next.ServeHTTP(w, r)
				return
			}

			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				if _, err := auth.ParseRawJWT(token); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		})
	}
}
