package middleware

import (
	"net/http"

	"library/internal/lending"
)

// RequirePermission checks the caller's role against the permission table
// once per request. It must run after Auth.
func RequirePermission(perm lending.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !lending.Can(principal.Role, perm) {
				http.Error(w, "missing permission "+string(perm), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
