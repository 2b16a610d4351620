package api

import (
	"net/http"
	"slices"

	"forensics/core"
)

// Authorize allows the request through only when the caller's role is one of roles.
// It must run after Authenticate.
func (a *API) Authorize(roles ...core.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRole(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized", nil, a.logger)
				return
			}

			if !slices.Contains(roles, role) {
				a.logger.Warnw("Permission denied",
					"role", role,
					"method", r.Method,
					"path", r.URL.Path)
				writeError(w, http.StatusForbidden, "Insufficient permissions", nil, a.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
