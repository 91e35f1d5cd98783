package api

import (
	"net/http"
	"strings"
)

// Role stub standing in for a real authorization model. Bearer tokens
// are not validated; the token value selects the role, and requests
// without credentials default to analyst.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

func roleFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	switch token {
	case RoleAdmin, RoleViewer:
		return token
	default:
		return RoleAnalyst
	}
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if roleFromRequest(r) != role {
				writeError(w, http.StatusForbidden, role+" access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
