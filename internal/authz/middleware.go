package authz

import (
	"log/slog"
	"net/http"

	"github.com/meridian-hr/meridian/internal/shared"
)

// Middleware wires authorization route guards for HTTP handlers.
type Middleware struct {
	Guard  *Guard
	Logger *slog.Logger
}

// RequireVisible gates a route on module visibility for the request path.
// Anonymous requests are denied outright.
func (m Middleware) RequireVisible() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := shared.CurrentUserID(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if !m.Guard.ModuleVisible(r.Context(), userID, r.URL.Path) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAction gates a route on an explicit matrix action for the module at
// the request path.
func (m Middleware) RequireAction(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := shared.CurrentUserID(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if !m.Guard.ModuleAction(r.Context(), userID, r.URL.Path, action) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
