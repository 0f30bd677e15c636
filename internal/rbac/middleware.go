// internal/rbac/middleware.go
//
// Chi middleware that enforces role requirements on back-office routes.
//
// Roles come from the RoutingContext the resolver attached — the user
// store was already consulted during authentication, so no query runs
// here.  Requests without a resolved role are rejected, not redirected:
// by the time these handlers run, the router has already sent
// unauthenticated callers to the login page.
package rbac

import (
	"net/http"

	"github.com/slotbook/slotbook/internal/router"
)

// RequireRole ensures the caller possesses ANY of the supplied roles.
func RequireRole(names ...string) func(http.Handler) http.Handler {
	if len(names) == 0 {
		panic("rbac.RequireRole: at least one role name must be supplied")
	}
	allowSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowSet[n] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := router.FromContext(r.Context())
			if rc == nil || rc.Role == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if _, ok := allowSet[rc.Role]; !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
