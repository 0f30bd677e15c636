package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slotbook/slotbook/internal/router"
	"github.com/slotbook/slotbook/internal/user"
)

func fire(t *testing.T, mw func(http.Handler) http.Handler, rc *router.RoutingContext) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	if rc != nil {
		req = router.WithContext(req, rc)
	}
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, req)
	return rr
}

func TestRequireRole_Allows(t *testing.T) {
	rr := fire(t, RequireRole(user.RoleSuperadmin),
		&router.RoutingContext{TenantID: "global", Role: user.RoleSuperadmin})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestRequireRole_ForbidsWrongRole(t *testing.T) {
	rr := fire(t, RequireRole(user.RoleSuperadmin),
		&router.RoutingContext{TenantID: "global", Role: user.RoleStaff})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestRequireRole_RejectsMissingContext(t *testing.T) {
	rr := fire(t, RequireRole(user.RoleSuperadmin), nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}
