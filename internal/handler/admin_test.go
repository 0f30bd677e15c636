package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slotbook/slotbook/internal/router"
	"github.com/slotbook/slotbook/internal/user"
)

func TestAdminReports_EchoesRoutingContext(t *testing.T) {
	admin := &Admin{}

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req = router.WithContext(req, &router.RoutingContext{
		TenantID: router.GlobalTenantID, Role: user.RoleSuperadmin,
	})
	rr := httptest.NewRecorder()
	admin.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, router.GlobalTenantID) {
		t.Fatalf("body = %q", body)
	}
}

func TestAdminUsers_RequiresSuperadmin(t *testing.T) {
	admin := &Admin{}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = router.WithContext(req, &router.RoutingContext{
		TenantID: "t-1", Role: user.RoleAdmin,
	})
	rr := httptest.NewRecorder()
	admin.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for non-superadmin", rr.Code)
	}
}

func TestAdminLogin_IsServedWithoutAuth(t *testing.T) {
	admin := &Admin{}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rr := httptest.NewRecorder()
	admin.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}
