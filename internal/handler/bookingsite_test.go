package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/slotbook/slotbook/internal/booking"
	"github.com/slotbook/slotbook/internal/router"
)

func newSite(t *testing.T) (*BookingSite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &BookingSite{Bookings: booking.NewRepository(sqlx.NewDb(db, "sqlmock"))}, mock
}

func TestSiteHome_WithoutContext_NotFound(t *testing.T) {
	site, _ := newSite(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	site.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 without routing context", rr.Code)
	}
}

func TestSiteHome_WithContext(t *testing.T) {
	site, _ := newSite(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = router.WithContext(req, &router.RoutingContext{
		TenantID: "t-1", Subdomain: "acmespa",
	})
	rr := httptest.NewRecorder()
	site.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "acmespa") {
		t.Fatalf("body = %q", body)
	}
}

func TestBook_InsertsForResolvedTenant(t *testing.T) {
	site, mock := newSite(t)

	mock.ExpectExec("INSERT INTO booking").
		WithArgs(sqlmock.AnyArg(), "t-1", "Pat Doe", "pat@example.com",
			"massage", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	form := url.Values{
		"customer":  {"Pat Doe"},
		"email":     {"pat@example.com"},
		"service":   {"massage"},
		"starts_at": {"2026-09-01T10:00:00Z"},
	}
	req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = router.WithContext(req, &router.RoutingContext{
		TenantID: "t-1", Subdomain: "acmespa",
	})
	rr := httptest.NewRecorder()
	site.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBook_InvalidForm_Unprocessable(t *testing.T) {
	site, _ := newSite(t)

	form := url.Values{
		"customer":  {"Pat Doe"},
		"email":     {"not-an-email"},
		"service":   {"massage"},
		"starts_at": {"2026-09-01T10:00:00Z"},
	}
	req := httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = router.WithContext(req, &router.RoutingContext{
		TenantID: "t-1", Subdomain: "acmespa",
	})
	rr := httptest.NewRecorder()
	site.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}
