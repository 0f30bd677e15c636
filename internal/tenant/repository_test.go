// internal/tenant/repository_test.go
//
// SQL directory tests over go-sqlmock.
package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDirectory(t *testing.T) (*SQLDirectory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLDirectory(sqlx.NewDb(db, "sqlmock"), []string{"www", "app"}), mock
}

func tenantRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "subdomain", "name", "plan",
		"suspended_at", "deleted_at", "created_at", "updated_at",
	})
}

func TestBySubdomain_CaseNormalized(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM\\s+tenant").
		WithArgs("acmespa").
		WillReturnRows(tenantRows().AddRow(
			"t-1", "acmespa", "Acme Spa", "free",
			nil, nil, time.Now(), time.Now()))

	rec, err := dir.BySubdomain(context.Background(), "AcmeSpa")
	if err != nil {
		t.Fatalf("BySubdomain: %v", err)
	}
	if rec.ID != "t-1" || rec.Subdomain != "acmespa" {
		t.Fatalf("record = %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBySubdomain_Miss_IsErrNotFound(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM\\s+tenant").
		WithArgs("ghost").
		WillReturnRows(tenantRows())

	if _, err := dir.BySubdomain(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreate_RejectsReservedSubdomain(t *testing.T) {
	dir, _ := newMockDirectory(t)

	_, err := dir.Create(context.Background(), SignupInput{
		Subdomain: "www",
		Name:      "Sneaky",
		Email:     "owner@example.com",
	})
	if err == nil {
		t.Fatal("reserved subdomain accepted")
	}
}

func TestCreate_RejectsInvalidSubdomain(t *testing.T) {
	dir, _ := newMockDirectory(t)

	for _, sub := range []string{"", "ab", "Has.Dots", "spa ce", "UPPER"} {
		if _, err := dir.Create(context.Background(), SignupInput{
			Subdomain: sub,
			Name:      "Acme",
			Email:     "owner@example.com",
		}); err == nil {
			t.Fatalf("subdomain %q accepted", sub)
		}
	}
}

func TestCreate_InsertsNormalizedRow(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectExec("INSERT INTO tenant").
		WithArgs(sqlmock.AnyArg(), "acmespa", "Acme Spa", "free",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec, err := dir.Create(context.Background(), SignupInput{
		Subdomain: "acmespa",
		Name:      "Acme Spa",
		Email:     "owner@acmespa.example",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Plan != "free" || rec.ID == "" {
		t.Fatalf("record = %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSuspend_ReturnsSubdomainForEviction(t *testing.T) {
	dir, mock := newMockDirectory(t)

	mock.ExpectExec("UPDATE tenant SET suspended_at").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT subdomain FROM tenant").
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"subdomain"}).AddRow("acmespa"))

	sub, err := dir.Suspend(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if sub != "acmespa" {
		t.Fatalf("subdomain = %q", sub)
	}
}
