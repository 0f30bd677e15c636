package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "sqlmock")), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "role", "tenant_id", "created_at", "updated_at",
	})
}

func TestByID_ReturnsRoleAndTenant(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM\\s+user").
		WithArgs("u-1").
		WillReturnRows(userRows().AddRow(
			"u-1", "ops@platform.example", RoleSuperadmin, "",
			time.Now(), time.Now()))

	rec, err := store.ByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if rec.Role != RoleSuperadmin || rec.TenantID != "" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestByID_Miss_IsErrNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("(?s)SELECT .+ FROM\\s+user").
		WithArgs("ghost").
		WillReturnRows(userRows())

	if _, err := store.ByID(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
