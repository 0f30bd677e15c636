// internal/user/store.go
//
// Platform user records and their read interface.
//
// Context
// -------
// The router authorizes admin traffic against this store, not against the
// token alone: a verified subject with no matching row is rejected.  Roles
// form a small closed set; "superadmin" is the elevated platform role.
// Every user belongs to exactly one tenant, or to the global platform
// tenant when TenantID is empty.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Role names.  Kept as strings rather than iota so they read cleanly in
// logs and propagated headers.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
)

// ErrNotFound is returned when a subject id has no matching user row.
var ErrNotFound = errors.New("user not found")

// Record mirrors one row in the `user` table.
type Record struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	TenantID  string    `db:"tenant_id"` // empty → global platform tenant
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store resolves a verified token subject to role and tenant assignment.
// Implementations must be safe for concurrent readers.
type Store interface {
	ByID(ctx context.Context, id string) (*Record, error)
}

// SQLStore serves user rows from the control-plane database.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps db.
func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

// ByID fetches one user row by subject id.
func (s *SQLStore) ByID(ctx context.Context, id string) (*Record, error) {
	const q = `
        SELECT id, email, role, tenant_id, created_at, updated_at
        FROM   user
        WHERE  id = ?
        LIMIT  1;`
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, id); err != nil {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// ByTenant lists the users assigned to one tenant.  Back-office only.
func (s *SQLStore) ByTenant(ctx context.Context, tenantID string) ([]Record, error) {
	const q = `
        SELECT id, email, role, tenant_id, created_at, updated_at
        FROM   user
        WHERE  tenant_id = ?`
	var rows []Record
	if err := s.db.SelectContext(ctx, &rows, q, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}
