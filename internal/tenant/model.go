package tenant

import "time"

// Record mirrors one row in the persistent `tenant` table.  The operational
// state is captured by two nullable timestamps:
//
//   - SuspendedAt – tenant is temporarily disabled (e.g., billing).
//   - DeletedAt   – tenant is permanently removed.
//
// Either timestamp being non-NULL removes the tenant from subdomain
// resolution.  Subdomain is globally unique and immutable once routed
// traffic depends on it; all lookups are case-normalized.
type Record struct {
	ID          string     `db:"id"`
	Subdomain   string     `db:"subdomain"`
	Name        string     `db:"name"`
	Plan        string     `db:"plan"`
	SuspendedAt *time.Time `db:"suspended_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Feature is one premium feature flag toggled per tenant from the
// back-office.
type Feature struct {
	TenantID string    `db:"tenant_id"`
	Name     string    `db:"name"`
	Enabled  bool      `db:"enabled"`
	Updated  time.Time `db:"updated_at"`
}
