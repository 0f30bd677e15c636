// internal/tenant/repository.go
//
// SQL-backed tenant directory plus the write helpers used by the landing
// site (signup) and the back-office (premium feature flags).  The request
// router only ever reads; writes happen on the CRUD surface.
package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var validate = validator.New()

// SignupInput is the landing-site registration form.  Subdomain rules match
// the routing invariant: lowercase alphanumeric, unique, immutable.
type SignupInput struct {
	Subdomain string `json:"subdomain" validate:"required,min=3,max=30,lowercase,alphanum"`
	Name      string `json:"name"      validate:"required,max=120"`
	Email     string `json:"email"     validate:"required,email"`
	Plan      string `json:"plan"      validate:"omitempty,oneof=free premium"`
}

// SQLDirectory serves tenant rows from the control-plane database and
// satisfies Directory.
type SQLDirectory struct {
	db       *sqlx.DB
	reserved map[string]struct{}
}

// NewSQLDirectory wraps db.  Reserved labels (the platform's own label,
// "www", …) are rejected at signup so they can never shadow the apex host.
func NewSQLDirectory(db *sqlx.DB, reserved []string) *SQLDirectory {
	set := make(map[string]struct{}, len(reserved))
	for _, l := range reserved {
		set[strings.ToLower(l)] = struct{}{}
	}
	return &SQLDirectory{db: db, reserved: set}
}

// BySubdomain fetches a single live tenant row.  The input is lowercased
// before the query so host-header casing never affects resolution.
func (d *SQLDirectory) BySubdomain(ctx context.Context, subdomain string) (*Record, error) {
	const q = `
        SELECT id, subdomain, name, plan,
               suspended_at, deleted_at, created_at, updated_at
        FROM   tenant
        WHERE  subdomain = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1;`
	var rec Record
	if err := d.db.GetContext(ctx, &rec, q, strings.ToLower(subdomain)); err != nil {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// AllActive returns every tenant that is neither suspended nor deleted.
// Used by the back-office tenant list, not by the routing path.
func (d *SQLDirectory) AllActive(ctx context.Context) ([]Record, error) {
	const q = `
        SELECT id, subdomain, name, plan,
               suspended_at, deleted_at, created_at, updated_at
        FROM   tenant
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL`
	var rows []Record
	if err := d.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create registers a new tenant from the landing-site form.  Validation
// failures and reserved subdomains surface as errors before any SQL runs;
// uniqueness is ultimately enforced by the DB constraint.
func (d *SQLDirectory) Create(ctx context.Context, in SignupInput) (*Record, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	sub := strings.ToLower(in.Subdomain)
	if _, ok := d.reserved[sub]; ok {
		return nil, fmt.Errorf("subdomain %q is reserved", sub)
	}
	if in.Plan == "" {
		in.Plan = "free"
	}

	rec := &Record{
		ID:        uuid.NewString(),
		Subdomain: sub,
		Name:      in.Name,
		Plan:      in.Plan,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	const q = `
        INSERT INTO tenant (id, subdomain, name, plan, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := d.db.ExecContext(ctx, q,
		rec.ID, rec.Subdomain, rec.Name, rec.Plan, rec.CreatedAt, rec.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert tenant: %w", err)
	}
	return rec, nil
}

// Suspend disables a tenant and returns its subdomain so callers can evict
// it from the routing cache.
func (d *SQLDirectory) Suspend(ctx context.Context, tenantID string) (string, error) {
	const up = `UPDATE tenant SET suspended_at = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	if _, err := d.db.ExecContext(ctx, up, now, now, tenantID); err != nil {
		return "", fmt.Errorf("suspend tenant %s: %w", tenantID, err)
	}
	var sub string
	const sel = `SELECT subdomain FROM tenant WHERE id = ?`
	if err := d.db.GetContext(ctx, &sub, sel, tenantID); err != nil {
		return "", ErrNotFound
	}
	return sub, nil
}

// SetFeature toggles one premium feature flag for a tenant.
func (d *SQLDirectory) SetFeature(ctx context.Context, tenantID, name string, enabled bool) error {
	const q = `
        INSERT INTO tenant_feature (tenant_id, name, enabled, updated_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE enabled = VALUES(enabled), updated_at = VALUES(updated_at)`
	_, err := d.db.ExecContext(ctx, q, tenantID, name, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set feature %s/%s: %w", tenantID, name, err)
	}
	return nil
}

// Features returns the flag set for one tenant.
func (d *SQLDirectory) Features(ctx context.Context, tenantID string) ([]Feature, error) {
	const q = `
        SELECT tenant_id, name, enabled, updated_at
        FROM   tenant_feature
        WHERE  tenant_id = ?`
	var rows []Feature
	if err := d.db.SelectContext(ctx, &rows, q, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}
