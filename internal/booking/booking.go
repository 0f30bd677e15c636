// internal/booking/booking.go
//
// Booking records and their repository.  This is thin ORM plumbing: the
// booking-site handler writes rows scoped to the tenant the router
// resolved, and the back-office lists them.  No availability or reporting
// logic lives here.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var validate = validator.New()

// Record mirrors one row in the `booking` table.  Every booking belongs to
// exactly one tenant.
type Record struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	Customer  string    `db:"customer"`
	Email     string    `db:"email"`
	Service   string    `db:"service"`
	StartsAt  time.Time `db:"starts_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Input is the public booking form on a tenant site.
type Input struct {
	Customer string    `json:"customer" validate:"required,max=120"`
	Email    string    `json:"email"    validate:"required,email"`
	Service  string    `json:"service"  validate:"required,max=120"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
}

// Repository persists bookings in the control-plane database.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository { return &Repository{db: db} }

// Create validates in and inserts one booking for tenantID.
func (r *Repository) Create(ctx context.Context, tenantID string, in Input) (*Record, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Customer:  in.Customer,
		Email:     in.Email,
		Service:   in.Service,
		StartsAt:  in.StartsAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	const q = `
        INSERT INTO booking (id, tenant_id, customer, email, service, starts_at, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.TenantID, rec.Customer, rec.Email, rec.Service,
		rec.StartsAt, rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return rec, nil
}

// ByTenant lists bookings for one tenant, newest first.
func (r *Repository) ByTenant(ctx context.Context, tenantID string) ([]Record, error) {
	const q = `
        SELECT id, tenant_id, customer, email, service, starts_at, created_at
        FROM   booking
        WHERE  tenant_id = ?
        ORDER  BY starts_at DESC`
	var rows []Record
	if err := r.db.SelectContext(ctx, &rows, q, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}
