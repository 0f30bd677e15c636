// internal/tenant/directory.go
//
// Read interface the request router resolves subdomains through.  Defined
// here so the router depends on the contract, not on the SQL or cache
// implementation (fake directories in tests satisfy it trivially).
package tenant

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a subdomain has no matching tenant row.
var ErrNotFound = errors.New("tenant not found")

// Directory resolves a candidate subdomain to a tenant.  Implementations
// must be safe for concurrent readers and must case-normalize the input.
type Directory interface {
	BySubdomain(ctx context.Context, subdomain string) (*Record, error)
}
