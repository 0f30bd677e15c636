package oidc

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidToken covers every verification failure: malformed token,
// unknown kid, bad signature, audience/issuer mismatch, stale token, or a
// failed key-set fetch.  Callers must treat all of them identically and
// fail closed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified subset the router consumes.  The token may carry
// more; anything not listed here is ignored.  Authorization comes from
// the user store, not from token contents.
type Claims struct {
	Subject  string
	Audience string
	Issuer   string
	IssuedAt time.Time
}

// Verifier checks a raw bearer token and returns its verified claims.
// Implementations perform at least one outbound call (key-set fetch) and
// must respect ctx cancellation.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}
