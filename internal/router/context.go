// internal/router/context.go
//
// Request-scoped routing context.
//
// Context
// -------
// The resolver attaches one RoutingContext per request: which tenant the
// request is scoped to, and — on authenticated admin paths — who the caller
// is.  It travels two ways so downstream consumers can pick either:
//
//   • as a context value, for handlers in this process, and
//   • as `X-Slotbook-*` request headers, for anything proxied further.
//
// Inbound copies of those headers are stripped before resolution so a
// caller can never forge tenant or role assignment.  The struct lives for
// one request and is never persisted.
package router

import (
	"context"
	"net/http"
)

// Propagated header names.  Presence mirrors the optional fields below.
const (
	HeaderTenantID  = "X-Slotbook-Tenant-ID"
	HeaderSubdomain = "X-Slotbook-Tenant-Subdomain"
	HeaderUserID    = "X-Slotbook-User-ID"
	HeaderRole      = "X-Slotbook-User-Role"
)

// GlobalTenantID scopes platform-level traffic (landing page, back-office).
const GlobalTenantID = "global"

// RoutingContext carries the resolved tenant and caller identity.  Only
// TenantID is always set; the rest are present when resolved.
type RoutingContext struct {
	TenantID  string
	Subdomain string
	UserID    string
	Role      string
}

// ctxKey is unexported to avoid context-key collisions.
type ctxKey struct{}

// WithContext returns a request whose context and headers carry rc.
func WithContext(r *http.Request, rc *RoutingContext) *http.Request {
	r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, rc))
	r.Header.Set(HeaderTenantID, rc.TenantID)
	if rc.Subdomain != "" {
		r.Header.Set(HeaderSubdomain, rc.Subdomain)
	}
	if rc.UserID != "" {
		r.Header.Set(HeaderUserID, rc.UserID)
	}
	if rc.Role != "" {
		r.Header.Set(HeaderRole, rc.Role)
	}
	return r
}

// FromContext extracts the RoutingContext, or nil when the resolver did
// not run (e.g., the /metrics endpoint).
func FromContext(ctx context.Context) *RoutingContext {
	rc, _ := ctx.Value(ctxKey{}).(*RoutingContext)
	return rc
}

// stripInbound drops any caller-supplied routing headers.
func stripInbound(r *http.Request) {
	r.Header.Del(HeaderTenantID)
	r.Header.Del(HeaderSubdomain)
	r.Header.Del(HeaderUserID)
	r.Header.Del(HeaderRole)
}
