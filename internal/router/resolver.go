// internal/router/resolver.go
//
// Request router / tenant resolver.
//
// Context
// -------
// This middleware runs ahead of every handler.  Per request it classifies
// the host into a Mode, decides which tenant scope applies, authenticates
// privileged paths, and takes one of three actions:
//
//   • continue — pass through with RoutingContext attached,
//   • rewrite  — remap the path into the shared /tenant/{subdomain}
//     namespace, context attached,
//   • redirect — send the caller to the login page or the platform admin
//     entry point.
//
// Every authentication or resolution failure fails closed: a redirect,
// never a default identity, never a 5xx from this layer.  The resolver
// holds no mutable state; all dependencies are injected at construction
// and shared safely across concurrent requests.
package router

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/slotbook/slotbook/internal/metrics"
	"github.com/slotbook/slotbook/internal/oidc"
	"github.com/slotbook/slotbook/internal/tenant"
	"github.com/slotbook/slotbook/internal/user"
)

// Path constants shared with the handler packages.
const (
	AdminPrefix      = "/admin"
	LoginPath        = "/admin/login"
	TenantPathPrefix = "/tenant/"
)

// DevTenantPrefix marks a synthetic local-development tenant id as
// unverified: it never came from the directory.
const DevTenantPrefix = "dev-"

// Deps are the injected collaborators.  Fakes satisfy them in tests.
type Deps struct {
	Directory tenant.Directory
	Users     user.Store
	Verifier  oidc.Verifier
}

// Config is the host topology the resolver dispatches on.
type Config struct {
	ApexDomain     string
	ReservedLabels []string
	DevHosts       []string
}

// Resolver decides tenant scope and routing action for every request.
type Resolver struct {
	apex     string
	reserved map[string]struct{}
	devHosts map[string]struct{}
	deps     Deps
}

// New constructs a Resolver.  The apex domain and label sets are
// normalized to lower case once, here, not per request.
func New(cfg Config, deps Deps) *Resolver {
	res := &Resolver{
		apex:     strings.ToLower(cfg.ApexDomain),
		reserved: make(map[string]struct{}, len(cfg.ReservedLabels)),
		devHosts: make(map[string]struct{}, len(cfg.DevHosts)),
		deps:     deps,
	}
	for _, l := range cfg.ReservedLabels {
		res.reserved[strings.ToLower(l)] = struct{}{}
	}
	for _, h := range cfg.DevHosts {
		res.devHosts[strings.ToLower(h)] = struct{}{}
	}
	return res
}

// Middleware wraps next with tenant resolution.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stripInbound(r)

		host := strings.ToLower(stripPort(r.Host))
		mode := res.modeFor(host)

		switch mode {
		case ModeLocalDev:
			res.serveLocalDev(w, r, next)
		case ModeApex:
			res.serveApex(w, r, next)
		default:
			res.serveTenantSub(w, r, next, host)
		}
	})
}

/*──────────────────────────── local development ────────────────────────────*/

// serveLocalDev relaxes resolution for loopback hosts.  Admin paths get the
// global tenant and an elevated role without any token check, and
// /tenant/{x} paths derive context synthetically from the path segment —
// no directory lookup, so local work never depends on a network-bound
// store.  This shortcut is intentionally asymmetric with production.
func (res *Resolver) serveLocalDev(w http.ResponseWriter, r *http.Request, next http.Handler) {
	switch {
	case isAdminPath(r.URL.Path):
		res.pass(w, r, next, ModeLocalDev, &RoutingContext{
			TenantID: GlobalTenantID,
			Role:     user.RoleSuperadmin,
		})

	case strings.HasPrefix(r.URL.Path, TenantPathPrefix):
		sub := pathSubdomain(r.URL.Path)
		res.pass(w, r, next, ModeLocalDev, &RoutingContext{
			TenantID:  DevTenantPrefix + sub,
			Subdomain: sub,
		})

	default:
		res.pass(w, r, next, ModeLocalDev, &RoutingContext{TenantID: GlobalTenantID})
	}
}

/*──────────────────────────── apex domain ──────────────────────────────────*/

// serveApex handles the platform's own domain: the landing page at the
// root, the admin area behind bearer-token auth, and nothing else.
func (res *Resolver) serveApex(w http.ResponseWriter, r *http.Request, next http.Handler) {
	path := r.URL.Path

	switch {
	case path == AdminPrefix || path == LoginPath:
		// Entry points stay reachable without a token, otherwise nobody
		// could ever log in.
		res.pass(w, r, next, ModeApex, &RoutingContext{TenantID: GlobalTenantID})

	case isAdminPath(path):
		rc, err := res.authenticate(r)
		if err != nil {
			zap.S().Debugw("admin auth failed", "path", path, "err", err)
			res.redirect(w, r, ModeApex, LoginPath)
			return
		}
		res.pass(w, r, next, ModeApex, rc)

	case path == "/":
		res.pass(w, r, next, ModeApex, &RoutingContext{TenantID: GlobalTenantID})

	default:
		// The apex serves only the landing page and the admin area.
		res.redirect(w, r, ModeApex, AdminPrefix)
	}
}

// authenticate turns the Authorization header into a RoutingContext, or an
// error.  Token verification alone is not sufficient: the subject must
// also exist in the user store, which is the source of truth for role and
// tenant assignment.
func (res *Resolver) authenticate(r *http.Request) (*RoutingContext, error) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, errors.New("missing bearer token")
	}

	claims, err := res.deps.Verifier.Verify(r.Context(), raw)
	if err != nil {
		return nil, err
	}

	rec, err := res.deps.Users.ByID(r.Context(), claims.Subject)
	if err != nil {
		return nil, err
	}

	tenantID := rec.TenantID
	if tenantID == "" {
		tenantID = GlobalTenantID
	}
	return &RoutingContext{
		TenantID: tenantID,
		UserID:   rec.ID,
		Role:     rec.Role,
	}, nil
}

/*──────────────────────────── tenant subdomains ────────────────────────────*/

// serveTenantSub resolves the host's leading label through the directory
// and rewrites the request into the shared tenant-content namespace.
// Unknown subdomains never serve tenant content.
func (res *Resolver) serveTenantSub(w http.ResponseWriter, r *http.Request, next http.Handler, host string) {
	sub := leadingLabel(host)

	rec, err := res.deps.Directory.BySubdomain(r.Context(), sub)
	if err != nil {
		zap.S().Debugw("subdomain unresolved", "subdomain", sub, "err", err)
		res.redirect(w, r, ModeTenantSub, schemeOf(r)+"://"+res.apex+AdminPrefix)
		return
	}

	original := r.URL.Path
	rewritten := TenantPathPrefix + rec.Subdomain + original
	r.URL.Path = rewritten
	r.RequestURI = rewritten

	metrics.RoutingDecisionsTotal.WithLabelValues(ModeTenantSub.String(), "rewrite").Inc()
	zap.S().Debugw("tenant rewrite",
		"subdomain", rec.Subdomain, "from", original, "to", rewritten)

	next.ServeHTTP(w, WithContext(r, &RoutingContext{
		TenantID:  rec.ID,
		Subdomain: rec.Subdomain,
	}))
}

/*──────────────────────────── actions and helpers ──────────────────────────*/

func (res *Resolver) pass(w http.ResponseWriter, r *http.Request, next http.Handler, m Mode, rc *RoutingContext) {
	metrics.RoutingDecisionsTotal.WithLabelValues(m.String(), "continue").Inc()
	next.ServeHTTP(w, WithContext(r, rc))
}

func (res *Resolver) redirect(w http.ResponseWriter, r *http.Request, m Mode, target string) {
	metrics.RoutingDecisionsTotal.WithLabelValues(m.String(), "redirect").Inc()
	http.Redirect(w, r, target, http.StatusFound)
}

// isAdminPath reports whether path is /admin or below it.  "/administrator"
// is somebody's tenant page, not ours.
func isAdminPath(path string) bool {
	return path == AdminPrefix || strings.HasPrefix(path, AdminPrefix+"/")
}

// pathSubdomain extracts {x} from /tenant/{x}/rest.
func pathSubdomain(path string) string {
	rest := strings.TrimPrefix(path, TenantPathPrefix)
	if i := strings.IndexByte(rest, '/'); i != -1 {
		rest = rest[:i]
	}
	return strings.ToLower(rest)
}

// bearerToken extracts the RFC 6750 bearer credential.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return h[len(prefix):], true
}

// schemeOf picks the redirect scheme from the inbound connection.
func schemeOf(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
