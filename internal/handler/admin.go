// internal/handler/admin.go
//
// Back-office JSON endpoints on the apex domain.
//
// The resolver has already authenticated everything below /admin except
// the entry point and the login page, so these handlers trust the
// RoutingContext.  Platform-wide mutations (user listing, feature flags,
// suspension) are additionally gated on the superadmin role.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/slotbook/slotbook/internal/booking"
	"github.com/slotbook/slotbook/internal/rbac"
	"github.com/slotbook/slotbook/internal/router"
	"github.com/slotbook/slotbook/internal/tenant"
	"github.com/slotbook/slotbook/internal/user"
)

// Admin bundles the back-office dependencies.
type Admin struct {
	Tenants  *tenant.SQLDirectory
	Users    *user.SQLStore
	Bookings *booking.Repository
	Cache    *tenant.Cache // evicted after routing-relevant writes
}

// Routes mounts the admin surface.  Mounted under /admin by cmd/web.
func (h *Admin) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.entry)
	r.Get("/login", h.login)

	r.Get("/tenants", h.listTenants)
	r.Get("/bookings", h.listBookings)
	r.Get("/reports", h.reports)

	r.Group(func(r chi.Router) {
		r.Use(rbac.RequireRole(user.RoleSuperadmin))
		r.Get("/users", h.listUsers)
		r.Put("/tenants/{id}/features/{name}", h.setFeature)
		r.Post("/tenants/{id}/suspend", h.suspendTenant)
	})

	return r
}

func (h *Admin) entry(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"service": "slotbook-admin"})
}

// login is the unauthenticated entry point the router redirects to.  The
// actual credential exchange happens at the external identity provider;
// this page only points the browser there.
func (h *Admin) login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html>
<title>Slotbook admin login</title>
<p>Sign in with your identity provider, then retry with the issued
bearer token.</p>`))
}

func (h *Admin) listTenants(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Tenants.AllActive(r.Context())
	if err != nil {
		zap.S().Errorw("list tenants", "err", err)
		respondError(w, http.StatusInternalServerError, "tenant list unavailable")
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

func (h *Admin) listUsers(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Users.ByTenant(r.Context(), r.URL.Query().Get("tenant"))
	if err != nil {
		zap.S().Errorw("list users", "err", err)
		respondError(w, http.StatusInternalServerError, "user list unavailable")
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// listBookings scopes to the caller's tenant unless a superadmin asks for
// another one explicitly.
func (h *Admin) listBookings(w http.ResponseWriter, r *http.Request) {
	rc := router.FromContext(r.Context())
	tenantID := rc.TenantID
	if want := r.URL.Query().Get("tenant"); want != "" && rc.Role == user.RoleSuperadmin {
		tenantID = want
	}

	recs, err := h.Bookings.ByTenant(r.Context(), tenantID)
	if err != nil {
		zap.S().Errorw("list bookings", "tenant", tenantID, "err", err)
		respondError(w, http.StatusInternalServerError, "booking list unavailable")
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// reports is a placeholder surface consumed by the export tooling.
func (h *Admin) reports(w http.ResponseWriter, r *http.Request) {
	rc := router.FromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{
		"tenant": rc.TenantID,
		"role":   rc.Role,
	})
}

func (h *Admin) setFeature(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")
	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "enabled must be true or false")
		return
	}

	if err := h.Tenants.SetFeature(r.Context(), id, name, enabled); err != nil {
		zap.S().Errorw("set feature", "tenant", id, "feature", name, "err", err)
		respondError(w, http.StatusInternalServerError, "feature update failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"tenant": id, "feature": name, "enabled": enabled,
	})
}

func (h *Admin) suspendTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.Tenants.Suspend(r.Context(), id)
	if err != nil {
		zap.S().Errorw("suspend tenant", "tenant", id, "err", err)
		respondError(w, http.StatusInternalServerError, "suspend failed")
		return
	}
	if h.Cache != nil {
		h.Cache.Forget(sub)
	}

	zap.S().Infow("tenant suspended", "tenant", id, "subdomain", sub)
	respondJSON(w, http.StatusOK, map[string]string{"suspended": id})
}
