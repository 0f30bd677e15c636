// internal/handler/bookingsite.go
//
// Per-tenant public booking site, served from the shared
// /tenant/{subdomain} namespace the resolver rewrites into.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/slotbook/slotbook/internal/booking"
	"github.com/slotbook/slotbook/internal/requestinfo"
	"github.com/slotbook/slotbook/internal/router"
)

// BookingSite serves tenant content.  Tenant identity comes exclusively
// from the RoutingContext; the {subdomain} URL segment is display-only.
type BookingSite struct {
	Bookings *booking.Repository
}

// Routes mounts the tenant site.  Mounted under /tenant/{subdomain} by
// cmd/web.
func (h *BookingSite) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.home)
	r.Post("/book", h.book)
	return r
}

func (h *BookingSite) home(w http.ResponseWriter, r *http.Request) {
	rc := router.FromContext(r.Context())
	if rc == nil || rc.Subdomain == "" {
		respondError(w, http.StatusNotFound, "no tenant resolved")
		return
	}

	out := map[string]any{
		"subdomain": rc.Subdomain,
		"tenant":    rc.TenantID,
	}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		out["device"] = info.UA.Device
		out["country"] = info.Geo.CountryISO
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *BookingSite) book(w http.ResponseWriter, r *http.Request) {
	rc := router.FromContext(r.Context())
	if rc == nil || rc.Subdomain == "" {
		respondError(w, http.StatusNotFound, "no tenant resolved")
		return
	}

	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "malformed form")
		return
	}
	startsAt, err := time.Parse(time.RFC3339, r.PostFormValue("starts_at"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "starts_at must be RFC 3339")
		return
	}

	in := booking.Input{
		Customer: r.PostFormValue("customer"),
		Email:    r.PostFormValue("email"),
		Service:  r.PostFormValue("service"),
		StartsAt: startsAt,
	}
	rec, err := h.Bookings.Create(r.Context(), rc.TenantID, in)
	if err != nil {
		zap.S().Infow("booking rejected", "tenant", rc.TenantID, "err", err)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	zap.S().Infow("booking created",
		"tenant", rc.TenantID, "booking", rec.ID, "service", rec.Service)
	respondJSON(w, http.StatusCreated, rec)
}
