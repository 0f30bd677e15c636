// internal/handler/landing.go
//
// Apex landing page and tenant registration.
package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/slotbook/slotbook/internal/tenant"
)

// Landing serves the marketing root and the signup endpoint.
type Landing struct {
	Tenants *tenant.SQLDirectory
}

// Home renders the marketing root.
func (h *Landing) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html>
<title>Slotbook</title>
<h1>Slotbook</h1>
<p>Appointment booking for service businesses.  Register your own
booking site at <code>POST /</code>.</p>`))
}

// Signup registers a new tenant from the landing form.  Field errors and
// reserved subdomains come back as 422; uniqueness violations surface the
// same way via the DB constraint.
func (h *Landing) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "malformed form")
		return
	}
	in := tenant.SignupInput{
		Subdomain: r.PostFormValue("subdomain"),
		Name:      r.PostFormValue("name"),
		Email:     r.PostFormValue("email"),
		Plan:      r.PostFormValue("plan"),
	}

	rec, err := h.Tenants.Create(r.Context(), in)
	if err != nil {
		zap.S().Infow("signup rejected", "subdomain", in.Subdomain, "err", err)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	zap.S().Infow("tenant registered", "subdomain", rec.Subdomain, "id", rec.ID)
	respondJSON(w, http.StatusCreated, rec)
}
