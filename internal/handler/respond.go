// Package handler holds the thin HTTP surface behind the resolver: the
// landing page, the back-office JSON endpoints, and the per-tenant booking
// sites.  Handlers read the RoutingContext the resolver attached; none of
// them re-derive tenant identity from the host.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// respondJSON writes v with the given status.  Encoding failures are
// logged, not surfaced; headers are already gone by then.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("respond json", "err", err)
	}
}

// respondError writes a uniform error envelope.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
