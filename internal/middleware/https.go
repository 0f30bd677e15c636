// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS wraps h.  Plain-HTTP requests on any non-development host are
// 308-redirected to the HTTPS version of the same URL.  Development hosts
// are exempt so `go run ./cmd/web` keeps working without certificates.
func ForceHTTPS(devHosts []string, h http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(devHosts))
	for _, d := range devHosts {
		exempt[strings.ToLower(d)] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil {
			h.ServeHTTP(w, r)
			return
		}
		if _, ok := exempt[strings.ToLower(stripPort(r.Host))]; ok {
			h.ServeHTTP(w, r)
			return
		}

		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
