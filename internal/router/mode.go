// internal/router/mode.go
//
// Host classification.
//
// The three routing modes are mutually exclusive and exhaustive; every
// request is classified exactly once, then the resolver dispatches on the
// tag.  Keeping this a closed set (rather than ad hoc string conditionals)
// lets each mode be unit-tested in isolation.
package router

import "strings"

// Mode tags the environment branch a request falls into.
type Mode int

const (
	// ModeLocalDev matches loopback hosts.  Authentication is deliberately
	// bypassed; this mode must never run against a production host.
	ModeLocalDev Mode = iota

	// ModeApex matches the platform's root domain and its reserved-label
	// variants (www.<apex>, <platform label>.<apex>).  Serves the landing
	// page and the admin area only.
	ModeApex

	// ModeTenantSub treats the host's leading label as a candidate tenant
	// subdomain to be resolved through the directory.
	ModeTenantSub
)

func (m Mode) String() string {
	switch m {
	case ModeLocalDev:
		return "localdev"
	case ModeApex:
		return "apex"
	default:
		return "tenantsub"
	}
}

// modeFor classifies a lowercased, port-stripped host.
func (res *Resolver) modeFor(host string) Mode {
	if _, ok := res.devHosts[host]; ok {
		return ModeLocalDev
	}
	if host == res.apex {
		return ModeApex
	}
	if label, ok := strings.CutSuffix(host, "."+res.apex); ok {
		if _, reserved := res.reserved[label]; reserved {
			return ModeApex
		}
	}
	return ModeTenantSub
}

// leadingLabel returns the host's first DNS label.
func leadingLabel(host string) string {
	if i := strings.IndexByte(host, '.'); i != -1 {
		return host[:i]
	}
	return host
}

// stripPort removes any ":port" suffix from the Host header.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
