// internal/config/model.go
//
// Typed configuration model for Slotbook.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `SLOTBOOK_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client during bootstrap, so the running process never
// holds Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Platform section
//

// Platform describes the host topology the request router dispatches on:
// the apex domain (landing page plus admin area), the labels that never
// resolve to a tenant, and the loopback hosts that enable the local
// development shortcut.
type Platform struct {
	ApexDomain     string   `koanf:"apex_domain" validate:"required,fqdn"`
	ReservedLabels []string `koanf:"reserved_labels"`
	DevHosts       []string `koanf:"dev_hosts"`
}

//
// Auth section
//

// Auth configures consumption of the external identity provider's bearer
// tokens.  Audience and issuer are derived from the provider project
// identifier; the JWKS endpoint is fetched over HTTPS during verification.
type Auth struct {
	JWKSURL      string        `koanf:"jwks_url" validate:"required,url"`
	Audience     string        `koanf:"audience" validate:"required"`
	Issuer       string        `koanf:"issuer"   validate:"required"`
	MaxTokenAge  time.Duration `koanf:"max_token_age"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	KeyCacheTTL  time.Duration `koanf:"key_cache_ttl"`
}

//
// Database section
//

// Database holds the control-plane DSN template and its secret.
//
// The *template* (`GlobalDSN`) is kept in YAML so operators can tweak
// host, port, or flags without touching Vault.  The *secret* portion
// (`GlobalPassword`) is stored in Vault and injected at runtime, keeping
// credentials out of flat files and git history.
type Database struct {
	GlobalDSN      string `koanf:"global_dsn"      validate:"required"`
	GlobalPassword string `koanf:"global_password" validate:"required"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2 database used to enrich booking-site
// requests.  Empty path disables the lookup.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or SLOTBOOK_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // SLOTBOOK_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Platform Platform `koanf:"platform"`
	Auth     Auth     `koanf:"auth"`
	Database Database `koanf:"database"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

//
// Defaults
//

// ApplyDefaults fills the optional knobs that YAML may omit.  The reserved
// label set always contains "www" so the generic prefix can never be
// claimed as a tenant subdomain; operators add the platform's own label in
// YAML.
func (c *Config) ApplyDefaults() {
	if len(c.Platform.DevHosts) == 0 {
		c.Platform.DevHosts = []string{"localhost", "127.0.0.1"}
	}
	hasWWW := false
	for _, l := range c.Platform.ReservedLabels {
		if l == "www" {
			hasWWW = true
			break
		}
	}
	if !hasWWW {
		c.Platform.ReservedLabels = append(c.Platform.ReservedLabels, "www")
	}
	if c.Auth.MaxTokenAge == 0 {
		c.Auth.MaxTokenAge = time.Hour
	}
	if c.Auth.FetchTimeout == 0 {
		c.Auth.FetchTimeout = 5 * time.Second
	}
	if c.Auth.KeyCacheTTL == 0 {
		c.Auth.KeyCacheTTL = 10 * time.Minute
	}
}
