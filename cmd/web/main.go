// cmd/web/main.go
//
// Slotbook – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Load typed config (koanf overlays) and start the daily rotating
//     logger (tees to console when running in a TTY).
//
//  3. Resolve `vault:` secrets and open the control-plane DB.
//
//  4. Build the tenant directory cache, user store, booking repository,
//     and the JWKS token verifier.
//
//  5. Construct the request router / tenant resolver and wrap the page
//     handlers with it: every request is classified (local dev, apex,
//     tenant subdomain) and continued, rewritten, or redirected before
//     any handler runs.
//
//  6. Expose Prometheus /metrics beside the resolved surface and serve
//     with hardened timeouts.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slotbook/slotbook/internal/booking"
	"github.com/slotbook/slotbook/internal/config"
	"github.com/slotbook/slotbook/internal/database"
	"github.com/slotbook/slotbook/internal/handler"
	"github.com/slotbook/slotbook/internal/logger"
	"github.com/slotbook/slotbook/internal/middleware"
	"github.com/slotbook/slotbook/internal/oidc"
	"github.com/slotbook/slotbook/internal/requestinfo"
	"github.com/slotbook/slotbook/internal/router"
	"github.com/slotbook/slotbook/internal/server"
	"github.com/slotbook/slotbook/internal/tenant"
	"github.com/slotbook/slotbook/internal/user"
	"github.com/slotbook/slotbook/internal/vault"
)

const serverEnvPath = "/usr/local/etc/slotbook/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Secrets and global DB connect ───────────────────────────────
	//
	password := cfg.Database.GlobalPassword
	if strings.HasPrefix(password, vault.RefPrefix) {
		vc, err := vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		if password, err = vc.Resolve(ctx, password); err != nil {
			logOut.Fatalf("resolve db password: %v", err)
		}
	}

	logOut.Info("connecting to control-plane DB …")
	globalDB, err := database.Open(fmt.Sprintf(cfg.Database.GlobalDSN, password))
	if err != nil {
		logOut.Fatalf("connect control-plane DB: %v", err)
	}
	defer globalDB.Close()
	logOut.Info("control-plane DB online")

	// Log active-tenant count as an early sanity check.
	var active int
	_ = globalDB.Get(&active, `
	    SELECT COUNT(*) FROM tenant
	    WHERE suspended_at IS NULL AND deleted_at IS NULL`)
	logOut.Infof("%d active tenant(s) found", active)

	//
	// ── 2.  Stores, directory cache, and token verifier ─────────────────
	//
	tenants := tenant.NewSQLDirectory(globalDB, cfg.Platform.ReservedLabels)
	dirCache := tenant.NewCache(tenants, tenant.IdleTTL, tenant.MaxEntries)
	users := user.NewSQLStore(globalDB)
	bookings := booking.NewRepository(globalDB)

	verifier := oidc.NewJWKSVerifier(oidc.Options{
		JWKSURL:      cfg.Auth.JWKSURL,
		Audience:     cfg.Auth.Audience,
		Issuer:       cfg.Auth.Issuer,
		MaxTokenAge:  cfg.Auth.MaxTokenAge,
		FetchTimeout: cfg.Auth.FetchTimeout,
		KeyCacheTTL:  cfg.Auth.KeyCacheTTL,
	})

	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		logOut.Warnf("geo lookups disabled: %v", err)
	}

	//
	// ── 3.  Page handlers behind the resolver ───────────────────────────
	//
	landing := &handler.Landing{Tenants: tenants}
	admin := &handler.Admin{Tenants: tenants, Users: users, Bookings: bookings, Cache: dirCache}
	site := &handler.BookingSite{Bookings: bookings}

	pages := chi.NewRouter()
	pages.Get("/", landing.Home)
	pages.Post("/", landing.Signup)
	pages.Mount(router.AdminPrefix, admin.Routes())
	pages.Mount("/tenant/{subdomain}", site.Routes())

	//
	// ── 4.  Resolver and middleware chain ───────────────────────────────
	//
	resolver := router.New(router.Config{
		ApexDomain:     cfg.Platform.ApexDomain,
		ReservedLabels: cfg.Platform.ReservedLabels,
		DevHosts:       cfg.Platform.DevHosts,
	}, router.Deps{
		Directory: dirCache,
		Users:     users,
		Verifier:  verifier,
	})

	var root http.Handler = resolver.Middleware(pages)
	root = requestinfo.Enrich(root)
	root = middleware.Security(root)
	if cfg.HTTP.ForceHTTPS {
		root = middleware.ForceHTTPS(cfg.Platform.DevHosts, root)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", root)

	srv := server.New(cfg.HTTP.ListenAddr, mux)
	logOut.Infof("listening on %s (apex %s)", cfg.HTTP.ListenAddr, cfg.Platform.ApexDomain)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}
