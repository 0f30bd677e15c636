// internal/vault/vault.go
//
// Vault client wrapper for Slotbook.
//
// Context
// -------
//   - Provides a concurrency-safe wrapper around the HashiCorp Vault Go SDK.
//   - Adds background token renewal, simple KV-v2 helpers, and per-key caching.
//   - Used at bootstrap to resolve `vault:` references in the configuration
//     (today: the control-plane database password).
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, log.Printf)        // during boot.
//  2. pw,  err := cli.GetKV(ctx, path, key, ttl)    // anywhere in the app.
//  3. val, err := cli.Resolve(ctx, "vault:secret/slotbook#db_password")
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// RefPrefix marks a configuration value as a Vault reference of the form
// vault:<secret-path>#<key>.
const RefPrefix = "vault:"

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Create once at startup and inject it.
// Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		logFn: logFn,
		cache: make(map[string]cached),
	}

	go c.renewLoop(ctx)

	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.  Subsequent callers within the TTL receive the
// cached copy.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault %s: key %q absent", secretPath, key)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault %s: key %q is not a string", secretPath, key)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: val, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return val, nil
}

// Resolve turns a `vault:<path>#<key>` reference into its plain value.
// Non-reference strings pass through unchanged, so callers can apply it to
// every config field without caring which ones are secret.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return ref, nil
	}
	body := strings.TrimPrefix(ref, RefPrefix)
	path, key, ok := strings.Cut(body, "#")
	if !ok {
		return "", fmt.Errorf("malformed vault reference %q", ref)
	}
	return c.GetKV(ctx, path, key, 0)
}

//
// SECTION 2.  Internals
//

// splitMount separates "secret/slotbook/db" into mount "secret" and the
// relative path "slotbook/db".
func splitMount(p string) (mount, rel string) {
	mount, rel, ok := strings.Cut(strings.Trim(p, "/"), "/")
	if !ok {
		return p, ""
	}
	return mount, rel
}

// renewLoop keeps the token alive at half its TTL cadence.  Exits when ctx
// is cancelled or the token is not renewable.
func (c *Client) renewLoop(ctx context.Context) {
	for {
		sec, err := c.api.Auth().Token().LookupSelfWithContext(ctx)
		if err != nil {
			c.logFn("vault token lookup: %v", err)
			return
		}

		renewable, _ := sec.TokenIsRenewable()
		if !renewable {
			return
		}

		ttl, err := sec.TokenTTL()
		if err != nil || ttl <= 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(ttl / 2):
		}

		if _, err := c.api.Auth().Token().RenewSelfWithContext(ctx, int(ttl.Seconds())); err != nil {
			c.logFn("vault token renew: %v", err)
			return
		}
		c.logFn("vault token renewed")
	}
}
