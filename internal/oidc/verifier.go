// internal/oidc/verifier.go
//
// JWKS-backed bearer-token verification.
//
// Context
// -------
// The identity provider issues RS256 tokens and publishes its public keys
// as a JSON Web Key Set over HTTPS.  Verification resolves the token's kid
// header to a key from that set, then validates signature, audience,
// issuer, expiry, and maximum token age.  The key-set fetch is the only
// outbound call on the routing path, so keys are cached per kid with a TTL
// that bounds how long a rotated key can still be served.
//
// Failure semantics
// -----------------
// Everything — network errors included — collapses into ErrInvalidToken.
// No retries; the caller retries the request itself.
package oidc

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slotbook/slotbook/internal/cache"
	"github.com/slotbook/slotbook/internal/metrics"
)

// jwk is one JSON Web Key (RFC 7517), RSA fields only.
type jwk struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// Options configures a JWKSVerifier.  Audience and issuer are derived from
// the identity provider's project identifier.
type Options struct {
	JWKSURL      string
	Audience     string
	Issuer       string
	MaxTokenAge  time.Duration // 0 → no age check beyond exp
	FetchTimeout time.Duration
	KeyCacheTTL  time.Duration
	HTTPClient   *http.Client // nil → http.DefaultClient
}

// JWKSVerifier implements Verifier against a published key set.
type JWKSVerifier struct {
	opts Options

	mu   sync.Mutex
	keys *cache.LRU // kid → cachedKey
}

type cachedKey struct {
	key *rsa.PublicKey
	exp time.Time
}

// NewJWKSVerifier constructs a verifier.  The kid cache holds at most 16
// keys, which is generous for any single provider.
func NewJWKSVerifier(opts Options) *JWKSVerifier {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	return &JWKSVerifier{
		opts: opts,
		keys: cache.New(16),
	}
}

// Verify parses and validates raw.  On success the verified claims are
// returned; on any failure the error wraps ErrInvalidToken.
func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.opts.Audience),
		jwt.WithIssuer(v.opts.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		return v.signingKey(ctx, kid)
	}, parserOpts...)
	if err != nil || !tok.Valid {
		metrics.TokenVerifyFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		metrics.TokenVerifyFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: unexpected claims shape", ErrInvalidToken)
	}

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		metrics.TokenVerifyFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	iat, err := mc.GetIssuedAt()
	if err != nil || iat == nil {
		metrics.TokenVerifyFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: missing iat", ErrInvalidToken)
	}
	if v.opts.MaxTokenAge > 0 && time.Since(iat.Time) > v.opts.MaxTokenAge {
		metrics.TokenVerifyFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: token older than %s", ErrInvalidToken, v.opts.MaxTokenAge)
	}

	return &Claims{
		Subject:  sub,
		Audience: v.opts.Audience,
		Issuer:   v.opts.Issuer,
		IssuedAt: iat.Time,
	}, nil
}

// signingKey returns the RSA public key for kid, from cache or a fresh
// key-set fetch.  The mutex serializes fetches; hits return quickly.
func (v *JWKSVerifier) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	if val, ok := v.keys.Get(kid); ok {
		ck := val.(cachedKey)
		if time.Now().Before(ck.exp) {
			v.mu.Unlock()
			return ck.key, nil
		}
		v.keys.Remove(kid)
	}
	v.mu.Unlock()

	set, err := v.fetchKeySet(ctx)
	if err != nil {
		return nil, err
	}

	var found *rsa.PublicKey
	v.mu.Lock()
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			continue
		}
		v.keys.Add(k.Kid, cachedKey{key: pub, exp: time.Now().Add(v.opts.KeyCacheTTL)})
		if k.Kid == kid {
			found = pub
		}
	}
	v.mu.Unlock()

	if found == nil {
		return nil, fmt.Errorf("kid %q not in key set", kid)
	}
	return found, nil
}

// fetchKeySet performs one bounded HTTPS GET against the provider.
func (v *JWKSVerifier) fetchKeySet(ctx context.Context) (*jwks, error) {
	ctx, cancel := context.WithTimeout(ctx, v.opts.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.opts.JWKSURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch key set: %w", err)
	}
	defer resp.Body.Close()
	metrics.KeySetFetchTotal.Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch key set: status %d", resp.StatusCode)
	}

	var set jwks
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode key set: %w", err)
	}
	return &set, nil
}

// parseRSAKey builds an *rsa.PublicKey from base64url modulus and exponent.
func parseRSAKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("jwk n: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("jwk e: %w", err)
	}
	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("jwk e is zero")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
