// internal/oidc/verifier_test.go
//
// Verifier tests against a local JWKS endpoint with real RS256 tokens.
package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAudience = "slotbook-admin"
	testIssuer   = "https://idp.example/project-1"
	testKid      = "key-1"
)

type fixture struct {
	key    *rsa.PrivateKey
	server *httptest.Server
	ver    *JWKSVerifier
}

func newFixture(t *testing.T, maxAge time.Duration) *fixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		set := jwks{Keys: []jwk{{
			Kty: "RSA",
			Use: "sig",
			Alg: "RS256",
			Kid: testKid,
			N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}}}
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(srv.Close)

	ver := NewJWKSVerifier(Options{
		JWKSURL:     srv.URL,
		Audience:    testAudience,
		Issuer:      testIssuer,
		MaxTokenAge: maxAge,
		KeyCacheTTL: time.Minute,
	})
	return &fixture{key: key, server: srv, ver: ver}
}

// sign issues a token with the fixture key and optional claim overrides.
func (f *fixture) sign(t *testing.T, kid string, mutate func(jwt.MapClaims)) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "u-1",
		"iat": now.Unix(),
		"exp": now.Add(10 * time.Minute).Unix(),
	}
	if mutate != nil {
		mutate(claims)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	raw, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return raw
}

func TestVerify_ValidToken(t *testing.T) {
	f := newFixture(t, time.Hour)

	claims, err := f.ver.Verify(context.Background(), f.sign(t, testKid, nil))

	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestVerify_WrongAudience(t *testing.T) {
	f := newFixture(t, time.Hour)

	raw := f.sign(t, testKid, func(c jwt.MapClaims) { c["aud"] = "someone-else" })
	_, err := f.ver.Verify(context.Background(), raw)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongIssuer(t *testing.T) {
	f := newFixture(t, time.Hour)

	raw := f.sign(t, testKid, func(c jwt.MapClaims) { c["iss"] = "https://evil.example" })
	_, err := f.ver.Verify(context.Background(), raw)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	f := newFixture(t, time.Hour)

	raw := f.sign(t, testKid, func(c jwt.MapClaims) {
		c["iat"] = time.Now().Add(-2 * time.Hour).Unix()
		c["exp"] = time.Now().Add(-time.Hour).Unix()
	})
	_, err := f.ver.Verify(context.Background(), raw)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_TooOld(t *testing.T) {
	f := newFixture(t, 5*time.Minute)

	// Still inside exp, but past the max-age window.
	raw := f.sign(t, testKid, func(c jwt.MapClaims) {
		c["iat"] = time.Now().Add(-30 * time.Minute).Unix()
		c["exp"] = time.Now().Add(time.Hour).Unix()
	})
	_, err := f.ver.Verify(context.Background(), raw)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_UnknownKid(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.ver.Verify(context.Background(), f.sign(t, "rotated-away", nil))

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongKey(t *testing.T) {
	f := newFixture(t, time.Hour)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "u-1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(10 * time.Minute).Unix(),
	})
	tok.Header["kid"] = testKid
	raw, err := tok.SignedString(other)
	require.NoError(t, err)

	_, err = f.ver.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MalformedToken(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.ver.Verify(context.Background(), "not-a-jwt")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_KeySetUnreachable_FailsClosed(t *testing.T) {
	f := newFixture(t, time.Hour)
	raw := f.sign(t, testKid, nil)
	f.server.Close()

	_, err := f.ver.Verify(context.Background(), raw)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_KeyCached_AcrossFetchOutage(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.ver.Verify(context.Background(), f.sign(t, testKid, nil))
	require.NoError(t, err)

	// Provider goes away; the cached key keeps serving within its TTL.
	f.server.Close()
	_, err = f.ver.Verify(context.Background(), f.sign(t, testKid, nil))
	assert.NoError(t, err)
}
