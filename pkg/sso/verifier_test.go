package sso

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portalSecret = "portal-shared-secret"

type tokenOpts struct {
	secret   string
	method   jwt.SigningMethod
	issuer   string
	audience string
	expires  time.Time
	email    string
}

func defaultTokenOpts() tokenOpts {
	return tokenOpts{
		secret:   portalSecret,
		method:   jwt.SigningMethodHS256,
		issuer:   "sso-portal",
		audience: "blueprint-app",
		expires:  time.Now().Add(5 * time.Minute),
		email:    "alice@example.com",
	}
}

func signToken(t *testing.T, o tokenOpts) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": o.email,
		"name":  "Alice",
		"iss":   o.issuer,
		"aud":   o.audience,
		"exp":   o.expires.Unix(),
	}
	s, err := jwt.NewWithClaims(o.method, claims).SignedString([]byte(o.secret))
	require.NoError(t, err)
	return s
}

func newTestVerifier() *Verifier {
	return NewVerifier([]byte(portalSecret), "HS256", "sso-portal", "blueprint-app", 0)
}

func TestVerifyValidToken(t *testing.T) {
	v := newTestVerifier()
	claims, err := v.Verify(signToken(t, defaultTokenOpts()))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
}

func TestVerifyWrongSecret(t *testing.T) {
	v := newTestVerifier()
	o := defaultTokenOpts()
	o.secret = "some-other-secret"
	_, err := v.Verify(signToken(t, o))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWrongAlgorithmRejected(t *testing.T) {
	v := newTestVerifier()
	o := defaultTokenOpts()
	o.method = jwt.SigningMethodHS512
	_, err := v.Verify(signToken(t, o))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyGarbage(t *testing.T) {
	v := newTestVerifier()
	_, err := v.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyIssuerMismatch(t *testing.T) {
	v := newTestVerifier()
	o := defaultTokenOpts()
	o.issuer = "someone-else"
	_, err := v.Verify(signToken(t, o))
	assert.ErrorIs(t, err, ErrIssuerMismatch)
}

func TestVerifyAudienceMismatch(t *testing.T) {
	v := newTestVerifier()
	o := defaultTokenOpts()
	o.audience = "another-app"
	_, err := v.Verify(signToken(t, o))
	assert.ErrorIs(t, err, ErrAudienceMismatch)
}

func TestVerifyExpired(t *testing.T) {
	v := newTestVerifier()
	o := defaultTokenOpts()
	o.expires = time.Now().Add(-time.Minute)
	_, err := v.Verify(signToken(t, o))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyLeewayToleratesRecentExpiry(t *testing.T) {
	v := NewVerifier([]byte(portalSecret), "HS256", "sso-portal", "blueprint-app", 2*time.Minute)
	o := defaultTokenOpts()
	o.expires = time.Now().Add(-time.Minute)
	_, err := v.Verify(signToken(t, o))
	assert.NoError(t, err)
}

// Issuer is checked before expiry, so a token that is wrong on both reports
// the issuer problem.
func TestVerifyCheckOrder(t *testing.T) {
	v := newTestVerifier()
	o := defaultTokenOpts()
	o.issuer = "someone-else"
	o.expires = time.Now().Add(-time.Minute)
	_, err := v.Verify(signToken(t, o))
	assert.ErrorIs(t, err, ErrIssuerMismatch)
}

func TestVerifyMissingExpiry(t *testing.T) {
	v := newTestVerifier()
	claims := jwt.MapClaims{
		"email": "alice@example.com",
		"iss":   "sso-portal",
		"aud":   "blueprint-app",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(portalSecret))
	require.NoError(t, err)
	_, err = v.Verify(s)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestNormalizePrincipal(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizePrincipal("  Alice@Example.COM "))
	assert.Equal(t, "", NormalizePrincipal("   "))
}
