package sso

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the validated payload of a portal-issued token. Nothing in here
// is trusted until Verify has checked the signature.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	GoogleID string `json:"googleId,omitempty"`
	Picture  string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates portal tokens against a pre-shared HMAC secret.
// Checks run in a fixed order: signature, issuer, audience, expiry.
type Verifier struct {
	secret   []byte
	alg      string
	issuer   string
	audience string
	leeway   time.Duration
}

func NewVerifier(secret []byte, alg, issuer, audience string, leeway time.Duration) *Verifier {
	if alg == "" {
		alg = "HS256"
	}
	if leeway < 0 {
		leeway = 0
	}
	return &Verifier{
		secret:   secret,
		alg:      alg,
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
	}
}

// Verify parses and validates a raw token. Claims validation is done by hand
// after the signature check so each failure maps to a distinct error.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.alg}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: got %q", ErrIssuerMismatch, claims.Issuer)
	}

	if v.audience != "" {
		found := false
		for _, a := range claims.Audience {
			if a == v.audience {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrAudienceMismatch
		}
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: no expiry claim", ErrTokenExpired)
	}
	if time.Now().After(claims.ExpiresAt.Time.Add(v.leeway)) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// NormalizePrincipal lower-cases and trims an email so whitelist and registry
// lookups agree on the key.
func NormalizePrincipal(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
