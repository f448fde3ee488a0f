package sso

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joeydtaylor/ssogate-core/pkg/prefs"
)

// Session is the local login state carried in the signed cookie. The registry
// holds the authoritative liveness; the cookie only binds the browser to a
// session ID plus display data.
type Session struct {
	ID              string
	Principal       string
	Name            string
	ExternalID      string
	Picture         string
	AuthenticatedAt time.Time
	Preferences     prefs.Preferences
}

type sessionClaims struct {
	SID         string            `json:"sid"`
	Name        string            `json:"name,omitempty"`
	ExternalID  string            `json:"ext,omitempty"`
	Picture     string            `json:"pic,omitempty"`
	Preferences prefs.Preferences `json:"prefs"`
	jwt.RegisteredClaims
}

// NewSessionID returns 32 bytes of CSPRNG output, hex encoded.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("sso: session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CookieCodec signs and reads the session cookie. The payload is an HS256
// token under the server secret, so tampering invalidates the whole session.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookieCodec(name string, secret []byte, ttl time.Duration, secure bool) *CookieCodec {
	return &CookieCodec{name: name, secret: secret, ttl: ttl, secure: secure}
}

// Issue writes the signed cookie for s.
func (c *CookieCodec) Issue(w http.ResponseWriter, s *Session) error {
	now := time.Now()
	claims := sessionClaims{
		SID:         s.ID,
		Name:        s.Name,
		ExternalID:  s.ExternalID,
		Picture:     s.Picture,
		Preferences: s.Preferences,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Principal,
			IssuedAt:  jwt.NewNumericDate(s.AuthenticatedAt),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("sso: sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Decode reads and verifies the cookie. Absent, expired, or tampered cookies
// all come back as ErrNoSession.
func (c *CookieCodec) Decode(r *http.Request) (*Session, error) {
	ck, err := r.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return nil, ErrNoSession
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	claims := &sessionClaims{}
	tok, err := parser.ParseWithClaims(ck.Value, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid || claims.SID == "" {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	var authedAt time.Time
	if claims.IssuedAt != nil {
		authedAt = claims.IssuedAt.Time
	}
	return &Session{
		ID:              claims.SID,
		Principal:       claims.Subject,
		Name:            claims.Name,
		ExternalID:      claims.ExternalID,
		Picture:         claims.Picture,
		AuthenticatedAt: authedAt,
		Preferences:     claims.Preferences,
	}, nil
}

// Clear overwrites the cookie with an immediate expiry.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
