package sso

import "errors"

// Verification failures. The gate collapses these into one user-facing
// "invalid token" page; the specific cause is logged server-side.
var (
	ErrMissingToken     = errors.New("sso: missing token")
	ErrInvalidSignature = errors.New("sso: invalid token signature")
	ErrTokenExpired     = errors.New("sso: token expired")
	ErrIssuerMismatch   = errors.New("sso: issuer mismatch")
	ErrAudienceMismatch = errors.New("sso: audience mismatch")
)

// Gate-level rejections.
var (
	ErrNotWhitelisted = errors.New("sso: account not whitelisted")
	ErrNoSession      = errors.New("sso: no local session")
	ErrSessionExpired = errors.New("sso: session no longer registered")
)
