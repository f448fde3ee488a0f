package sso

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/joeydtaylor/ssogate-core/pkg/audit"
	"github.com/joeydtaylor/ssogate-core/pkg/middleware/metrics"
	"github.com/joeydtaylor/ssogate-core/pkg/prefs"
	"go.uber.org/zap"
)

type contextKey struct{ name string }

var sessionCtxKey = &contextKey{"session"}

// Gate is the login state machine: verify the portal token, check the
// whitelist, admit against the session registry, then establish the signed
// cookie. It also owns the route guard and logout.
type Gate struct {
	verifier  *Verifier
	whitelist *Whitelist
	registry  *Registry
	cookies   *CookieCodec
	prefs     *prefs.Store
	audit     *audit.Recorder
	pages     *ErrorPages
	log       *zap.Logger

	portalURL    string
	landingPath  string
	devMode      bool
	devPrincipal string
}

type GateDeps struct {
	Verifier  *Verifier
	Whitelist *Whitelist
	Registry  *Registry
	Cookies   *CookieCodec
	Prefs     *prefs.Store
	Audit     *audit.Recorder
	Pages     *ErrorPages
	Log       *zap.Logger
}

type GateOptions struct {
	PortalURL    string
	LandingPath  string
	DevMode      bool
	DevPrincipal string
}

func NewGate(d GateDeps, o GateOptions) *Gate {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		verifier:     d.Verifier,
		whitelist:    d.Whitelist,
		registry:     d.Registry,
		cookies:      d.Cookies,
		prefs:        d.Prefs,
		audit:        d.Audit,
		pages:        d.Pages,
		log:          log,
		portalURL:    o.PortalURL,
		landingPath:  o.LandingPath,
		devMode:      o.DevMode,
		devPrincipal: o.DevPrincipal,
	}
}

// Login handles the portal handoff: GET /sso/login?token=...
func (g *Gate) Login(w http.ResponseWriter, r *http.Request) {
	// Re-entry with a live session skips verification entirely.
	if sess, err := g.cookies.Decode(r); err == nil && g.registry.IsValid(sess.ID) {
		g.registry.Touch(sess.ID)
		http.Redirect(w, r, g.landingPath, http.StatusFound)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("token"))
	if raw == "" {
		// Dev mode only stands in for the absent portal. A presented token
		// always goes through the verifier.
		if g.devMode {
			g.completeLogin(w, r, g.devClaims(r))
			return
		}
		g.log.Warn("login rejected", zap.Error(ErrMissingToken))
		g.reject(w, r, http.StatusUnauthorized, "Access denied",
			"No access token was provided. Start from the portal.",
			"missing_token", "")
		return
	}

	claims, err := g.verifier.Verify(raw)
	if err != nil {
		g.log.Warn("portal token rejected", zap.Error(err))
		g.reject(w, r, http.StatusUnauthorized, "Access denied",
			"The access token is invalid or expired. Start from the portal.",
			"invalid_token", "")
		return
	}

	g.completeLogin(w, r, claims)
}

func (g *Gate) completeLogin(w http.ResponseWriter, r *http.Request, claims *Claims) {
	principal := NormalizePrincipal(claims.Email)
	if principal == "" {
		g.reject(w, r, http.StatusUnauthorized, "Access denied",
			"The access token carries no account identity.",
			"invalid_token", "")
		return
	}

	if !g.whitelist.IsAuthorized(principal) {
		g.log.Warn("login rejected", zap.String("principal", principal), zap.Error(ErrNotWhitelisted))
		g.reject(w, r, http.StatusForbidden, "Not authorized",
			"Your account is not authorized for this application. Contact an administrator.",
			"not_whitelisted", principal)
		return
	}

	sid, err := NewSessionID()
	if err != nil {
		g.log.Error("session id generation failed", zap.Error(err))
		g.pages.Render(w, http.StatusInternalServerError, "Login failed",
			"Could not establish a session. Try again.")
		return
	}

	if err := g.registry.Register(sid, principal); err != nil {
		msg := "Too many active sessions. Try again later."
		var ce *CapacityError
		if errors.As(err, &ce) {
			msg = ce.Message()
		}
		g.reject(w, r, http.StatusTooManyRequests, "Too many sessions", msg,
			"rate_limited", principal)
		return
	}

	sess := &Session{
		ID:              sid,
		Principal:       principal,
		Name:            claims.Name,
		ExternalID:      claims.GoogleID,
		Picture:         claims.Picture,
		AuthenticatedAt: time.Now().UTC(),
		Preferences:     g.prefs.Load(principal),
	}
	if err := g.cookies.Issue(w, sess); err != nil {
		g.registry.Remove(sid)
		g.log.Error("session cookie issue failed", zap.Error(err))
		g.pages.Render(w, http.StatusInternalServerError, "Login failed",
			"Could not establish a session. Try again.")
		return
	}

	metrics.ObserveLogin("admitted")
	g.audit.Record(r.Context(), audit.Event{
		Kind:      audit.KindLoginAdmitted,
		Principal: principal,
		SessionID: sid,
	})
	g.log.Info("login admitted", zap.String("principal", principal))
	http.Redirect(w, r, g.landingPath, http.StatusFound)
}

// Attach resolves the session cookie on every request and places the session
// on the context without enforcing anything. Mount it ahead of the access log
// and metrics middleware so both see the authenticated principal; admission
// stays with RequireLogin.
func (g *Gate) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, err := g.cookies.Decode(r); err == nil && g.registry.IsValid(sess.ID) {
			r = r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLogin guards a route. No cookie redirects to the portal; a cookie
// whose registry entry is gone clears the cookie and renders 401 so the
// browser never loops on a dead session. A session already resolved by
// Attach is reused instead of decoding the cookie twice.
func (g *Gate) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, fromCtx := SessionFromContext(r.Context())
		if !fromCtx {
			var err error
			sess, err = g.cookies.Decode(r)
			if err != nil {
				http.Redirect(w, r, g.portalURL, http.StatusFound)
				return
			}
		}

		if !g.registry.IsValid(sess.ID) {
			g.cookies.Clear(w)
			g.audit.Record(r.Context(), audit.Event{
				Kind:      audit.KindSessionExpired,
				Principal: sess.Principal,
				SessionID: sess.ID,
			})
			g.log.Info("session rejected", zap.String("principal", sess.Principal), zap.Error(ErrSessionExpired))
			g.pages.Render(w, http.StatusUnauthorized, "Session expired",
				"Your session has expired or was closed elsewhere. Log in again from the portal.")
			return
		}

		g.registry.Touch(sess.ID)
		if !fromCtx {
			r = r.WithContext(context.WithValue(r.Context(), sessionCtxKey, sess))
		}
		next.ServeHTTP(w, r)
	})
}

// Logout tears down both layers of session state. Idempotent.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, err := g.cookies.Decode(r); err == nil {
		g.registry.Remove(sess.ID)
		g.audit.Record(r.Context(), audit.Event{
			Kind:      audit.KindLogout,
			Principal: sess.Principal,
			SessionID: sess.ID,
		})
		g.log.Info("logout", zap.String("principal", sess.Principal))
	}
	g.cookies.Clear(w)
	http.Redirect(w, r, g.portalURL, http.StatusFound)
}

// DevAutoLogin admits the configured dev principal without a token.
// Hidden outside dev mode.
func (g *Gate) DevAutoLogin(w http.ResponseWriter, r *http.Request) {
	if !g.devMode {
		http.NotFound(w, r)
		return
	}
	g.completeLogin(w, r, g.devClaims(r))
}

// devClaims builds the synthetic identity for dev-mode logins. An explicit
// ?email= overrides the configured dev principal.
func (g *Gate) devClaims(r *http.Request) *Claims {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		email = g.devPrincipal
	}
	return &Claims{Email: email, Name: "Dev User"}
}

// RefreshPreferences persists new preferences for the current session and
// reissues the cookie so the embedded copy stays in sync.
func (g *Gate) RefreshPreferences(w http.ResponseWriter, r *http.Request, p prefs.Preferences) error {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		return ErrNoSession
	}
	if err := g.prefs.Save(sess.Principal, p); err != nil {
		return err
	}
	sess.Preferences = p
	return g.cookies.Issue(w, sess)
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, status int, title, msg, outcome, principal string) {
	metrics.ObserveLogin(outcome)
	g.audit.Record(r.Context(), audit.Event{
		Kind:      audit.KindLoginRejected,
		Principal: principal,
		Reason:    outcome,
	})
	g.pages.Render(w, status, title, msg)
}

// SessionFromContext returns the session injected by RequireLogin.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey).(*Session)
	return s, ok
}

func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	_, ok := SessionFromContext(ctx)
	return ok
}

func (g *Gate) Principal(ctx context.Context) string {
	if s, ok := SessionFromContext(ctx); ok {
		return s.Principal
	}
	return ""
}

func (g *Gate) DevMode() bool { return g.devMode }

func (g *Gate) PortalURL() string { return g.portalURL }
