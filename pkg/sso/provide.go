package sso

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joeydtaylor/ssogate-core/pkg/audit"
	"github.com/joeydtaylor/ssogate-core/pkg/prefs"
	"go.uber.org/zap"
)

// ProvideVerifier wires the token verifier from env. Outside dev mode a
// missing JWT_SECRET is a startup error, never a silent default.
func ProvideVerifier() (*Verifier, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" && !devModeEnabled() {
		return nil, errors.New("JWT_SECRET must be set outside dev mode")
	}

	leeway := 60 * time.Second
	if n := envInt("JWT_LEEWAY_SECONDS", -1); n >= 0 {
		leeway = time.Duration(n) * time.Second
	}

	return NewVerifier(
		[]byte(secret),
		envOr("JWT_ALGORITHM", "HS256"),
		envOr("JWT_ISSUER", "sso-portal"),
		envOr("APP_AUDIENCE", "blueprint-app"),
		leeway,
	), nil
}

func ProvideRegistry(log *zap.Logger) *Registry {
	return NewRegistry(
		envInt("MAX_SESSIONS_PER_USER", 3),
		envInt("MAX_SESSIONS_GLOBAL", 100),
		sessionTTL(),
		log,
	)
}

func ProvideWhitelist(log *zap.Logger) (*Whitelist, error) {
	path := filepath.Join(envOr("DATA_DIR", "data"), "whitelist.json")
	return NewWhitelist(path, log)
}

func ProvideCookieCodec() *CookieCodec {
	return NewCookieCodec(
		envOr("SESSION_COOKIE_NAME", "app_session"),
		[]byte(envOr("SERVER_SECRET_KEY", "dev-secret-change-in-production")),
		sessionTTL(),
		strings.EqualFold(os.Getenv("SESSION_COOKIE_SECURE"), "true"),
	)
}

func ProvideErrorPages() *ErrorPages {
	return NewErrorPages(portalURL())
}

func ProvideGate(
	v *Verifier,
	wl *Whitelist,
	reg *Registry,
	cc *CookieCodec,
	ps *prefs.Store,
	rec *audit.Recorder,
	ep *ErrorPages,
	log *zap.Logger,
) *Gate {
	return NewGate(
		GateDeps{
			Verifier:  v,
			Whitelist: wl,
			Registry:  reg,
			Cookies:   cc,
			Prefs:     ps,
			Audit:     rec,
			Pages:     ep,
			Log:       log,
		},
		GateOptions{
			PortalURL:    portalURL(),
			LandingPath:  envOr("LANDING_PATH", "/dashboard"),
			DevMode:      devModeEnabled(),
			DevPrincipal: envOr("DEV_USER_EMAIL", "dev@example.com"),
		},
	)
}

func devModeEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("SSO_MODE")), "dev")
}

func portalURL() string {
	return envOr("PORTAL_URL", "http://localhost:5000")
}

func sessionTTL() time.Duration {
	return time.Duration(envInt("SESSION_TTL_SECONDS", 28800)) * time.Second
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
