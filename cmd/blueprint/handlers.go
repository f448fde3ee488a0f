package main

import (
	"net/http"

	"github.com/joeydtaylor/ssogate-core/pkg/codec"
	"github.com/joeydtaylor/ssogate-core/pkg/core"
	"github.com/joeydtaylor/ssogate-core/pkg/prefs"
	"github.com/joeydtaylor/ssogate-core/pkg/sso"
	"go.uber.org/zap"
)

// registerPages binds manifest handler names to implementations.
func registerPages(g *sso.Gate, reg *sso.Registry, log *zap.Logger) {
	core.Register("home", func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, "Welcome", homeTpl, map[string]any{
			"PortalURL": g.PortalURL(),
		})
	})

	core.Register("dashboard", func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sso.SessionFromContext(r.Context())
		renderPage(w, "Dashboard", dashboardTpl, map[string]any{
			"Session": sess,
		})
	})

	core.Register("reports", func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sso.SessionFromContext(r.Context())
		renderPage(w, "Reports", reportsTpl, map[string]any{
			"Session": sess,
		})
	})

	core.Register("settings", func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sso.SessionFromContext(r.Context())
		renderPage(w, "Settings", settingsTpl, map[string]any{
			"Session": sess,
			"Prefs":   sess.Preferences,
			"Saved":   r.URL.Query().Get("saved") == "1",
		})
	})

	core.Register("settings_save", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		p := prefs.Preferences{
			Theme:         r.FormValue("theme"),
			Notifications: r.FormValue("notifications"),
		}
		if !validTheme(p.Theme) || !validToggle(p.Notifications) {
			http.Error(w, "invalid preference value", http.StatusBadRequest)
			return
		}
		if err := g.RefreshPreferences(w, r, p); err != nil {
			log.Error("preferences save failed", zap.Error(err))
			http.Error(w, "could not save preferences", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
	})

	core.Register("session_stats", func(w http.ResponseWriter, r *http.Request) {
		b, err := codec.JSONStrict.Marshal(reg.Stats())
		if err != nil {
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
		_, _ = w.Write(b)
	})

	core.Register("favicon", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func validTheme(v string) bool {
	return v == "light" || v == "dark"
}

func validToggle(v string) bool {
	return v == "on" || v == "off"
}
