// core/router.go
package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/ssogate-core/pkg/manifest"
	"github.com/joeydtaylor/ssogate-core/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/ssogate-core/pkg/middleware/metrics"
	"github.com/joeydtaylor/ssogate-core/pkg/sso"
	httpx "github.com/joeydtaylor/ssogate-core/pkg/transport/httpx"
)

type BuildDeps struct {
	Gate    *sso.Gate
	Pages   *sso.ErrorPages
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
}

func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.Gate != nil {
		// Session resolution runs above the log and metrics middleware so
		// both observe the principal on their own request context.
		r.Use(d.Gate.Attach)
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Gate))
		}
		// metrics collector that references auth state without copying it
		r.Use(hmetrics.Collect(d.Gate))
	} else if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(nil))
	}

	r.Handle(http.MethodGet, "/metrics", d.Metrics)

	if d.Gate != nil {
		r.Get("/sso/login", http.HandlerFunc(d.Gate.Login))
		r.Get("/logout", http.HandlerFunc(d.Gate.Logout))
		if d.Gate.DevMode() {
			r.Get("/dev/auto-login", http.HandlerFunc(d.Gate.DevAutoLogin))
		}
	}
	if d.Pages != nil {
		r.NotFound(http.HandlerFunc(d.Pages.NotFound))
	}

	for _, pg := range cfg.Pages {
		h := wrapPage(pg)
		if pg.Policy.TimeoutMS > 0 {
			t := time.Duration(pg.Policy.TimeoutMS) * time.Millisecond
			h = withTimeout(h, t)
		}

		var hh http.Handler = h
		if pg.Guard.RequireSSO {
			if d.Gate == nil {
				hh = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
				})
			} else {
				hh = d.Gate.RequireLogin(hh)
			}
		}

		switch strings.ToUpper(pg.Method) {
		case http.MethodGet:
			r.Get(pg.Path, hh)
		case http.MethodPost:
			r.Post(pg.Path, hh)
		case http.MethodPut:
			r.Put(pg.Path, hh)
		case http.MethodDelete:
			r.Delete(pg.Path, hh)
		default:
			r.Handle(pg.Method, pg.Path, hh)
		}
	}
	return r.Mux()
}

func withTimeout(next http.HandlerFunc, d time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func wrapPage(pg manifest.Page) http.HandlerFunc {
	h, ok := Lookup(pg.Handler)
	if !ok {
		return func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "handler not found", http.StatusInternalServerError)
		}
	}
	return http.HandlerFunc(h)
}
