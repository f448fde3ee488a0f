package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AuthReader is the slice of the SSO gate the collector needs. Declared
// locally so this package never imports the gate.
type AuthReader interface {
	IsAuthenticated(ctx context.Context) bool
	Principal(ctx context.Context) string
}

// Collect produces the HTTP middleware that records the counters/histogram.
func Collect(ca AuthReader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()

			defer func() {
				// Skip self-scrape and any additional caller-configured paths
				if isSkipPath(r) {
					return
				}

				endTime := time.Since(startTime)

				authed := "false"
				if ca != nil && ca.IsAuthenticated(r.Context()) {
					authed = "true"
				}

				code := strconv.Itoa(ww.Status())
				uri := normalizePath(r) // path only; avoid cardinality explosion
				method := r.Method

				totalHttpRequestsAuthenticated.WithLabelValues(authed).Inc()
				totalHttpRequestsToUri.WithLabelValues(code, uri, method).Inc()
				totalHttpRequests.WithLabelValues(code, method).Inc()
				responseTime.Observe(endTime.Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
