package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsAuthenticated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_authenticated", Help: "http requests by session state"},
		[]string{"authenticated"},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	ssoLoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sso_login_total", Help: "sso login attempts by outcome"},
		[]string{"outcome"},
	)

	ssoActiveSessions = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: "sso_active_sessions", Help: "live sessions in the registry"},
		readActiveSessions,
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsAuthenticated,
		totalHttpRequestsToUri,
		totalHttpRequests,
		ssoLoginTotal,
		ssoActiveSessions,
	)
}
