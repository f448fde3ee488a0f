package metrics

import "sync"

var (
	activeMu     sync.RWMutex
	activeSource func() float64
)

// ObserveLogin counts one login attempt. Outcomes: admitted, missing_token,
// invalid_token, not_whitelisted, rate_limited.
func ObserveLogin(outcome string) {
	ssoLoginTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessionsSource wires the sso_active_sessions gauge to the session
// registry. Until it is called the gauge reads 0.
func SetActiveSessionsSource(fn func() float64) {
	if fn == nil {
		return
	}
	activeMu.Lock()
	activeSource = fn
	activeMu.Unlock()
}

func readActiveSessions() float64 {
	activeMu.RLock()
	fn := activeSource
	activeMu.RUnlock()
	if fn == nil {
		return 0
	}
	return fn()
}
