package sso

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CapacityScope says which limit a rejected registration hit.
type CapacityScope string

const (
	CapacityGlobal       CapacityScope = "global"
	CapacityPerPrincipal CapacityScope = "per-principal"
)

// CapacityError is returned by Register when a session cap is reached.
type CapacityError struct {
	Scope CapacityScope
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("sso: %s session limit reached (%d)", e.Scope, e.Limit)
}

// Message is the user-facing wording for the 429 page.
func (e *CapacityError) Message() string {
	if e.Scope == CapacityGlobal {
		return fmt.Sprintf("The service has reached the maximum number of active sessions (%d). Please try again later.", e.Limit)
	}
	return fmt.Sprintf("You have reached the maximum number of simultaneous sessions (%d). Log out from another device and retry.", e.Limit)
}

type sessionRecord struct {
	principal string
	createdAt time.Time
	lastSeen  time.Time
}

// RegistryStats is the snapshot served by /api/session-stats.
type RegistryStats struct {
	TotalSessions   int            `json:"total_sessions"`
	MaxGlobal       int            `json:"max_global"`
	MaxPerPrincipal int            `json:"max_per_user"`
	ByPrincipal     map[string]int `json:"sessions_by_user"`
}

// Registry tracks live sessions in memory for a single process. Every public
// operation sweeps expired entries first, so expiry needs no background timer.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]sessionRecord

	maxPerPrincipal int
	maxGlobal       int
	ttl             time.Duration

	now func() time.Time
	log *zap.Logger
}

func NewRegistry(maxPerPrincipal, maxGlobal int, ttl time.Duration, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		sessions:        make(map[string]sessionRecord),
		maxPerPrincipal: maxPerPrincipal,
		maxGlobal:       maxGlobal,
		ttl:             ttl,
		now:             time.Now,
		log:             log,
	}
}

// Register admits a new session or returns a *CapacityError. The global cap
// is checked before the per-principal cap.
func (r *Registry) Register(sessionID, principal string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	if len(r.sessions) >= r.maxGlobal {
		r.log.Warn("session registry full",
			zap.Int("limit", r.maxGlobal),
			zap.String("principal", principal),
		)
		return &CapacityError{Scope: CapacityGlobal, Limit: r.maxGlobal}
	}

	active := 0
	for _, rec := range r.sessions {
		if rec.principal == principal {
			active++
		}
	}
	if active >= r.maxPerPrincipal {
		r.log.Warn("per-principal session limit reached",
			zap.Int("limit", r.maxPerPrincipal),
			zap.String("principal", principal),
		)
		return &CapacityError{Scope: CapacityPerPrincipal, Limit: r.maxPerPrincipal}
	}

	now := r.now()
	r.sessions[sessionID] = sessionRecord{principal: principal, createdAt: now, lastSeen: now}
	r.log.Info("session registered",
		zap.String("principal", principal),
		zap.Int("totalSessions", len(r.sessions)),
	)
	return nil
}

// Touch refreshes the sliding-expiry clock of a session. Unknown or already
// expired IDs are a no-op.
func (r *Registry) Touch(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	if rec, ok := r.sessions[sessionID]; ok {
		rec.lastSeen = r.now()
		r.sessions[sessionID] = rec
	}
}

// Remove evicts a session. Idempotent.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	delete(r.sessions, sessionID)
}

// IsValid reports whether the session is live after the sweep.
func (r *Registry) IsValid(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	_, ok := r.sessions[sessionID]
	return ok
}

// Stats returns a consistent snapshot taken under the lock.
func (r *Registry) Stats() RegistryStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()

	by := make(map[string]int, len(r.sessions))
	for _, rec := range r.sessions {
		by[rec.principal]++
	}
	return RegistryStats{
		TotalSessions:   len(r.sessions),
		MaxGlobal:       r.maxGlobal,
		MaxPerPrincipal: r.maxPerPrincipal,
		ByPrincipal:     by,
	}
}

// sweepLocked drops entries idle past the TTL. Caller holds r.mu.
func (r *Registry) sweepLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, rec := range r.sessions {
		if rec.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			r.log.Debug("expired session swept",
				zap.String("principal", rec.principal),
				zap.Time("lastSeen", rec.lastSeen),
			)
		}
	}
}
