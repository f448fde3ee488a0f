package audit

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joeydtaylor/ssogate-core/pkg/codec"
	"go.uber.org/zap"
)

type Kind string

const (
	KindLoginAdmitted  Kind = "login.admitted"
	KindLoginRejected  Kind = "login.rejected"
	KindLogout         Kind = "logout"
	KindSessionExpired Kind = "session.expired"
)

// Event is one auth decision. SessionID is truncated before it leaves the
// process; the full ID never appears in logs or on the wire.
type Event struct {
	Time      time.Time `json:"time"`
	Kind      Kind      `json:"kind"`
	Principal string    `json:"principal,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
}

// Recorder writes every event to the system log and forwards it to the relay
// best-effort. A relay failure is logged, never surfaced to the login flow.
type Recorder struct {
	relay Relay
	topic string
	log   *zap.Logger
}

func NewRecorder(relay Relay, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	topic := strings.TrimSpace(os.Getenv("AUDIT_TOPIC"))
	if topic == "" {
		topic = "sso.audit"
	}
	return &Recorder{relay: relay, topic: topic, log: log}
}

func (rec *Recorder) Record(ctx context.Context, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if len(ev.SessionID) > 8 {
		ev.SessionID = ev.SessionID[:8]
	}

	rec.log.Info("audit",
		zap.String("kind", string(ev.Kind)),
		zap.String("principal", ev.Principal),
		zap.String("reason", ev.Reason),
		zap.String("sessionId", ev.SessionID),
	)

	b, err := codec.JSONStrict.Marshal(ev)
	if err != nil {
		rec.log.Warn("audit encode failed", zap.Error(err))
		return
	}
	if err := rec.relay.Publish(ctx, RelayRequest{
		Topic:   rec.topic,
		Body:    b,
		Headers: map[string]string{"Content-Type": codec.JSONStrict.ContentType()},
	}); err != nil {
		rec.log.Warn("audit publish failed", zap.Error(err))
	}
}
