package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureRelay struct {
	requests []RelayRequest
	err      error
}

func (c *captureRelay) Publish(_ context.Context, rr RelayRequest) error {
	c.requests = append(c.requests, rr)
	return c.err
}

func TestRecorderPublishesEvent(t *testing.T) {
	rel := &captureRelay{}
	rec := NewRecorder(rel, zap.NewNop())

	rec.Record(context.Background(), Event{
		Kind:      KindLoginAdmitted,
		Principal: "alice@example.com",
		SessionID: "0123456789abcdef",
	})

	require.Len(t, rel.requests, 1)
	rr := rel.requests[0]
	assert.Equal(t, "sso.audit", rr.Topic)
	assert.Equal(t, "application/json", rr.Headers["Content-Type"])

	var ev Event
	require.NoError(t, json.Unmarshal(rr.Body, &ev))
	assert.Equal(t, KindLoginAdmitted, ev.Kind)
	assert.Equal(t, "alice@example.com", ev.Principal)
	assert.Equal(t, "01234567", ev.SessionID) // truncated
	assert.False(t, ev.Time.IsZero())
}

func TestRecorderTopicFromEnv(t *testing.T) {
	t.Setenv("AUDIT_TOPIC", "custom.topic")
	rel := &captureRelay{}
	rec := NewRecorder(rel, zap.NewNop())

	rec.Record(context.Background(), Event{Kind: KindLogout})
	require.Len(t, rel.requests, 1)
	assert.Equal(t, "custom.topic", rel.requests[0].Topic)
}

func TestRecorderSwallowsPublishErrors(t *testing.T) {
	rel := &captureRelay{err: assert.AnError}
	rec := NewRecorder(rel, zap.NewNop())

	// Must not panic or surface the relay failure.
	rec.Record(context.Background(), Event{Kind: KindSessionExpired, Principal: "a@example.com"})
	assert.Len(t, rel.requests, 1)
}

func TestNoopRelayFromEnv(t *testing.T) {
	t.Setenv("ELECTRICIAN_TARGET", "")
	rel, err := NewBuilderRelayFromEnv()
	require.NoError(t, err)
	assert.NoError(t, rel.Publish(context.Background(), RelayRequest{Topic: "x"}))
}
