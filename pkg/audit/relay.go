package audit

import "context"

// RelayRequest is the byte-level publish envelope.
type RelayRequest struct {
	Topic   string
	Body    []byte
	Headers map[string]string
}

// Relay is the minimal publish-only transport the recorder needs.
type Relay interface {
	Publish(ctx context.Context, rr RelayRequest) error
}

// noopRelay accepts publishes and discards them.
type noopRelay struct{}

func (noopRelay) Publish(context.Context, RelayRequest) error { return nil }
