// pkg/audit/builderpub.go
package audit

// Publish-only Relay implemented with Electrician builder primitives.
// Internals are hidden: no builder.* types are stored on the struct.
// Adds optional TLS, compression, encryption, and static headers.

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joeydtaylor/electrician/pkg/builder"
)

type builderClient struct {
	once   sync.Once
	start  error
	submit func(context.Context, []byte) error // captures wire.Submit
}

// NewBuilderRelayFromEnv returns a publish-capable Relay powered by
// Electrician's ForwardRelay[[]byte]. It expects:
//
//	ELECTRICIAN_TARGET          = "host:port[,host2:port2]"   (required)
//
// Optional features (all off by default):
//
//	ELECTRICIAN_TLS_ENABLE      = "true" | "false"
//	ELECTRICIAN_TLS_CLIENT_CRT  = path (default: keys/tls/client.crt)
//	ELECTRICIAN_TLS_CLIENT_KEY  = path (default: keys/tls/client.key)
//	ELECTRICIAN_TLS_CA          = path (default: keys/tls/ca.crt)
//
//	ELECTRICIAN_COMPRESS        = "snappy" | ""     (snappy enabled when "snappy")
//	ELECTRICIAN_ENCRYPT         = "aesgcm" | ""     (AES-GCM when "aesgcm")
//	ELECTRICIAN_AES256_KEY_HEX  = 64 hex chars (32 bytes)
//
//	ELECTRICIAN_STATIC_HEADERS  = "k=v,k2=v2"
//
// If ELECTRICIAN_TARGET is absent, it returns a noop Relay.
func NewBuilderRelayFromEnv() (Relay, error) {
	raw := strings.TrimSpace(os.Getenv("ELECTRICIAN_TARGET"))
	if raw == "" {
		return noopRelay{}, nil
	}
	targets := strings.Split(raw, ",")

	useTLS := strings.EqualFold(os.Getenv("ELECTRICIAN_TLS_ENABLE"), "true")
	tlsCrt := envOr("ELECTRICIAN_TLS_CLIENT_CRT", "keys/tls/client.crt")
	tlsKey := envOr("ELECTRICIAN_TLS_CLIENT_KEY", "keys/tls/client.key")
	tlsCA := envOr("ELECTRICIAN_TLS_CA", "keys/tls/ca.crt")

	useSnappy := strings.EqualFold(os.Getenv("ELECTRICIAN_COMPRESS"), "snappy")
	useAESGCM := strings.EqualFold(os.Getenv("ELECTRICIAN_ENCRYPT"), "aesgcm")
	var aesKey string
	if useAESGCM {
		k := strings.TrimSpace(os.Getenv("ELECTRICIAN_AES256_KEY_HEX"))
		rawKey, err := hex.DecodeString(k)
		if err != nil || len(rawKey) != 32 {
			return nil, fmt.Errorf("ELECTRICIAN_AES256_KEY_HEX must be 64 hex chars (32 bytes): %w", err)
		}
		aesKey = string(rawKey)
	}

	staticHeaders := parseKV(os.Getenv("ELECTRICIAN_STATIC_HEADERS"))

	logger := builder.NewLogger(builder.LoggerWithDevelopment(true))

	// Build internals (not stored on the struct; captured by closures).
	ctx := context.Background()
	wire := builder.NewWire[[]byte](ctx, builder.WireWithLogger[[]byte](logger))

	perf := builder.NewPerformanceOptions(useSnappy, builder.COMPRESS_SNAPPY)
	sec := builder.NewSecurityOptions(useAESGCM, builder.ENCRYPTION_AES_GCM)
	tlsCfg := builder.NewTlsClientConfig(
		useTLS,
		tlsCrt, tlsKey, tlsCA,
		tls.VersionTLS13, tls.VersionTLS13,
	)

	relay := builder.NewForwardRelay[[]byte](
		ctx,
		builder.ForwardRelayWithLogger[[]byte](logger),
		builder.ForwardRelayWithTarget[[]byte](targets...),
		builder.ForwardRelayWithPerformanceOptions[[]byte](perf),
		builder.ForwardRelayWithSecurityOptions[[]byte](sec, aesKey),
		builder.ForwardRelayWithTLSConfig[[]byte](tlsCfg),
		builder.ForwardRelayWithStaticHeaders[[]byte](staticHeaders),
		builder.ForwardRelayWithInput(wire),
	)

	c := &builderClient{
		submit: func(ctx context.Context, b []byte) error { return wire.Submit(ctx, b) },
	}
	c.once.Do(func() {
		if err := wire.Start(ctx); err != nil {
			c.start = fmt.Errorf("builder wire start: %w", err)
			return
		}
		if err := relay.Start(ctx); err != nil {
			c.start = fmt.Errorf("builder relay start: %w", err)
			return
		}
	})
	if c.start != nil {
		return nil, c.start
	}
	return c, nil
}

// Publish sends bytes into the pipeline. Topic/headers ride the relay path.
func (c *builderClient) Publish(ctx context.Context, rr RelayRequest) error {
	if rr.Topic == "" {
		return fmt.Errorf("audit relay: missing topic")
	}
	if c.start != nil {
		return c.start
	}
	return c.submit(ctx, rr.Body)
}

// --- small helpers ---

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseKV(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := map[string]string{}
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		p := strings.SplitN(kv, "=", 2)
		if len(p) == 2 {
			out[strings.TrimSpace(p[0])] = strings.TrimSpace(p[1])
		}
	}
	return out
}
