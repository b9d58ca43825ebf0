// Package contentcache stores generated narrative content per company with expiry.
package contentcache

import (
	"context"
	"time"

	"github.com/joelkehle/transformation-dashboard/internal/metrics"
)

const DefaultTTL = 24 * time.Hour

// Cache maps a company id to an opaque payload. Entries older than the cache's
// TTL are treated as absent and removed on read.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
	Clear(ctx context.Context, key string) error
}

type options struct {
	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*options)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

func expired(storedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(storedAt) > ttl
}
