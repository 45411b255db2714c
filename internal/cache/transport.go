package cache

import (
	"context"
	"time"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/metrics"
	"github.com/mrz1836/payreq/internal/resolver"
)

// Transport wraps a resolver.Transport with a TTL cache. Only successful
// lookups are cached; failures always reach the wrapped transport.
type Transport struct {
	next    resolver.Transport
	cache   *ResolutionCache
	ttl     time.Duration
	metrics *metrics.Metrics
	storage *FileStorage
}

// TransportOption configures a caching Transport.
type TransportOption func(*Transport)

// WithTTL sets how long entries are served. Non-positive values use DefaultTTL.
func WithTTL(ttl time.Duration) TransportOption {
	return func(t *Transport) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithStorage persists the cache to s on Flush.
func WithStorage(s *FileStorage) TransportOption {
	return func(t *Transport) { t.storage = s }
}

// WithMetrics sets the metrics sink. Defaults to metrics.Global.
func WithMetrics(m *metrics.Metrics) TransportOption {
	return func(t *Transport) {
		if m != nil {
			t.metrics = m
		}
	}
}

// NewTransport wraps next. A nil c starts with an empty cache.
func NewTransport(next resolver.Transport, c *ResolutionCache, opts ...TransportOption) *Transport {
	if c == nil {
		c = NewResolutionCache()
	}
	t := &Transport{
		next:    next,
		cache:   c,
		ttl:     DefaultTTL,
		metrics: metrics.Global,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Lookup implements resolver.Transport.
func (t *Transport) Lookup(ctx context.Context, h resolver.Handle, cur *currency.Currency) (resolver.Resolution, error) {
	code := cur.String()

	if entry, ok, age := t.cache.Get(h.Kind, h.Raw, code); ok && age <= t.ttl {
		t.metrics.RecordCacheHit()
		return entry.Resolution(), nil
	}
	t.metrics.RecordCacheMiss()

	res, err := t.next.Lookup(ctx, h, cur)
	if err != nil {
		return resolver.Resolution{}, err
	}

	t.cache.Set(Entry{
		Kind:     h.Kind,
		Handle:   h.Raw,
		Currency: code,
		Address:  res.Address,
		Tag:      res.Tag,
	})
	return res, nil
}

// Cache returns the underlying cache.
func (t *Transport) Cache() *ResolutionCache {
	return t.cache
}

// Flush drops expired entries and saves the cache when storage is configured.
func (t *Transport) Flush() error {
	t.cache.Prune(t.ttl)
	if t.storage == nil {
		return nil
	}
	return t.storage.Save(t.cache)
}
