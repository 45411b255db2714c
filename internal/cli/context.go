package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/cache"
	"github.com/mrz1836/payreq/internal/config"
	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/metrics"
	"github.com/mrz1836/payreq/internal/output"
	"github.com/mrz1836/payreq/internal/payment"
	"github.com/mrz1836/payreq/internal/resolver"
	"github.com/mrz1836/payreq/internal/resolver/fio"
	"github.com/mrz1836/payreq/internal/resolver/payid"
)

// The file logger is what the resolver and factory log through.
var _ resolver.Logger = (*config.Logger)(nil)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Registry  *currency.Registry
	Messenger *output.Messenger
	Metrics   *metrics.Metrics

	// Transports overrides the network transports, mainly for tests.
	PayID resolver.Transport
	FIO   resolver.Transport

	cached *cache.Transport
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	c *config.Config,
	l *config.Logger,
	f *output.Formatter,
	r *currency.Registry,
) *CommandContext {
	return &CommandContext{
		Config:    c,
		Logger:    l,
		Formatter: f,
		Registry:  r,
		Metrics:   metrics.Global,
	}
}

// WithMessenger sets the status line writer.
func (c *CommandContext) WithMessenger(m *output.Messenger) *CommandContext {
	c.Messenger = m
	return c
}

// WithTransports replaces the PayID and FIO transports.
func (c *CommandContext) WithTransports(payID, fioTransport resolver.Transport) *CommandContext {
	c.PayID = payID
	c.FIO = fioTransport
	return c
}

// Factory builds a payment request factory backed by the configured
// resolvers. With caching enabled both transports share one resolution
// cache, persisted on Close. A timeout of zero or less uses
// resolver.timeout_seconds.
func (c *CommandContext) Factory(useCache bool, timeout time.Duration) *payment.Factory {
	if timeout <= 0 {
		timeout = c.Config.Timeout()
	}
	payIDTransport, fioTransport := c.transports(timeout)

	if useCache && c.Config.CacheTTL() > 0 {
		shared, storage := c.loadCache()
		opts := []cache.TransportOption{cache.WithTTL(c.Config.CacheTTL()), cache.WithMetrics(c.Metrics)}
		if storage != nil {
			opts = append(opts, cache.WithStorage(storage))
		}
		c.cached = cache.NewTransport(payIDTransport, shared, opts...)
		payIDTransport = c.cached
		fioTransport = cache.NewTransport(fioTransport, shared, opts...)
	}

	svc := resolver.NewService(
		resolver.WithPayID(payIDTransport),
		resolver.WithFIO(fioTransport),
		resolver.WithLogger(c.Logger),
		resolver.WithMetrics(c.Metrics),
		resolver.WithTimeout(timeout),
	)

	return payment.NewFactory(svc,
		payment.WithDetector(resolver.NewDetector(c.Registry)),
		payment.WithFactoryLogger(c.Logger),
		payment.WithFactoryMetrics(c.Metrics),
	)
}

func (c *CommandContext) transports(timeout time.Duration) (resolver.Transport, resolver.Transport) {
	payIDTransport, fioTransport := c.PayID, c.FIO
	if payIDTransport != nil && fioTransport != nil {
		return payIDTransport, fioTransport
	}

	limiter := resolver.NewRateLimiter(c.Config.Resolver.RateLimit, c.Config.Resolver.Burst)
	httpClient := resolver.NewHTTPClient(timeout)

	if payIDTransport == nil {
		payIDTransport = payid.NewClient(&payid.ClientOptions{
			Scheme:      c.Config.Resolver.PayIDScheme,
			Environment: c.Config.Resolver.PayIDEnvironment,
			HTTPClient:  httpClient,
			RateLimiter: limiter,
		})
	}
	if fioTransport == nil {
		fioTransport = fio.NewClient(&fio.ClientOptions{
			APIURL:      c.Config.Resolver.FIOAPIURL,
			HTTPClient:  httpClient,
			RateLimiter: limiter,
		})
	}
	return payIDTransport, fioTransport
}

// loadCache reads the persisted cache. A corrupt file is reported and
// replaced; any other read failure disables persistence for this run.
func (c *CommandContext) loadCache() (*cache.ResolutionCache, *cache.FileStorage) {
	path := c.Config.CachePath()
	if path == "" {
		return cache.NewResolutionCache(), nil
	}

	storage := cache.NewFileStorage(path)
	loaded, err := storage.Load()
	switch {
	case err == nil:
		return loaded, storage
	case errors.Is(err, cache.ErrCorruptCache):
		c.Messenger.Warnf("resolution cache was corrupt and has been reset")
		c.Logger.Error("cache load: %v", err)
		return loaded, storage
	default:
		c.Logger.Error("cache load: %v", err)
		return cache.NewResolutionCache(), nil
	}
}

// Close flushes the resolution cache, if one was used.
func (c *CommandContext) Close() {
	if c.cached != nil {
		if err := c.cached.Flush(); err != nil {
			c.Logger.Error("cache flush: %v", err)
		}
		c.cached = nil
	}
	c.logMetrics()
}

// logMetrics writes the run's counters to the debug log.
func (c *CommandContext) logMetrics() {
	if c.Logger == nil || c.Metrics == nil {
		return
	}
	snap := c.Metrics.Snapshot()
	c.Logger.DebugAttrs("run metrics",
		slog.Int64("resolutions", snap.ResolutionsTotal),
		slog.Int64("resolution_errors", snap.ResolutionErrors),
		slog.Float64("resolution_avg_ms", c.Metrics.ResolutionLatencyAvgMs()),
		slog.Int64("uri_requests", snap.URIRequests),
		slog.Int64("bare_requests", snap.BareRequests),
		slog.Int64("resolved_requests", snap.ResolvedRequests),
		slog.Int64("failed_requests", snap.FailedRequests),
		slog.Int64("cache_hits", snap.CacheHits),
		slog.Int64("cache_misses", snap.CacheMisses),
	)
}

// contextWithTimeout returns a timeout context rooted in the command context.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, d)
}
