package payment

import (
	"context"
	"strings"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/metrics"
	"github.com/mrz1836/payreq/internal/resolver"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// ErrInvalidDestination is returned when a string is neither a payment URI,
// a valid address nor a resolvable handle.
//
//nolint:gochecknoglobals // Sentinel error
var ErrInvalidDestination = &payerr.PayError{
	Code:     "INVALID_DESTINATION",
	Message:  "not a payment request, address or resolvable handle",
	ExitCode: payerr.ExitInput,
}

// Resolver looks handles up. *resolver.Service implements it.
type Resolver interface {
	Resolve(ctx context.Context, h resolver.Handle, cur *currency.Currency) (resolver.Resolution, error)
}

// Callback receives the single outcome of ResolveAndMakeRequest.
type Callback func(*Request, error)

// MakeRequest builds a request from a payment URI or a bare address without
// any network access. It returns (nil, false) for everything else, handles
// included.
func MakeRequest(raw string, cur *currency.Currency) (*Request, bool) {
	req, _, ok := makeRequest(raw, cur)
	return req, ok
}

// makeRequest is MakeRequest that also reports which path produced the request.
func makeRequest(raw string, cur *currency.Currency) (*Request, string, bool) {
	req, hadScheme, ok := parseURI(raw, cur)
	if !ok {
		return nil, metrics.PathFailed, false
	}
	if hadScheme {
		return req, metrics.PathURI, true
	}
	return req, metrics.PathBare, true
}

// Factory builds payment requests from any destination string, resolving
// PayID and FIO handles when needed.
type Factory struct {
	detector *resolver.Detector
	resolver Resolver
	logger   resolver.Logger
	metrics  *metrics.Metrics
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithDetector replaces the default handle detector.
func WithDetector(d *resolver.Detector) FactoryOption {
	return func(f *Factory) {
		if d != nil {
			f.detector = d
		}
	}
}

// WithFactoryLogger sets the logger.
func WithFactoryLogger(l resolver.Logger) FactoryOption {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithFactoryMetrics sets the metrics sink. Defaults to metrics.Global.
func WithFactoryMetrics(m *metrics.Metrics) FactoryOption {
	return func(f *Factory) {
		if m != nil {
			f.metrics = m
		}
	}
}

// NewFactory creates a factory that resolves handles through r. A nil r
// makes every handle fail with ErrUnsupportedCurrency.
func NewFactory(r Resolver, opts ...FactoryOption) *Factory {
	f := &Factory{
		detector: resolver.NewDetector(currency.Default()),
		resolver: r,
		logger:   nopLogger{},
		metrics:  metrics.Global,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolve builds a request for raw in cur, blocking while a handle is
// resolved. The resolved address is validated against cur before it is
// accepted.
func (f *Factory) Resolve(ctx context.Context, raw string, cur *currency.Currency) (*Request, error) {
	if req, path, ok := makeRequest(raw, cur); ok {
		f.metrics.RecordRequest(path)
		f.logger.Debug("request built path=%s currency=%s", path, cur.Code)
		return req, nil
	}

	req, err := f.resolve(ctx, raw, cur)
	if err != nil {
		f.metrics.RecordRequest(metrics.PathFailed)
		f.logger.Error("request failed input=%q currency=%s code=%s: %v", raw, cur.String(), payerr.Code(err), err)
		return nil, err
	}

	f.metrics.RecordRequest(metrics.PathResolved)
	f.logger.Debug("request built path=%s currency=%s address=%s", metrics.PathResolved, cur.Code, req.ToAddress())
	return req, nil
}

func (f *Factory) resolve(ctx context.Context, raw string, cur *currency.Currency) (*Request, error) {
	if cur == nil {
		return nil, payerr.WithDetails(ErrInvalidDestination, map[string]string{"reason": "no currency"})
	}

	h, ok := f.detector.Detect(strings.TrimSpace(raw))
	if !ok {
		return nil, payerr.WithDetails(ErrInvalidDestination, map[string]string{
			"input":    raw,
			"currency": cur.Code,
		})
	}

	if f.resolver == nil {
		return nil, resolver.Unsupported(h, cur, "no resolver configured")
	}

	res, err := f.resolver.Resolve(ctx, h, cur)
	if err != nil {
		return nil, resolver.Normalize(err)
	}

	address := strings.TrimSpace(res.Address)
	if !currency.IsValidAddress(address, cur) {
		return nil, payerr.WithDetails(resolver.ErrMalformedResponse, map[string]string{
			"handle":   h.Raw,
			"address":  address,
			"currency": cur.Code,
			"reason":   "resolved address is not valid for currency",
		})
	}

	opts := []RequestOption{WithRawSource(raw)}
	if res.Tag != "" && cur.SupportsTag() {
		opts = append(opts, WithTag(res.Tag))
	}

	req, err := NewRequest(cur, address, opts...)
	if err != nil {
		return nil, payerr.WithDetails(resolver.ErrMalformedResponse, map[string]string{
			"handle":  h.Raw,
			"address": address,
			"tag":     res.Tag,
			"reason":  err.Error(),
		})
	}
	return req, nil
}

// ResolveAndMakeRequest builds a request for raw in cur on a new goroutine
// and returns immediately. cb is invoked exactly once with either a request
// or an error: ErrInvalidDestination, or one of the resolver errors.
func (f *Factory) ResolveAndMakeRequest(ctx context.Context, raw string, cur *currency.Currency, cb Callback) {
	resolver.Go[*Request](func() (*Request, error) {
		return f.Resolve(ctx, raw, cur)
	}, cb, f.logger)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
