package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/metrics"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Service routes handles to the transport for their kind. Each call is one
// round trip: no retries and no caching. Wrap a Transport to add either.
type Service struct {
	payid   Transport
	fio     Transport
	logger  Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithPayID sets the transport used for PayID handles.
func WithPayID(t Transport) Option {
	return func(s *Service) { s.payid = t }
}

// WithFIO sets the transport used for FIO handles.
func WithFIO(t Transport) Option {
	return func(s *Service) { s.fio = t }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Defaults to metrics.Global.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTimeout bounds each lookup. Zero leaves the caller's context untouched.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a resolution service.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger:  nopLogger{},
		metrics: metrics.Global,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve performs one lookup of h for cur. The returned error, if any,
// carries one of ErrNotFound, ErrUnsupportedCurrency, ErrNetworkFailure or
// ErrMalformedResponse. The address is returned as the remote sent it.
func (s *Service) Resolve(ctx context.Context, h Handle, cur *currency.Currency) (Resolution, error) {
	requestID := uuid.NewString()
	start := time.Now()

	s.logger.Debug("resolve start request_id=%s kind=%s handle=%s currency=%s", requestID, h.Kind, h.Raw, cur.String())

	res, err := s.resolve(ctx, h, cur)
	elapsed := time.Since(start)
	s.metrics.RecordResolution(h.Kind.String(), elapsed, err)

	if err != nil {
		s.logger.Error("resolve failed request_id=%s kind=%s handle=%s currency=%s code=%s: %v",
			requestID, h.Kind, h.Raw, cur.String(), payerr.Code(err), err)
		return Resolution{}, err
	}

	s.logger.Debug("resolve done request_id=%s handle=%s address=%s tagged=%t elapsed=%s",
		requestID, h.Raw, res.Address, res.Tag != "", elapsed)
	return res, nil
}

func (s *Service) resolve(ctx context.Context, h Handle, cur *currency.Currency) (Resolution, error) {
	if cur == nil {
		return Resolution{}, Unsupported(h, cur, "no currency")
	}

	t, err := s.transportFor(h, cur)
	if err != nil {
		return Resolution{}, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err = ctx.Err(); err != nil {
		return Resolution{}, Normalize(err)
	}

	res, err := t.Lookup(ctx, h, cur)
	if err != nil {
		return Resolution{}, Normalize(err)
	}

	res.Address = strings.TrimSpace(res.Address)
	res.Tag = strings.TrimSpace(res.Tag)
	if res.Address == "" {
		return Resolution{}, payerr.WithDetails(ErrMalformedResponse, map[string]string{
			"handle": h.Raw,
			"reason": "empty address",
		})
	}
	return res, nil
}

func (s *Service) transportFor(h Handle, cur *currency.Currency) (Transport, error) {
	switch h.Kind {
	case KindPayID:
		if !cur.SupportsPayID() {
			return nil, Unsupported(h, cur, "currency has no PayID network")
		}
		if s.payid == nil {
			return nil, Unsupported(h, cur, "no PayID transport configured")
		}
		return s.payid, nil
	case KindFIO:
		if !cur.SupportsFIO() {
			return nil, Unsupported(h, cur, "currency has no FIO chain code")
		}
		if s.fio == nil {
			return nil, Unsupported(h, cur, "no FIO transport configured")
		}
		return s.fio, nil
	case KindUnknown:
		return nil, Unsupported(h, cur, "unknown handle kind")
	default:
		return nil, Unsupported(h, cur, fmt.Sprintf("handle kind %d", h.Kind))
	}
}

// FetchAddress resolves h for cur on a new goroutine and returns immediately.
// cb is invoked exactly once: with the resolution, with a typed error, or
// with ErrNetworkFailure if the transport panics. A nil cb discards the result.
func (s *Service) FetchAddress(ctx context.Context, h Handle, cur *currency.Currency, cb Callback) {
	Go[Resolution](func() (Resolution, error) {
		return s.Resolve(ctx, h, cur)
	}, cb, s.logger)
}

// Go runs fn on a new goroutine and delivers its result to cb exactly once,
// converting a panic in fn into ErrNetworkFailure with a zero value.
func Go[T any](fn func() (T, error), cb func(T, error), logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}

	go func() {
		var once sync.Once
		deliver := func(v T, err error) {
			once.Do(func() {
				if cb != nil {
					cb(v, err)
				}
			})
		}

		defer func() {
			if r := recover(); r != nil {
				logger.Error("resolution panic: %v", r)
				var zero T
				deliver(zero, payerr.WithDetails(ErrNetworkFailure, map[string]string{
					"panic": fmt.Sprint(r),
				}))
			}
		}()

		deliver(fn())
	}()
}
