package resolver

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-endpoint rate limiting using a token bucket per key.
// Transports key it by remote host so one slow PayID domain cannot starve another.
type RateLimiter struct {
	limiters   map[string]*rate.Limiter
	mu         sync.RWMutex
	rateLimit  rate.Limit
	burstLimit int
}

// NewRateLimiter creates a rate limiter with the given requests per second and burst.
// A non-positive rate disables limiting.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		rateLimit:  limit,
		burstLimit: burst,
	}
}

// DefaultRateLimiter returns a limiter allowing 5 requests/second with a burst of 10.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// Allow reports whether a request to endpoint may proceed now.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.getLimiter(endpoint).Allow()
}

// Wait blocks until a request to endpoint is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	return r.getLimiter(endpoint).Wait(ctx)
}

// Endpoints returns the number of endpoints seen so far.
func (r *RateLimiter) Endpoints() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.limiters)
}

func (r *RateLimiter) getLimiter(endpoint string) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[endpoint]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = r.limiters[endpoint]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(r.rateLimit, r.burstLimit)
	r.limiters[endpoint] = limiter
	return limiter
}
