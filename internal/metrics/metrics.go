// Package metrics provides application-level metrics collection.
// Counters are atomic and safe for concurrent use.
package metrics

import (
	"sync/atomic"
	"time"
)

// Request paths recorded by RecordRequest.
const (
	PathURI      = "uri"      // decoded from a scheme URI
	PathBare     = "bare"     // accepted as a bare address
	PathResolved = "resolved" // built from a PayID/FIO resolution
	PathFailed   = "failed"   // no valid destination
)

// Resolution kinds recorded by RecordResolution.
const (
	KindPayID = "payid"
	KindFIO   = "fio"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Resolution metrics
	resolutionsTotal   atomic.Int64
	resolutionErrors   atomic.Int64
	resolutionLatNanos atomic.Int64
	payIDResolutions   atomic.Int64
	fioResolutions     atomic.Int64

	// Payment request metrics by path
	uriRequests      atomic.Int64
	bareRequests     atomic.Int64
	resolvedRequests atomic.Int64
	failedRequests   atomic.Int64

	// Cache metrics
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordResolution records one handle resolution with its duration and outcome.
func (m *Metrics) RecordResolution(kind string, duration time.Duration, err error) {
	m.resolutionsTotal.Add(1)
	m.resolutionLatNanos.Add(duration.Nanoseconds())

	if err != nil {
		m.resolutionErrors.Add(1)
	}

	switch kind {
	case KindPayID:
		m.payIDResolutions.Add(1)
	case KindFIO:
		m.fioResolutions.Add(1)
	}
}

// RecordRequest records how a payment request was produced (or that it failed).
func (m *Metrics) RecordRequest(path string) {
	switch path {
	case PathURI:
		m.uriRequests.Add(1)
	case PathBare:
		m.bareRequests.Add(1)
	case PathResolved:
		m.resolvedRequests.Add(1)
	case PathFailed:
		m.failedRequests.Add(1)
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	ResolutionsTotal       int64 `json:"resolutions_total"`
	ResolutionErrors       int64 `json:"resolution_errors"`
	ResolutionLatencyNanos int64 `json:"resolution_latency_nanos"`
	PayIDResolutions       int64 `json:"payid_resolutions"`
	FIOResolutions         int64 `json:"fio_resolutions"`
	URIRequests            int64 `json:"uri_requests"`
	BareRequests           int64 `json:"bare_requests"`
	ResolvedRequests       int64 `json:"resolved_requests"`
	FailedRequests         int64 `json:"failed_requests"`
	CacheHits              int64 `json:"cache_hits"`
	CacheMisses            int64 `json:"cache_misses"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ResolutionsTotal:       m.resolutionsTotal.Load(),
		ResolutionErrors:       m.resolutionErrors.Load(),
		ResolutionLatencyNanos: m.resolutionLatNanos.Load(),
		PayIDResolutions:       m.payIDResolutions.Load(),
		FIOResolutions:         m.fioResolutions.Load(),
		URIRequests:            m.uriRequests.Load(),
		BareRequests:           m.bareRequests.Load(),
		ResolvedRequests:       m.resolvedRequests.Load(),
		FailedRequests:         m.failedRequests.Load(),
		CacheHits:              m.cacheHits.Load(),
		CacheMisses:            m.cacheMisses.Load(),
	}
}

// ResolutionsTotal returns the total number of resolutions attempted.
func (m *Metrics) ResolutionsTotal() int64 {
	return m.resolutionsTotal.Load()
}

// ResolutionErrors returns the number of failed resolutions.
func (m *Metrics) ResolutionErrors() int64 {
	return m.resolutionErrors.Load()
}

// ResolutionLatencyAvgMs returns the average resolution latency in milliseconds.
// Returns 0 if no resolutions have been made.
func (m *Metrics) ResolutionLatencyAvgMs() float64 {
	calls := m.resolutionsTotal.Load()
	if calls == 0 {
		return 0
	}
	return float64(m.resolutionLatNanos.Load()) / float64(calls) / 1e6
}

// CacheHitRate returns the cache hit rate as a percentage (0-100).
// Returns 0 if no cache operations have occurred.
func (m *Metrics) CacheHitRate() float64 {
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	m.resolutionsTotal.Store(0)
	m.resolutionErrors.Store(0)
	m.resolutionLatNanos.Store(0)
	m.payIDResolutions.Store(0)
	m.fioResolutions.Store(0)
	m.uriRequests.Store(0)
	m.bareRequests.Store(0)
	m.resolvedRequests.Store(0)
	m.failedRequests.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
}
