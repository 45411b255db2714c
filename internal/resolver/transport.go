package resolver

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultHTTPTimeout bounds a single lookup round trip.
	DefaultHTTPTimeout = 15 * time.Second

	// MaxResponseBody is the maximum response body size read from a resolver (1 MB).
	MaxResponseBody = 1 << 20

	// UserAgent identifies payreq to remote resolvers.
	UserAgent = "payreq"
)

// NewHTTPTransport returns a pooled HTTP transport requiring TLS 1.2 or newer.
func NewHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// HTTPTransportManager lazily creates one HTTP transport shared by every resolver client.
type HTTPTransportManager struct {
	once      sync.Once
	transport *http.Transport
}

// Get returns the shared HTTP transport, creating it on first call.
func (tm *HTTPTransportManager) Get() *http.Transport {
	tm.once.Do(func() {
		tm.transport = NewHTTPTransport()
	})
	return tm.transport
}

//nolint:gochecknoglobals // Singleton for connection pooling
var globalTransportManager HTTPTransportManager

// SharedHTTPTransport returns the process-wide pooled transport.
func SharedHTTPTransport() *http.Transport {
	return globalTransportManager.Get()
}

// NewHTTPClient returns a client on the shared transport. A zero timeout uses DefaultHTTPTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: SharedHTTPTransport(),
	}
}

// ReadBody reads at most MaxResponseBody bytes of resp and closes it.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// TruncateBody truncates s to maxLen bytes for error details.
func TruncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
