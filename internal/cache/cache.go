// Package cache provides handle resolution caching.
package cache

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mrz1836/payreq/internal/resolver"
)

// DefaultTTL is the default duration after which cache entries are considered stale.
const DefaultTTL = 10 * time.Minute

// Cache defines the interface for resolution caching operations.
type Cache interface {
	// Get retrieves a cached resolution.
	Get(kind resolver.Kind, handle, currency string) (*Entry, bool, time.Duration)

	// Set stores a resolution in the cache.
	Set(entry Entry)

	// IsStale checks staleness against a TTL.
	IsStale(kind resolver.Kind, handle, currency string, ttl time.Duration) bool

	// Delete removes a cache entry.
	Delete(kind resolver.Kind, handle, currency string)

	// Clear removes all cache entries.
	Clear()

	// Size returns the number of cache entries.
	Size() int

	// List returns every entry ordered by handle, then currency.
	List() []Entry

	// Prune removes entries older than maxAge.
	Prune(maxAge time.Duration) int
}

// Compile-time interface check
var _ Cache = (*ResolutionCache)(nil)

// ResolutionCache stores resolved handles keyed by kind, handle and currency.
type ResolutionCache struct {
	mu      sync.RWMutex     `json:"-"`
	Entries map[string]Entry `json:"entries"`
}

// Entry is a single cached resolution.
type Entry struct {
	Kind       resolver.Kind `json:"kind"`
	Handle     string        `json:"handle"`
	Currency   string        `json:"currency"`
	Address    string        `json:"address"`
	Tag        string        `json:"tag,omitempty"`
	ResolvedAt time.Time     `json:"resolved_at"`
}

// Resolution returns the cached value as a resolver result.
func (e Entry) Resolution() resolver.Resolution {
	return resolver.Resolution{Address: e.Address, Tag: e.Tag}
}

// NewResolutionCache creates a new empty cache.
func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{
		Entries: make(map[string]Entry),
	}
}

// Key generates a cache key. Handles and currency codes are case-insensitive.
func Key(kind resolver.Kind, handle, currency string) string {
	return kind.String() + ":" + strings.ToUpper(currency) + ":" + strings.ToLower(handle)
}

// Get retrieves a cached entry.
// Returns the entry, whether it exists, and its age.
func (c *ResolutionCache) Get(kind resolver.Kind, handle, currency string) (*Entry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.Entries[Key(kind, handle, currency)]
	if !exists {
		return nil, false, 0
	}
	return &entry, true, time.Since(entry.ResolvedAt)
}

// Set stores an entry, stamping it with the current time when ResolvedAt is zero.
func (c *ResolutionCache) Set(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry.ResolvedAt.IsZero() {
		entry.ResolvedAt = time.Now()
	}
	c.Entries[Key(entry.Kind, entry.Handle, entry.Currency)] = entry
}

// IsStale reports whether the entry is missing or older than ttl.
func (c *ResolutionCache) IsStale(kind resolver.Kind, handle, currency string, ttl time.Duration) bool {
	_, exists, age := c.Get(kind, handle, currency)
	if !exists {
		return true
	}
	return age > ttl
}

// Delete removes a cache entry.
func (c *ResolutionCache) Delete(kind resolver.Kind, handle, currency string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.Entries, Key(kind, handle, currency))
}

// Clear removes all cache entries.
func (c *ResolutionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries = make(map[string]Entry)
}

// Size returns the number of cache entries.
func (c *ResolutionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.Entries)
}

// List returns a copy of every entry ordered by handle, then currency.
func (c *ResolutionCache) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if n := strings.Compare(strings.ToLower(a.Handle), strings.ToLower(b.Handle)); n != 0 {
			return n
		}
		return strings.Compare(a.Currency, b.Currency)
	})
	return out
}

// Prune removes entries older than maxAge and returns how many were removed.
func (c *ResolutionCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for key, entry := range c.Entries {
		if entry.ResolvedAt.Before(cutoff) {
			delete(c.Entries, key)
			removed++
		}
	}

	return removed
}
