// Package querycache caches upstream list and detail queries so screen
// navigation does not hammer the platform backend. Freshness is driven
// by a static mutation-to-keys table rather than by guessing: every
// console mutation names exactly the cached resources it stales.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kahinlabs/kahinadmin/internal/metrics"
	"github.com/kahinlabs/kahinadmin/internal/retry"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
)

const (
	// Reads are retried once on transient failure. Mutations are never
	// retried anywhere in the console.
	fetchAttempts  = 2
	fetchBaseDelay = 150 * time.Millisecond
)

type entry struct {
	raw       []byte
	expiresAt time.Time
}

// Cache is a TTL query cache keyed by resource-prefixed strings, for
// example "adminMarkets:status=open:page=2". Entries are stored as JSON
// so every read hands the caller a fresh copy; nothing mutable is
// shared across requests.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	gens    map[string]uint64

	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger

	notify func(mutation string, resources []string)
}

// Option configures the cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithNotifier registers a hook called after every invalidation with
// the mutation name and the resources it staled. The server wires this
// to the realtime hub.
func WithNotifier(fn func(mutation string, resources []string)) Option {
	return func(c *Cache) { c.notify = fn }
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds a cache key from a resource constant and filter parts.
// Parts are joined in the given order, so callers must build them
// deterministically.
func Key(resource string, parts ...string) string {
	if len(parts) == 0 {
		return resource
	}
	return resource + ":" + strings.Join(parts, ":")
}

// Resource returns the resource prefix of a key.
func Resource(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// Get returns the cached value for key into dest, fetching it on a
// miss. Concurrent misses on the same key share one fetch. Transient
// fetch errors are retried once; upstream API errors are not, they
// reflect backend state and surface to the caller as-is.
func (c *Cache) Get(ctx context.Context, key string, dest any, fetch func(ctx context.Context) (any, error)) error {
	resource := Resource(key)

	if raw, ok := c.lookup(key); ok {
		metrics.CacheHitsTotal.WithLabelValues(resource).Inc()
		return json.Unmarshal(raw, dest)
	}
	metrics.CacheMissesTotal.WithLabelValues(resource).Inc()

	gen := c.generation(resource)

	v, err, _ := c.group.Do(key, func() (any, error) {
		var value any
		err := retry.Do(ctx, fetchAttempts, fetchBaseDelay, func() error {
			got, err := fetch(ctx)
			if err != nil {
				var apiErr *upstream.APIError
				if errors.As(err, &apiErr) {
					return retry.Permanent(err)
				}
				return err
			}
			value = got
			return nil
		})
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode cache entry %s: %w", key, err)
		}
		c.set(key, raw, gen)
		return raw, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}

// InvalidateFor drops every cached entry staled by the named mutation,
// per the static table in invalidation.go, and notifies subscribers.
// Unknown mutations invalidate nothing and are logged loudly; a silent
// no-op here shows up as operators staring at stale lists.
func (c *Cache) InvalidateFor(ctx context.Context, mutation string) {
	resources, ok := Keys(mutation)
	if !ok {
		c.logger.Error("no invalidation entry for mutation", "mutation", mutation)
		return
	}

	c.Invalidate(resources...)
	metrics.CacheInvalidationsTotal.WithLabelValues(mutation).Add(float64(len(resources)))
	c.logger.Debug("cache invalidated", "mutation", mutation, "resources", resources)

	if c.notify != nil {
		c.notify(mutation, resources)
	}
}

// Invalidate drops all entries under the given resource prefixes and
// bumps their generations so an in-flight fetch that started before the
// invalidation cannot write a stale result back.
func (c *Cache) Invalidate(resources ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, resource := range resources {
		c.gens[resource]++
		for key := range c.entries {
			if key == resource || strings.HasPrefix(key, resource+":") {
				delete(c.entries, key)
			}
		}
	}
}

// Clear empties the cache entirely. Used on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for resource := range c.gens {
		c.gens[resource]++
	}
	c.entries = make(map[string]entry)
}

// Len reports the number of live entries. Expired entries still count
// until a read or invalidation removes them.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[key]; still && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.raw, true
}

func (c *Cache) generation(resource string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[resource]
}

// set stores raw under key unless the resource generation moved since
// the fetch started, in which case the result is already stale and is
// dropped on the floor.
func (c *Cache) set(key string, raw []byte, gen uint64) {
	resource := Resource(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[resource] != gen {
		return
	}
	c.entries[key] = entry{raw: raw, expiresAt: time.Now().Add(c.ttl)}
}
