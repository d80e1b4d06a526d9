// Package cache provides a small bounded TTL cache with a single-flight
// loader.  It exists so that components such as the gateway client can
// share one in-progress fetch between concurrent callers instead of
// stashing promises in package-level state.
package cache

import (
    "context"
    "sync"
    "time"

    "golang.org/x/sync/singleflight"
)

type entry struct {
    value     interface{}
    expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
    return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// TTLCache is a thread-safe in-memory cache with per-entry TTL and a hard
// bound on the number of entries.  When full, the entry closest to expiry
// is evicted to make room.
type TTLCache struct {
    mu      sync.RWMutex
    store   map[string]entry
    max     int
    flights singleflight.Group
}

// New returns a TTLCache holding at most maxEntries values.  A non-positive
// bound falls back to a small default.
func New(maxEntries int) *TTLCache {
    if maxEntries <= 0 {
        maxEntries = 64
    }
    return &TTLCache{store: make(map[string]entry), max: maxEntries}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache) Get(key string) (interface{}, bool) {
    c.mu.RLock()
    e, ok := c.store[key]
    c.mu.RUnlock()
    if !ok || e.expired(time.Now()) {
        return nil, false
    }
    return e.value, true
}

// Set stores value under key for ttl.  A non-positive ttl stores the value
// without expiry.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
    var exp time.Time
    if ttl > 0 {
        exp = time.Now().Add(ttl)
    }
    c.mu.Lock()
    if _, exists := c.store[key]; !exists && len(c.store) >= c.max {
        c.evictLocked()
    }
    c.store[key] = entry{value: value, expiresAt: exp}
    c.mu.Unlock()
}

// Delete removes key from the cache.
func (c *TTLCache) Delete(key string) {
    c.mu.Lock()
    delete(c.store, key)
    c.mu.Unlock()
}

// evictLocked drops expired entries first, then the entry closest to
// expiry.  Caller must hold the write lock.
func (c *TTLCache) evictLocked() {
    now := time.Now()
    var victim string
    var victimExp time.Time
    for k, e := range c.store {
        if e.expired(now) {
            delete(c.store, k)
            return
        }
        if victim == "" || (!e.expiresAt.IsZero() && e.expiresAt.Before(victimExp)) {
            victim = k
            victimExp = e.expiresAt
        }
    }
    if victim != "" {
        delete(c.store, victim)
    }
}

// GetOrLoad returns the cached value for key, or runs load exactly once to
// produce it.  Concurrent callers with the same key share the in-flight
// load instead of issuing duplicate fetches.  The loader returns the TTL
// alongside the value, so a lifetime only known at load time (a token's
// expires_in, for example) governs the cached entry.
func (c *TTLCache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (interface{}, time.Duration, error)) (interface{}, error) {
    if v, ok := c.Get(key); ok {
        return v, nil
    }
    v, err, _ := c.flights.Do(key, func() (interface{}, error) {
        // Re-check under the flight: an earlier caller may have filled it.
        if v, ok := c.Get(key); ok {
            return v, nil
        }
        v, ttl, err := load(ctx)
        if err != nil {
            return nil, err
        }
        c.Set(key, v, ttl)
        return v, nil
    })
    if err != nil {
        return nil, err
    }
    return v, nil
}
