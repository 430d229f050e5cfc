// Package cache provides a small per-session TTL cache.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// SessionCache memoises one value per session for a fixed TTL.
// Concurrent misses for the same session share a single load.
type SessionCache[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry[V]
	// generation advances on every invalidation; loads that overlap one are not stored
	generation uint64
}

// NewSessionCache creates a cache whose entries live for ttl
func NewSessionCache[V any](ttl time.Duration) *SessionCache[V] {
	return &SessionCache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for sessionID or calls load and caches its result.
// Errors are not cached.
func (c *SessionCache[V]) Get(ctx context.Context, sessionID string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lookup(sessionID); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(sessionID, func() (interface{}, error) {
		if v, ok := c.lookup(sessionID); ok {
			return v, nil
		}
		gen := c.currentGeneration()
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.store(sessionID, v, gen)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Invalidate drops the entry for sessionID
func (c *SessionCache[V]) Invalidate(sessionID string) {
	c.mu.Lock()
	delete(c.entries, sessionID)
	c.generation++
	c.mu.Unlock()
}

// InvalidateMatching drops every entry whose value satisfies match and returns how many were dropped
func (c *SessionCache[V]) InvalidateMatching(match func(V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	n := 0
	for k, e := range c.entries {
		if match(e.value) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of live entries
func (c *SessionCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *SessionCache[V]) lookup(sessionID string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sessionID]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, sessionID)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *SessionCache[V]) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// store caches v unless an invalidation happened since gen was read
func (c *SessionCache[V]) store(sessionID string, v V, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return
	}

	now := c.now()
	// sweep expired sessions so abandoned ones do not accumulate
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[sessionID] = entry[V]{value: v, expiresAt: now.Add(c.ttl)}
}
