// Package cache is a small TTL cache used for suggestion and lookup
// responses. Two backends exist: an in-process map and Redis. Entries are
// idempotent upstream payloads, so concurrent misses writing the same key is
// harmless duplication, not a correctness problem.
package cache

import (
	"context"
	"sync"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, val string, ttl time.Duration)
}

type entry struct {
	val     string
	expires time.Time
}

type Memory struct {
	mu sync.Mutex
	m  map[string]entry
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]entry)}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || time.Now().After(e.expires) {
		return "", false
	}
	return e.val, true
}

func (c *Memory) Set(_ context.Context, key, val string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = entry{val: val, expires: time.Now().Add(ttl)}
}

// Sweep drops every expired entry. Scheduled periodically; there is no
// per-access eviction beyond the staleness check in Get.
func (c *Memory) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	removed := 0
	for k, e := range c.m {
		if now.After(e.expires) {
			delete(c.m, k)
			removed++
		}
	}
	return removed
}

func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
