package atproto

import (
	"sync"
	"time"

	"github.com/lukelittle/claroz/internal/core"
)

// profileCache is a read-mostly TTL cache for profile lookups. Entries are
// immutable once written and simply expire; there is no invalidation
// beyond expiry.
type profileCache struct {
	mu      sync.RWMutex
	entries map[string]*profileCacheEntry
	ttl     time.Duration
}

type profileCacheEntry struct {
	profile   *core.RemoteProfile
	timestamp time.Time
}

func newProfileCache(ttl time.Duration) *profileCache {
	return &profileCache{
		entries: make(map[string]*profileCacheEntry),
		ttl:     ttl,
	}
}

func (c *profileCache) Get(handle string) *core.RemoteProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[handle]
	if !ok || time.Since(entry.timestamp) >= c.ttl {
		return nil
	}
	return entry.profile
}

func (c *profileCache) Put(handle string, profile *core.RemoteProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[handle] = &profileCacheEntry{
		profile:   profile,
		timestamp: time.Now(),
	}
}
