package device

import (
	"sync"
	"time"
)

// SnapshotTTL is how long a cached snapshot stays valid.
const SnapshotTTL = 5 * time.Minute

type cacheEntry struct {
	snap     Snapshot
	storedAt time.Time
}

// SnapshotCache memoizes recent snapshots so repeated queries inside the
// validity window skip the expensive probes. Expired entries are treated as
// absent and dropped lazily on read; there is no background sweep.
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewSnapshotCache builds a cache with the standard 5 minute TTL.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]cacheEntry),
		ttl:     SnapshotTTL,
		now:     time.Now,
	}
}

// Get returns the cached snapshot for key if it is still within the
// validity window.
func (c *SnapshotCache) Get(key string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return Snapshot{}, false
	}
	return e.snap, true
}

// Put stores a snapshot under key, restarting its validity window.
func (c *SnapshotCache) Put(key string, snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{snap: snap, storedAt: c.now()}
}

// Clear drops all entries.
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
