// Package thumbcache bounds the memory used by rendered thumbnails.
//
// It is an LRU store with time-based expiry: every read refreshes an entry's
// recency, eviction removes the least recently used entries first, and
// entries older than the TTL are dropped on access. Capacity accounting uses
// an estimated payload size so the bound tracks real memory pressure rather
// than entry counts.
package thumbcache

import (
	"container/list"
	"sync"
	"time"

	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/metrics"
)

const (
	// DefaultMaxBytes is the default capacity of estimated payload bytes.
	DefaultMaxBytes = 50 * 1024 * 1024

	// DefaultTTL is how long an unread entry stays valid.
	DefaultTTL = 5 * time.Minute
)

type entry struct {
	key      string
	value    string
	size     int64
	lastUsed time.Time
}

// Cache is a bounded LRU store for rendered thumbnails.
// All methods are safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	maxBytes int64
	ttl      time.Duration
	entries  map[string]*list.Element
	order    *list.List // front = least recently used
	size     int64
	now      func() time.Time
}

// New returns a cache bounded to maxBytes of estimated payload with the
// given entry TTL. Non-positive arguments select the defaults.
func New(maxBytes int64, ttl time.Duration) *Cache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		maxBytes: maxBytes,
		ttl:      ttl,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// estimateSize approximates the memory cost of a stored value. The 4/3
// factor accounts for text-safe encoding overhead when values travel to
// clients, so the bound errs on the conservative side.
func estimateSize(valueLen int) int64 {
	return (int64(valueLen)*4 + 2) / 3
}

// Get returns the cached value for key. Expired entries are evicted and
// reported absent. A hit refreshes the entry's recency: a read counts as use.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		metrics.CacheMisses.Inc()
		return "", false
	}

	ent := elem.Value.(*entry)
	if c.now().Sub(ent.lastUsed) > c.ttl {
		c.removeElement(elem)
		metrics.CacheEvictions.WithLabelValues("expired").Inc()
		metrics.CacheMisses.Inc()
		return "", false
	}

	ent.lastUsed = c.now()
	c.order.MoveToBack(elem)
	metrics.CacheHits.Inc()
	return ent.value, true
}

// Set stores value under key, evicting least recently used entries as needed.
// A single value larger than the whole capacity is still stored; the policy
// favors availability over a strict bound in that pathological case.
func (c *Cache) Set(key, value string) {
	required := estimateSize(len(value))

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeElement(elem)
	}

	if required > c.maxBytes {
		logging.Warn("thumbcache: entry of %d estimated bytes exceeds capacity %d, storing anyway", required, c.maxBytes)
		metrics.CacheOversized.Inc()
	} else {
		c.ensureCapacity(required)
	}

	ent := &entry{key: key, value: value, size: required, lastUsed: c.now()}
	c.entries[key] = c.order.PushBack(ent)
	c.size += required
	metrics.CacheSizeBytes.Set(float64(c.size))
	metrics.CacheEntries.Set(float64(len(c.entries)))
}

// ensureCapacity evicts entries oldest-first until required bytes fit.
// Caller must hold c.mu.
func (c *Cache) ensureCapacity(required int64) {
	for c.size+required > c.maxBytes {
		oldest := c.order.Front()
		if oldest == nil {
			return
		}
		ent := oldest.Value.(*entry)
		logging.Debug("thumbcache: evicting %s (%d bytes) for capacity", ent.key, ent.size)
		c.removeElement(oldest)
		metrics.CacheEvictions.WithLabelValues("capacity").Inc()
	}
}

// Has reports whether a live (non-expired) entry exists for key without
// refreshing its recency.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.now().Sub(elem.Value.(*entry).lastUsed) > c.ttl {
		c.removeElement(elem)
		metrics.CacheEvictions.WithLabelValues("expired").Inc()
		return false
	}
	return true
}

// Remove deletes the entry for key if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeElement(elem)
	}
}

// Clear drops all entries and resets the size total.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.size = 0
	metrics.CacheSizeBytes.Set(0)
	metrics.CacheEntries.Set(0)
}

// Len returns the number of stored entries, including any that have expired
// but have not been swept yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Size returns the estimated bytes held. It always equals the sum of the
// stored entries' estimates.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// removeElement unlinks an entry and updates the running size total.
// Caller must hold c.mu.
func (c *Cache) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.entries, ent.key)
	c.size -= ent.size
	metrics.CacheSizeBytes.Set(float64(c.size))
	metrics.CacheEntries.Set(float64(len(c.entries)))
}
