package cache

import "sync"

// Cache is a generic thread-safe LRU cache.
// When the cache exceeds its capacity, the least recently used entry is
// evicted.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*cacheEntry[V]
	capacity int
	tick     int64 // Monotonic access counter
	onEvict  func(K, V)
	hits     uint64
	misses   uint64
}

// cacheEntry holds a cached value with its access time.
type cacheEntry[V any] struct {
	value V
	atime int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithEvict sets the callback run for every entry that leaves the cache
// through eviction, Delete, DeleteFunc or Clear.
func WithEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// New creates a new cache holding at most capacity entries.
// A capacity of 0 means unlimited.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries:  make(map[K]*cacheEntry[V]),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.tick++
	entry.atime = c.tick
	return entry.value, true
}

// Set stores a value in the cache. A value already stored under key is
// replaced and passed to the eviction callback.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.evict(key, old.value)
	}
	c.insert(key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the lock; when it fails nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.hits++
		c.tick++
		entry.atime = c.tick
		return entry.value, nil
	}
	c.misses++

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.insert(key, value)
	return value, nil
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.evict(key, entry.value)
	return true
}

// DeleteFunc removes every entry whose key matches and returns how many
// were removed.
func (c *Cache[K, V]) DeleteFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, entry := range c.entries {
		if match(key) {
			delete(c.entries, key)
			c.evict(key, entry.value)
			n++
		}
	}
	return n
}

// Clear removes all entries from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		c.evict(key, entry.value)
	}
	c.entries = make(map[K]*cacheEntry[V])
	c.tick = 0
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Capacity returns the capacity of the cache.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:      len(c.entries),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// insert stores value and evicts down to capacity.
// Caller must hold c.mu.
func (c *Cache[K, V]) insert(key K, value V) {
	c.tick++
	c.entries[key] = &cacheEntry[V]{value: value, atime: c.tick}
	for c.capacity > 0 && len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used entry.
// Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	var (
		oldest K
		atime  int64
		found  bool
	)
	for key, e := range c.entries {
		if !found || e.atime < atime {
			oldest, atime, found = key, e.atime, true
		}
	}
	if !found {
		return
	}
	entry := c.entries[oldest]
	delete(c.entries, oldest)
	c.evict(oldest, entry.value)
}

func (c *Cache[K, V]) evict(key K, value V) {
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries, 0 when unlimited.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
}

// HitRate returns the hit rate as a fraction in [0, 1].
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
