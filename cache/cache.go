package cache

import (
	"sync"
	"sync/atomic"
)

// Cache is a thread-safe LRU cache holding at most Capacity entries.
// A capacity of 0 means unlimited; such a cache shrinks only through
// Delete, Retain and Clear.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	order    list[K]
	capacity int
	onEvict  func(K, V)

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry[K comparable, V any] struct {
	value V
	node  *node[K]
}

// New creates a cache holding at most capacity entries.
// Negative capacities are treated as 0.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		capacity: max(capacity, 0),
	}
}

// OnEvict registers fn to be called for every entry dropped by the capacity
// limit or by Retain. It is not called for Delete, Clear or overwrites.
// fn runs with the cache lock held and must not call back into the cache.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.order.moveToFront(e.node)
	c.hits.Add(1)
	return e.value, true
}

// Peek returns the value for key without touching recency or statistics.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is cached, without touching recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.Peek(key)
	return ok
}

// Set stores value under key, evicting least recently used entries beyond
// capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// Add stores value only if key is absent. It reports whether the value was
// stored, which makes it a compact "seen before?" test.
func (c *Cache[K, V]) Add(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.order.moveToFront(e.node)
		return false
	}
	c.set(key, value)
	return true
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the lock so concurrent callers never duplicate work.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.order.moveToFront(e.node)
		c.hits.Add(1)
		return e.value
	}
	c.misses.Add(1)
	v := create()
	c.set(key, v)
	return v
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.remove(e.node)
	delete(c.entries, key)
	return true
}

// Retain evicts every entry whose key keep rejects and returns how many
// were evicted.
func (c *Cache[K, V]) Retain(keep func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	c.order.each(func(nd *node[K]) {
		if keep(nd.key) {
			return
		}
		e := c.entries[nd.key]
		c.order.remove(nd)
		delete(c.entries, nd.key)
		c.evicted(nd.key, e.value)
		n++
	})
	return n
}

// Keys returns the cached keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.order.len)
	for n := c.order.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

// Clear removes all entries. Statistics are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.order.clear()
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the entry limit, 0 for unlimited.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	return newStats(c.Len(), c.capacity, c.capacity, c.hits.Load(), c.misses.Load(), c.evictions.Load())
}

// set inserts or overwrites under c.mu.
func (c *Cache[K, V]) set(key K, value V) {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.order.moveToFront(e.node)
		return
	}
	c.entries[key] = &entry[K, V]{value: value, node: c.order.pushFront(key)}
	for c.capacity > 0 && c.order.len > c.capacity {
		old, ok := c.order.popBack()
		if !ok {
			break
		}
		e := c.entries[old]
		delete(c.entries, old)
		c.evicted(old, e.value)
	}
}

func (c *Cache[K, V]) evicted(key K, value V) {
	c.evictions.Add(1)
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the entry limit (per shard for Sharded).
	Capacity int
	// TotalCapacity is the limit across all shards.
	TotalCapacity int
	Hits          uint64
	Misses        uint64
	// HitRate is Hits / (Hits + Misses), 0 before any lookup.
	HitRate   float64
	Evictions uint64
}

func newStats(n, capacity, total int, hits, misses, evictions uint64) Stats {
	s := Stats{
		Len:           n,
		Capacity:      capacity,
		TotalCapacity: total,
		Hits:          hits,
		Misses:        misses,
		Evictions:     evictions,
	}
	if lookups := hits + misses; lookups > 0 {
		s.HitRate = float64(hits) / float64(lookups)
	}
	return s
}
