package cache

import (
	"hash/fnv"
)

const (
	// ShardCount is the number of shards in a Sharded cache. It is a power
	// of two so shard selection is a mask.
	ShardCount = 16

	// DefaultShardCapacity is the per-shard limit used when NewSharded is
	// given a non-positive capacity.
	DefaultShardCapacity = 64
)

// Hasher maps a key to the hash used for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher is the FNV-1a hash of s.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Uint64Hasher is the identity hash.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Sharded spreads keys over ShardCount independent LRU caches so that
// concurrent lookups of different keys rarely contend on a lock. Recency
// and capacity are per shard.
type Sharded[K comparable, V any] struct {
	shards [ShardCount]*Cache[K, V]
	hasher Hasher[K]
}

// NewSharded creates a sharded cache with capacity entries per shard.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultShardCapacity
	}
	s := &Sharded[K, V]{hasher: hasher}
	for i := range s.shards {
		s.shards[i] = New[K, V](capacity)
	}
	return s
}

func (s *Sharded[K, V]) shard(key K) *Cache[K, V] {
	return s.shards[s.hasher(key)&(ShardCount-1)]
}

// Get returns the value for key.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	return s.shard(key).Get(key)
}

// Set stores value under key.
func (s *Sharded[K, V]) Set(key K, value V) {
	s.shard(key).Set(key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
// Only the key's shard is locked while create runs.
func (s *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	return s.shard(key).GetOrCreate(key, create)
}

// Delete removes key and reports whether it was present.
func (s *Sharded[K, V]) Delete(key K) bool {
	return s.shard(key).Delete(key)
}

// Retain evicts every entry whose key keep rejects, shard by shard.
func (s *Sharded[K, V]) Retain(keep func(K) bool) int {
	n := 0
	for _, c := range s.shards {
		n += c.Retain(keep)
	}
	return n
}

// Clear removes all entries.
func (s *Sharded[K, V]) Clear() {
	for _, c := range s.shards {
		c.Clear()
	}
}

// Len returns the number of entries across all shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, c := range s.shards {
		n += c.Len()
	}
	return n
}

// ShardLen returns the number of entries in each shard.
func (s *Sharded[K, V]) ShardLen() [ShardCount]int {
	var lens [ShardCount]int
	for i, c := range s.shards {
		lens[i] = c.Len()
	}
	return lens
}

// Stats aggregates the statistics of all shards.
func (s *Sharded[K, V]) Stats() Stats {
	var n int
	var hits, misses, evictions uint64
	for _, c := range s.shards {
		st := c.Stats()
		n += st.Len
		hits += st.Hits
		misses += st.Misses
		evictions += st.Evictions
	}
	capacity := s.shards[0].Capacity()
	return newStats(n, capacity, capacity*ShardCount, hits, misses, evictions)
}
