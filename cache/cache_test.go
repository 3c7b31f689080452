package cache

import (
	"strconv"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)
	c.Set("a", 1)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("overwrite: Get(a) = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](3)
	var evicted []string
	c.OnEvict(func(k string, _ int) { evicted = append(evicted, k) })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a") // a is now most recent
	c.Set("d", 4)

	if c.Contains("b") {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if !c.Contains(k) {
			t.Errorf("%s should still be cached", k)
		}
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if got := c.Keys(); len(got) != 3 || got[0] != "d" || got[2] != "c" {
		t.Errorf("Keys() = %v, want [d a c]", got)
	}
}

func TestCachePeekKeepsRecency(t *testing.T) {
	c := New[int, int](2)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Peek(1)
	c.Set(3, 3)
	if c.Contains(1) {
		t.Error("Peek must not refresh recency")
	}
	if st := c.Stats(); st.Hits != 0 || st.Misses != 0 {
		t.Errorf("Peek touched stats: %+v", st)
	}
}

func TestCacheUnlimited(t *testing.T) {
	for _, capacity := range []int{0, -5} {
		c := New[int, int](capacity)
		for i := range 1000 {
			c.Set(i, i)
		}
		if c.Len() != 1000 || c.Capacity() != 0 {
			t.Errorf("capacity %d: Len() = %d, Capacity() = %d", capacity, c.Len(), c.Capacity())
		}
	}
}

func TestCacheAdd(t *testing.T) {
	c := New[string, struct{}](2)
	if !c.Add("e1", struct{}{}) {
		t.Error("first Add should store")
	}
	if c.Add("e1", struct{}{}) {
		t.Error("second Add of the same key should report seen")
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	calls := 0
	create := func() int { calls++; return 7 }

	for range 3 {
		if v := c.GetOrCreate("k", create); v != 7 {
			t.Errorf("GetOrCreate = %d, want 7", v)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits 1 miss", st)
	}
	if st.HitRate < 0.66 || st.HitRate > 0.67 {
		t.Errorf("HitRate = %v", st.HitRate)
	}
}

func TestCacheRetain(t *testing.T) {
	c := New[string, int](0)
	var evicted []string
	c.OnEvict(func(k string, _ int) { evicted = append(evicted, k) })
	for _, k := range []string{"bg.png", "left.jpg", "right.jpg", "old.jpg"} {
		c.Set(k, 0)
	}
	visible := map[string]bool{"bg.png": true, "right.jpg": true}

	n := c.Retain(func(k string) bool { return visible[k] })
	if n != 2 || c.Len() != 2 {
		t.Fatalf("Retain evicted %d, Len() = %d; want 2, 2", n, c.Len())
	}
	if !c.Contains("bg.png") || !c.Contains("right.jpg") {
		t.Error("visible keys were evicted")
	}
	// Least recently used first.
	if len(evicted) != 2 || evicted[0] != "left.jpg" || evicted[1] != "old.jpg" {
		t.Errorf("evicted = %v", evicted)
	}
	if c.Stats().Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", c.Stats().Evictions)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[string, int](4)
	c.OnEvict(func(string, int) { t.Error("OnEvict called for Delete/Clear") })
	c.Set("a", 1)
	c.Set("b", 2)
	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete should succeed exactly once")
	}
	c.Clear()
	if c.Len() != 0 || len(c.Keys()) != 0 {
		t.Error("Clear left entries behind")
	}
	c.Set("c", 3) // list must be usable after Clear
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](64)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				k := (g*31 + i) % 100
				c.GetOrCreate(k, func() int { return k })
				c.Get(k)
			}
		}()
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}

func TestSharded(t *testing.T) {
	s := NewSharded[string, int](4, StringHasher)
	for i := range 200 {
		s.Set(strconv.Itoa(i), i)
	}
	if s.Len() > 4*ShardCount {
		t.Errorf("Len() = %d exceeds total capacity", s.Len())
	}
	for i, n := range s.ShardLen() {
		if n > 4 {
			t.Errorf("shard %d holds %d entries", i, n)
		}
	}
	s.Set("x", 42)
	if v, ok := s.Get("x"); !ok || v != 42 {
		t.Errorf("Get(x) = %d, %v", v, ok)
	}
	st := s.Stats()
	if st.Capacity != 4 || st.TotalCapacity != 4*ShardCount || st.Evictions == 0 {
		t.Errorf("stats = %+v", st)
	}
	if !s.Delete("x") {
		t.Error("Delete(x) = false")
	}
	s.Retain(func(string) bool { return false })
	if s.Len() != 0 {
		t.Errorf("Retain(none) left %d entries", s.Len())
	}
}

func TestShardedDefaultCapacity(t *testing.T) {
	s := NewSharded[uint64, int](0, Uint64Hasher)
	if st := s.Stats(); st.Capacity != DefaultShardCapacity {
		t.Errorf("Capacity = %d, want %d", st.Capacity, DefaultShardCapacity)
	}
	for i := range uint64(ShardCount) {
		s.Set(i, int(i))
	}
	for i, n := range s.ShardLen() {
		if n != 1 {
			t.Errorf("identity hash: shard %d holds %d, want 1", i, n)
		}
	}
	s.Clear()
	if s.Len() != 0 {
		t.Error("Clear left entries")
	}
}

func BenchmarkShardedGet(b *testing.B) {
	s := NewSharded[string, int](256, StringHasher)
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
		s.Set(keys[i], i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Get(keys[i%len(keys)])
			i++
		}
	})
}
