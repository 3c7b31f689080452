// Package cache provides the generic LRU caches behind the composite tile
// cache, the decoded-image arena and collaboration event deduplication.
//
// # Cache[K, V]
//
// A thread-safe LRU cache with an exact entry limit, eviction callbacks and
// reference-driven retention:
//
//	c := cache.New[string, *image.RGBA](64)
//	c.OnEvict(func(ref string, img *image.RGBA) { ... })
//	c.Set("photo.jpg", img)
//	c.Retain(func(ref string) bool { return visible[ref] })
//
// # Sharded[K, V]
//
// A sharded LRU cache for keys that are looked up from many goroutines at
// once, such as composite tiles produced by parallel workers:
//
//	tiles := cache.NewSharded[string, *Tile](32, cache.StringHasher)
//
// Both caches are safe for concurrent use and must not be copied after
// creation.
package cache
