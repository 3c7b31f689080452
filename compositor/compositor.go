package compositor

import (
	"context"
	"image"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/cache"
)

// DefaultWorkers is the number of tiles a Queue composites concurrently.
const DefaultWorkers = 2

// Option configures a Compositor or a Queue.
type Option func(*options)

type options struct {
	capacity int
	workers  int
	onReady  func(slotID string, t *Tile)
}

func defaultOptions() options {
	return options{
		capacity: cache.DefaultShardCapacity,
		workers:  DefaultWorkers,
	}
}

// WithCapacity sets the tile cache capacity per shard.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithWorkers bounds how many tiles a Queue composites at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithOnReady registers a callback invoked from a worker goroutine each
// time a Queue finishes a tile that is still wanted.
func WithOnReady(fn func(slotID string, t *Tile)) Option {
	return func(o *options) { o.onReady = fn }
}

// Compositor composites tiles through a cache keyed by Params.Key.
// It is safe for concurrent use.
type Compositor struct {
	tiles *cache.Sharded[string, *Tile]
}

// New creates a Compositor.
func New(opts ...Option) *Compositor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Compositor{tiles: cache.NewSharded[string, *Tile](o.capacity, cache.StringHasher)}
}

// Lookup returns the cached tile for key.
func (c *Compositor) Lookup(key string) (*Tile, bool) {
	return c.tiles.Get(key)
}

// Composite returns the cached tile for p or composites and caches it.
func (c *Compositor) Composite(ctx context.Context, src, maskImg image.Image, p Params) (*Tile, error) {
	key := p.Key()
	if t, ok := c.tiles.Get(key); ok {
		pairkit.Logger().Debug("compositor: tile cache hit", "ref", p.ImageRef)
		return t, nil
	}
	pairkit.Logger().Debug("compositor: tile cache miss", "ref", p.ImageRef)
	t, err := Composite(ctx, src, maskImg, p)
	if err != nil {
		return nil, err
	}
	c.store(t)
	return t, nil
}

func (c *Compositor) store(t *Tile) {
	c.tiles.Set(t.Key, t)
}

// Retain drops every cached tile whose key is not in keep and returns the
// number removed.
func (c *Compositor) Retain(keep map[string]bool) int {
	return c.tiles.Retain(func(k string) bool { return keep[k] })
}

// Len returns the number of cached tiles.
func (c *Compositor) Len() int { return c.tiles.Len() }

// Stats returns tile cache statistics.
func (c *Compositor) Stats() cache.Stats { return c.tiles.Stats() }
