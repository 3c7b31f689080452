package content

import (
	"context"
	"errors"
	"image"
	"image/draw"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultPrefetchWorkers bounds concurrent loads started by Prefetch.
const DefaultPrefetchWorkers = 4

// Arena owns the decoded images of one document. Images are converted to
// *image.RGBA once so that every consumer samples the same pixels.
//
// Failed loads are remembered, so a broken reference is not fetched again
// on every render; Forget or Retain clears the record.
//
// Arena is safe for concurrent use.
type Arena struct {
	loader Loader
	images *cache.Cache[string, *image.RGBA]
	failed *cache.Cache[string, error]
	group  singleflight.Group
}

// NewArena returns an arena loading through l and holding at most capacity
// images (0 means no limit beyond Retain).
func NewArena(l Loader, capacity int) *Arena {
	a := &Arena{
		loader: l,
		images: cache.New[string, *image.RGBA](capacity),
		failed: cache.New[string, error](capacity),
	}
	a.images.OnEvict(func(ref string, _ *image.RGBA) {
		pairkit.Logger().Debug("content: image evicted", "ref", ref)
	})
	return a
}

// Lookup returns an already loaded image without blocking.
func (a *Arena) Lookup(ref string) (*image.RGBA, bool) {
	if a == nil || ref == "" {
		return nil, false
	}
	return a.images.Get(ref)
}

// Image returns the image for ref, loading it if needed. Concurrent calls
// for the same ref share one load.
func (a *Arena) Image(ctx context.Context, ref string) (*image.RGBA, error) {
	if ref == "" {
		return nil, ErrNotFound
	}
	if img, ok := a.images.Get(ref); ok {
		return img, nil
	}
	if err, ok := a.failed.Peek(ref); ok {
		return nil, err
	}
	v, err, _ := a.group.Do(ref, func() (any, error) {
		src, err := a.loader.Load(ctx, ref)
		if err != nil {
			if ctx.Err() == nil {
				pairkit.Logger().Warn("content: load failed", "ref", ref, "error", err)
				a.failed.Set(ref, err)
			}
			return nil, err
		}
		img := ToRGBA(src)
		a.images.Set(ref, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*image.RGBA), nil
}

// Prefetch loads refs concurrently. Individual load failures are recorded
// and logged, not returned; only cancellation of ctx is an error.
func (a *Arena) Prefetch(ctx context.Context, refs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultPrefetchWorkers)
	for _, ref := range refs {
		if ref == "" || a.images.Contains(ref) {
			continue
		}
		g.Go(func() error {
			_, err := a.Image(ctx, ref)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Failed reports whether loading ref has failed.
func (a *Arena) Failed(ref string) bool {
	return a != nil && a.failed.Contains(ref)
}

// Forget drops the image or failure recorded for ref.
func (a *Arena) Forget(ref string) {
	a.images.Delete(ref)
	a.failed.Delete(ref)
}

// Retain drops every image and failure whose reference is not in keep and
// returns the number of images released.
func (a *Arena) Retain(keep map[string]bool) int {
	if a == nil {
		return 0
	}
	a.failed.Retain(func(ref string) bool { return keep[ref] })
	return a.images.Retain(func(ref string) bool { return keep[ref] })
}

// Len returns the number of loaded images.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return a.images.Len()
}

// Stats returns the image cache statistics.
func (a *Arena) Stats() cache.Stats {
	return a.images.Stats()
}

// ToRGBA returns img as an *image.RGBA with bounds starting at the origin.
// Images already in that form are returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
