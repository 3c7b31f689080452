package scene

import (
	"context"
	"errors"
	"image"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/content"
	"github.com/gogpu/pairkit/template"
	"github.com/gogpu/pairkit/text"
)

// DefaultArenaCapacity bounds the decoded images an Assembler keeps.
const DefaultArenaCapacity = 64

// Option configures an Assembler.
type Option func(*options)

type options struct {
	arenaCapacity int
	compositor    *compositor.Compositor
	workers       int
	fonts         *text.Registry
	onChange      func()
}

func defaultOptions() options {
	return options{
		arenaCapacity: DefaultArenaCapacity,
		workers:       compositor.DefaultWorkers,
	}
}

// WithArenaCapacity sets how many decoded images are kept.
func WithArenaCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.arenaCapacity = n
		}
	}
}

// WithCompositor shares a tile cache between assemblers.
func WithCompositor(c *compositor.Compositor) Option {
	return func(o *options) { o.compositor = c }
}

// WithWorkers bounds concurrent background compositing.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithFonts sets the font registry used for text fields.
func WithFonts(r *text.Registry) Option {
	return func(o *options) { o.fonts = r }
}

// WithOnChange registers a callback invoked from a background goroutine
// whenever an image or tile becomes ready and a new Render would differ.
func WithOnChange(fn func()) Option {
	return func(o *options) { o.onChange = fn }
}

// Assembler renders one document of one template. Render never blocks on
// I/O or compositing: missing images are loaded and tiles composited in
// the background, and WithOnChange reports when to render again.
//
// An Assembler is safe for concurrent use.
type Assembler struct {
	tpl      *template.Template
	doc      *Document
	arena    *content.Arena
	comp     *compositor.Compositor
	queue    *compositor.Queue
	fonts    *text.Registry
	workers  int
	onChange func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	loading map[string]bool
	closed  bool
}

// NewAssembler returns an Assembler for doc filled into tpl, loading
// images through l. A nil doc starts a new document.
func NewAssembler(tpl *template.Template, doc *Document, l content.Loader, opts ...Option) *Assembler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil {
		doc = NewDocument()
	}
	if l == nil {
		l = content.LoaderFunc(func(context.Context, string) (image.Image, error) {
			return nil, content.ErrNotFound
		})
	}
	if o.compositor == nil {
		o.compositor = compositor.New()
	}
	if o.fonts == nil {
		o.fonts = text.DefaultRegistry()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &Assembler{
		tpl:      tpl,
		doc:      doc,
		arena:    content.NewArena(l, o.arenaCapacity),
		comp:     o.compositor,
		fonts:    o.fonts,
		workers:  o.workers,
		onChange: o.onChange,
		ctx:      ctx,
		cancel:   cancel,
		loading:  make(map[string]bool),
	}
	a.queue = compositor.NewQueue(a.comp,
		compositor.WithWorkers(o.workers),
		compositor.WithOnReady(func(string, *compositor.Tile) { a.notify() }),
	)
	return a
}

// Template returns the template being filled.
func (a *Assembler) Template() *template.Template { return a.tpl }

// Document returns the document being rendered.
func (a *Assembler) Document() *Document { return a.doc }

// Compositor returns the tile cache.
func (a *Assembler) Compositor() *compositor.Compositor { return a.comp }

// Arena returns the decoded image arena.
func (a *Assembler) Arena() *content.Arena { return a.arena }

// Render renders the current document. Slots whose tile is not ready show
// a neutral rect; images not loaded yet are left out. After rendering,
// images no layer uses any more are released.
func (a *Assembler) Render() *Tree {
	snap := a.doc.Snapshot()
	tree := render(a.tpl, snap, TileFunc(a.requestTile), ImageSource(asyncImages{a}), a.fonts)
	if n := a.arena.Retain(Refs(a.tpl, snap)); n > 0 {
		pairkit.Logger().Debug("scene: released images", "count", n)
	}
	return tree
}

func (a *Assembler) requestTile(slotID string, p compositor.Params) (*compositor.Tile, bool) {
	src, ok := a.arena.Lookup(p.ImageRef)
	if !ok {
		if a.arena.Failed(p.ImageRef) {
			return nil, true
		}
		a.load(p.ImageRef)
		return nil, false
	}
	maskImg, ready := a.maskImage(p, a.load)
	if !ready {
		return nil, false
	}
	if t, ok := a.queue.Request(slotID, p, src, maskImg); ok {
		return t, false
	}
	return nil, a.queue.Failed(p) != nil
}

// maskImage returns the decoded mask image of p. ready is false while the
// mask is still loading; a mask that failed to load is reported ready and
// nil, so the stencil falls back to the slot rect.
func (a *Assembler) maskImage(p compositor.Params, load func(string)) (image.Image, bool) {
	if p.Mask.Type != template.MaskImage || p.Mask.ImageRef == "" {
		return nil, true
	}
	if m, ok := a.arena.Lookup(p.Mask.ImageRef); ok {
		return m, true
	}
	if a.arena.Failed(p.Mask.ImageRef) {
		return nil, true
	}
	load(p.Mask.ImageRef)
	return nil, false
}

// load starts loading ref in the background once.
func (a *Assembler) load(ref string) {
	if ref == "" || a.arena.Failed(ref) {
		return
	}
	a.mu.Lock()
	if a.closed || a.loading[ref] {
		a.mu.Unlock()
		return
	}
	a.loading[ref] = true
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		_, err := a.arena.Image(a.ctx, ref)
		a.mu.Lock()
		delete(a.loading, ref)
		a.mu.Unlock()
		if err == nil {
			a.notify()
		}
	}()
}

func (a *Assembler) notify() {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if !closed && a.onChange != nil {
		a.onChange()
	}
}

type asyncImages struct{ a *Assembler }

func (s asyncImages) Image(ref string) image.Image {
	img, ok := s.a.arena.Lookup(ref)
	if !ok {
		s.a.load(ref)
		return nil
	}
	return img
}

type loadedImages struct{ a *content.Arena }

func (s loadedImages) Image(ref string) image.Image {
	img, ok := s.a.Lookup(ref)
	if !ok {
		return nil
	}
	return img
}

// Resolve loads every image and composites every slot before rendering,
// so the tree has no pending slots. Load and composite failures degrade to
// placeholders; only cancellation of ctx is an error.
func (a *Assembler) Resolve(ctx context.Context) (*Tree, error) {
	snap := a.doc.Snapshot()
	refs := Refs(a.tpl, snap)
	if err := a.arena.Prefetch(ctx, slices.Sorted(maps.Keys(refs))); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range a.tpl.ImageSlots {
		s := &a.tpl.ImageSlots[i]
		ref := snap.Content(s.ID)
		src, ok := a.arena.Lookup(ref)
		if !ok {
			continue
		}
		p := compositor.NewParams(s, ref, snap.Adjustment(s.ID))
		maskImg, _ := a.maskImage(p, func(string) {})
		g.Go(func() error {
			_, err := a.comp.Composite(gctx, src, maskImg, p)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				pairkit.Logger().Warn("scene: composite failed", "slot", s.ID, "ref", ref, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tiles := TileFunc(func(_ string, p compositor.Params) (*compositor.Tile, bool) {
		t, ok := a.comp.Lookup(p.Key())
		return t, !ok
	})
	tree := render(a.tpl, snap, tiles, loadedImages{a.arena}, a.fonts)
	a.arena.Retain(refs)
	return tree, nil
}

// Export resolves the document and exports it to sink.
func (a *Assembler) Export(ctx context.Context, opts ExportOptions, sink Sink) error {
	tree, err := a.Resolve(ctx)
	if err != nil {
		return err
	}
	return Export(ctx, tree, opts, sink)
}

// Wait blocks until background loads and compositing started so far have
// finished. It must not run concurrently with Render.
func (a *Assembler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return a.queue.Wait(ctx)
}

// Close abandons background loads and compositing. Tiles that finish
// after Close are discarded. Close is idempotent.
func (a *Assembler) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()
	a.cancel()
	a.queue.Close()
	a.wg.Wait()
}
