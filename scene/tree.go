package scene

import (
	"image"
	"math"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/layer"
	"github.com/gogpu/pairkit/template"
	"github.com/gogpu/pairkit/text"
)

// Node is one painted layer of a Tree.
type Node struct {
	LayerID   string
	Kind      template.Kind
	Primitive layer.Primitive
}

// Tree is the ordered result of one render pass. Nodes paint first to last.
type Tree struct {
	Width  float64
	Height float64
	Nodes  []Node
}

// Paint paints every node onto dc in order.
func (t *Tree) Paint(dc *pairkit.Context) {
	if t == nil {
		return
	}
	for _, n := range t.Nodes {
		n.Primitive.Paint(dc)
	}
}

// Node returns the node of a layer.
func (t *Tree) Node(layerID string) (Node, bool) {
	if t == nil {
		return Node{}, false
	}
	for _, n := range t.Nodes {
		if n.LayerID == layerID {
			return n, true
		}
	}
	return Node{}, false
}

// PixelSize returns the canvas size rounded up to whole pixels, at least 1x1.
func (t *Tree) PixelSize() (int, int) {
	return pixels(t.Width), pixels(t.Height)
}

func pixels(v float64) int {
	if !(v >= 1) || math.IsInf(v, 0) {
		return 1
	}
	return int(math.Ceil(v))
}

// TileSource supplies composite tiles for image slots. A nil tile with
// failed false means the tile is still being composited; failed means it
// never will be for these parameters.
type TileSource interface {
	Tile(slotID string, p compositor.Params) (t *compositor.Tile, failed bool)
}

// TileFunc adapts a function to TileSource.
type TileFunc func(slotID string, p compositor.Params) (*compositor.Tile, bool)

// Tile calls f.
func (f TileFunc) Tile(slotID string, p compositor.Params) (*compositor.Tile, bool) {
	return f(slotID, p)
}

// ImageSource supplies decoded images by reference. It returns nil for
// references that are unknown, not loaded yet or failed to load.
type ImageSource interface {
	Image(ref string) image.Image
}

// ImageMap is an ImageSource backed by a map.
type ImageMap map[string]image.Image

// Image returns m[ref].
func (m ImageMap) Image(ref string) image.Image {
	if ref == "" {
		return nil
	}
	return m[ref]
}

// Render builds the scene tree of tpl filled with snap. It does no I/O and
// no compositing: tiles and images come from the given sources, either of
// which may be nil. Equal inputs produce equal trees.
func Render(tpl *template.Template, snap Snapshot, tiles TileSource, images ImageSource) *Tree {
	return render(tpl, snap, tiles, images, text.DefaultRegistry())
}

func render(tpl *template.Template, snap Snapshot, tiles TileSource, images ImageSource, fonts *text.Registry) *Tree {
	if tpl == nil {
		return &Tree{}
	}
	r := renderer{
		tree:   &Tree{Width: tpl.CanvasSize.Width, Height: tpl.CanvasSize.Height},
		snap:   snap,
		tiles:  tiles,
		images: images,
		env: layer.Env{
			Canvas:  tpl.CanvasSize,
			Palette: tpl.Palette,
			Fonts:   fonts,
		},
	}

	r.add(layer.Layer{Kind: template.KindBackground, Background: &tpl.Background}, r.image(tpl.Background.ImageRef))
	r.shapes(tpl.DynamicShapes, false)
	for i := range tpl.ImageSlots {
		s := &tpl.ImageSlots[i]
		r.add(layer.Layer{Kind: template.KindImageSlot, Slot: s}, r.slot(s))
	}
	for i := range tpl.TextFields {
		f := &tpl.TextFields[i]
		r.add(layer.Layer{Kind: template.KindTextField, Text: f}, layer.Content{Value: snap.Value(f.ID)})
	}
	r.shapes(tpl.DynamicShapes, true)
	for i := range tpl.OverlayImages {
		o := &tpl.OverlayImages[i]
		r.add(layer.Layer{Kind: template.KindOverlay, Overlay: o}, r.image(o.ImageRef))
	}
	for i := range snap.Stickers {
		s := &snap.Stickers[i]
		r.add(layer.Layer{Kind: template.KindSticker, Sticker: s}, r.image(s.ImageRef))
	}
	return r.tree
}

type renderer struct {
	tree   *Tree
	snap   Snapshot
	tiles  TileSource
	images ImageSource
	env    layer.Env
}

func (r *renderer) add(l layer.Layer, c layer.Content) {
	p := layer.Render(l, c, r.env)
	if p == nil {
		return
	}
	r.tree.Nodes = append(r.tree.Nodes, Node{LayerID: l.ID(), Kind: l.Kind, Primitive: p})
}

func (r *renderer) shapes(shapes []template.DynamicShape, over bool) {
	for i := range shapes {
		s := &shapes[i]
		if s.Over() == over {
			r.add(layer.Layer{Kind: template.KindShape, Shape: s}, layer.Content{})
		}
	}
}

func (r *renderer) lookup(ref string) image.Image {
	if r.images == nil || ref == "" {
		return nil
	}
	return r.images.Image(ref)
}

func (r *renderer) image(ref string) layer.Content {
	return layer.Content{Image: r.lookup(ref)}
}

// slot resolves what an image slot shows: its tile when ready, the
// placeholder when there is no content or compositing failed, and nothing
// (a neutral rect) while a tile is pending.
func (r *renderer) slot(s *template.ImageSlot) layer.Content {
	ref := r.snap.Content(s.ID)
	if ref == "" || r.tiles == nil {
		return layer.Content{Image: r.lookup(s.PlaceholderImageRef)}
	}
	t, failed := r.tiles.Tile(s.ID, compositor.NewParams(s, ref, r.snap.Adjustment(s.ID)))
	switch {
	case t != nil:
		return layer.Content{Tile: t}
	case failed:
		return layer.Content{Image: r.lookup(s.PlaceholderImageRef)}
	}
	return layer.Content{}
}

// Refs returns every image reference the rendered document can use:
// background, slot content, slot masks, placeholders, overlays and
// stickers.
func Refs(tpl *template.Template, snap Snapshot) map[string]bool {
	refs := make(map[string]bool)
	add := func(ref string) {
		if ref != "" {
			refs[ref] = true
		}
	}
	if tpl != nil {
		if tpl.Background.Type == template.BackgroundImage {
			add(tpl.Background.ImageRef)
		}
		for _, s := range tpl.ImageSlots {
			add(snap.Content(s.ID))
			add(s.PlaceholderImageRef)
			if s.Mask.Type == template.MaskImage {
				add(s.Mask.ImageRef)
			}
		}
		for _, o := range tpl.OverlayImages {
			add(o.ImageRef)
		}
	}
	for _, s := range snap.Stickers {
		add(s.ImageRef)
	}
	return refs
}
