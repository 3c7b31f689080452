package interact

import (
	"math"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/layer"
	"github.com/gogpu/pairkit/resolve"
)

// SlotGesture is the net change of a gesture on an image slot. DX and DY
// are in slot units; ScaleFactor multiplies; Rotation is in degrees.
type SlotGesture struct {
	DX, DY      float64
	ScaleFactor float64
	Rotation    float64
}

// Identity is the gesture that changes nothing.
func Identity() SlotGesture {
	return SlotGesture{ScaleFactor: 1}
}

// IsIdentity reports whether g changes nothing.
func (g SlotGesture) IsIdentity() bool {
	return g.DX == 0 && g.DY == 0 && (g.ScaleFactor == 1 || !usable(g.ScaleFactor)) && g.Rotation == 0
}

// EndSlotGesture folds g into adj for a slot of size w x h. Pan deltas are
// measured in half extents and the pan stays in [-1, 1]. A zero extent
// ignores the drag along that axis; a non-positive or non-finite scale
// factor and a non-finite rotation are ignored.
func EndSlotGesture(adj compositor.Adjustment, w, h float64, g SlotGesture) compositor.Adjustment {
	adj = adj.Clone()
	adj.X = resolve.ClampPan(adj.X + resolve.PanDelta(g.DX, w/2))
	adj.Y = resolve.ClampPan(adj.Y + resolve.PanDelta(g.DY, h/2))
	if !usable(adj.Scale) {
		adj.Scale = 1
	}
	if usable(g.ScaleFactor) {
		adj.Scale *= g.ScaleFactor
	}
	if finite(g.Rotation) {
		adj.Rotation = math.Mod(adj.Rotation+g.Rotation, 360)
	}
	return adj
}

// Drag tracks a gesture on an image slot.
type Drag struct {
	active bool
	origin pairkit.Point
	g      SlotGesture
}

// Begin starts a gesture at a slot-local point.
func (d *Drag) Begin(x, y float64) {
	d.active = true
	d.origin = pairkit.Pt(x, y)
	d.g = Identity()
}

// Active reports whether a gesture is running.
func (d *Drag) Active() bool { return d.active }

// Move updates the pointer position.
func (d *Drag) Move(x, y float64) {
	if !d.active {
		return
	}
	d.g.DX = x - d.origin.X
	d.g.DY = y - d.origin.Y
}

// Pinch multiplies the scale and adds rotation in degrees.
func (d *Drag) Pinch(factor, rotation float64) {
	if !d.active {
		return
	}
	if usable(factor) {
		d.g.ScaleFactor *= factor
	}
	if finite(rotation) {
		d.g.Rotation += rotation
	}
}

// Gesture returns the gesture so far.
func (d *Drag) Gesture() SlotGesture {
	if !d.active {
		return Identity()
	}
	return d.g
}

// Preview returns the transform applied to the tile of a w x h slot while
// the gesture runs: scale and rotation about the slot centre, then the
// drag offset.
func (d *Drag) Preview(w, h float64) pairkit.Matrix {
	if !d.active {
		return pairkit.Identity()
	}
	cx, cy := w/2, h/2
	return pairkit.Translate(cx+d.g.DX, cy+d.g.DY).
		Multiply(pairkit.Rotate(pairkit.Radians(d.g.Rotation))).
		Multiply(pairkit.Scale(d.g.ScaleFactor, d.g.ScaleFactor)).
		Multiply(pairkit.Translate(-cx, -cy))
}

// End finishes the gesture, resets the preview to identity and returns
// the gesture.
func (d *Drag) End() SlotGesture {
	g := d.Gesture()
	*d = Drag{}
	return g
}

// StickerGesture is the net change of a gesture on a sticker box. DX and
// DY are in canvas units, ScaleX and ScaleY multiply the box size and
// Rotation is in degrees.
type StickerGesture struct {
	DX, DY         float64
	ScaleX, ScaleY float64
	Rotation       float64
}

// EndStickerTransform applies g to box and enforces the minimum sticker
// size. Non-finite deltas and non-positive factors are ignored.
func EndStickerTransform(box resolve.Transform, g StickerGesture) resolve.Transform {
	if finite(g.DX) {
		box.X += g.DX
	}
	if finite(g.DY) {
		box.Y += g.DY
	}
	if usable(g.ScaleX) {
		box.Width *= g.ScaleX
	}
	if usable(g.ScaleY) {
		box.Height *= g.ScaleY
	}
	if finite(g.Rotation) {
		box.Rotation = math.Mod(box.Rotation+g.Rotation, 360)
	}
	box.Width = minSize(box.Width)
	box.Height = minSize(box.Height)
	return box
}

func minSize(v float64) float64 {
	if math.IsNaN(v) || v < layer.MinStickerSize {
		return layer.MinStickerSize
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
