package pairkit

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Context is the drawing context used by every layer renderer.
// It owns an *image.RGBA canvas (premultiplied), the current path, the paint
// state and the transformation stack.
type Context struct {
	width  int
	height int
	img    *image.RGBA

	path   *Path
	state  drawState
	stack  []drawState
	layers []*layer
}

// drawState is everything Push saves and Pop restores.
type drawState struct {
	matrix Matrix
	fill   Brush
	stroke Brush
	line   Stroke
	alpha  float64
	blend  BlendMode
	interp xdraw.Interpolator

	// clip is a device-space coverage mask; nil means unclipped. Masks are
	// never mutated once installed, so saved states can share them.
	clip *Mask
}

// layer is an offscreen target opened by PushLayer.
type layer struct {
	parent  *image.RGBA
	blend   BlendMode
	opacity float64
}

// NewContext creates a new drawing context with the given dimensions.
// Non-positive dimensions produce an empty 0x0 canvas that ignores drawing.
func NewContext(width, height int, opts ...ContextOption) *Context {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	width, height = max(width, 0), max(height, 0)

	img := options.image
	if img == nil {
		img = image.NewRGBA(image.Rect(0, 0, width, height))
	} else {
		width, height = img.Rect.Dx(), img.Rect.Dy()
	}

	return &Context{
		width:  width,
		height: height,
		img:    img,
		path:   NewPath(),
		state: drawState{
			matrix: Identity(),
			fill:   Solid(Black),
			stroke: Solid(Black),
			line:   DefaultStroke(),
			alpha:  1,
			interp: xdraw.BiLinear,
		},
		stack: make([]drawState, 0, 8),
	}
}

// Width returns the canvas width in pixels.
func (c *Context) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Context) Height() int { return c.height }

// Image returns the canvas. While a layer is open it returns the layer.
func (c *Context) Image() *image.RGBA { return c.img }

// Bounds returns the canvas rectangle.
func (c *Context) Bounds() image.Rectangle { return c.img.Rect }

// Clear fills the whole canvas with col, ignoring clip, alpha and blending.
func (c *Context) Clear(col RGBA) {
	xdraw.Draw(c.img, c.img.Rect, image.NewUniform(col.Premultiplied()), image.Point{}, xdraw.Src)
}

// Offscreen returns a transparent context of the same size sharing the
// current transform. Renderers use it to build effects such as shadows
// before compositing with DrawLayer.
func (c *Context) Offscreen() *Context {
	off := NewContext(c.width, c.height)
	off.state.matrix = c.state.matrix
	off.state.interp = c.state.interp
	return off
}

// SetColor sets a solid fill and stroke color.
func (c *Context) SetColor(col RGBA) {
	c.state.fill = Solid(col)
	c.state.stroke = Solid(col)
}

// SetFillColor sets a solid fill color.
func (c *Context) SetFillColor(col RGBA) { c.state.fill = Solid(col) }

// SetStrokeColor sets a solid stroke color.
func (c *Context) SetStrokeColor(col RGBA) { c.state.stroke = Solid(col) }

// SetFillBrush sets the brush used by Fill. Brush coordinates are in the
// user space current at fill time.
func (c *Context) SetFillBrush(b Brush) {
	if b != nil {
		c.state.fill = b
	}
}

// SetStrokeBrush sets the brush used by Stroke.
func (c *Context) SetStrokeBrush(b Brush) {
	if b != nil {
		c.state.stroke = b
	}
}

// SetLineWidth sets the stroke width in user units.
func (c *Context) SetLineWidth(width float64) { c.state.line.Width = width }

// SetStroke replaces the whole stroke style.
func (c *Context) SetStroke(st Stroke) { c.state.line = st }

// SetAlpha sets the global alpha applied to every subsequent operation.
func (c *Context) SetAlpha(a float64) { c.state.alpha = clamp01(a) }

// Alpha returns the global alpha.
func (c *Context) Alpha() float64 { return c.state.alpha }

// SetBlendMode sets the blend mode for subsequent fills, strokes and images.
func (c *Context) SetBlendMode(mode BlendMode) { c.state.blend = mode }

// SetInterpolator sets the resampling kernel used by DrawImage.
func (c *Context) SetInterpolator(q xdraw.Interpolator) {
	if q != nil {
		c.state.interp = q
	}
}

// Push saves the current state (transform, paint, clip).
func (c *Context) Push() {
	c.stack = append(c.stack, c.state)
}

// Pop restores the last saved state.
func (c *Context) Pop() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// Identity resets the transformation matrix to identity.
func (c *Context) Identity() { c.state.matrix = Identity() }

// Translate applies a translation to the transformation matrix.
func (c *Context) Translate(x, y float64) {
	c.state.matrix = c.state.matrix.Multiply(Translate(x, y))
}

// Scale applies a scaling to the transformation matrix.
func (c *Context) Scale(x, y float64) {
	c.state.matrix = c.state.matrix.Multiply(Scale(x, y))
}

// Rotate applies a rotation (radians) to the transformation matrix.
func (c *Context) Rotate(angle float64) {
	c.state.matrix = c.state.matrix.Multiply(Rotate(angle))
}

// RotateAbout rotates around the point (x, y).
func (c *Context) RotateAbout(angle, x, y float64) {
	c.state.matrix = c.state.matrix.Multiply(RotateAbout(angle, x, y))
}

// Transform multiplies the current matrix by m (m applies first).
func (c *Context) Transform(m Matrix) {
	c.state.matrix = c.state.matrix.Multiply(m)
}

// SetTransform replaces the current matrix.
func (c *Context) SetTransform(m Matrix) { c.state.matrix = m }

// Matrix returns the current transformation matrix.
func (c *Context) Matrix() Matrix { return c.state.matrix }

// MoveTo starts a new subpath at the given point.
func (c *Context) MoveTo(x, y float64) { c.path.MoveTo(x, y) }

// LineTo adds a line to the current path.
func (c *Context) LineTo(x, y float64) { c.path.LineTo(x, y) }

// QuadraticTo adds a quadratic Bezier curve to the current path.
func (c *Context) QuadraticTo(cx, cy, x, y float64) { c.path.QuadraticTo(cx, cy, x, y) }

// CubicTo adds a cubic Bezier curve to the current path.
func (c *Context) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.path.CubicTo(c1x, c1y, c2x, c2y, x, y)
}

// ClosePath closes the current subpath.
func (c *Context) ClosePath() { c.path.Close() }

// ClearPath discards the current path.
func (c *Context) ClearPath() { c.path = NewPath() }

// AppendPath adds p to the current path.
func (c *Context) AppendPath(p *Path) { c.path.Append(p) }

// DrawRectangle adds a rectangle to the current path.
func (c *Context) DrawRectangle(x, y, w, h float64) {
	c.path.Append(BuildPath().Rect(x, y, w, h).Build())
}

// DrawRoundedRectangle adds a rounded rectangle to the current path.
func (c *Context) DrawRoundedRectangle(x, y, w, h, r float64) {
	c.path.Append(BuildPath().RoundRect(x, y, w, h, r).Build())
}

// DrawCircle adds a circle to the current path.
func (c *Context) DrawCircle(x, y, r float64) {
	c.path.Append(BuildPath().Circle(x, y, r).Build())
}

// DrawEllipse adds an ellipse to the current path.
func (c *Context) DrawEllipse(x, y, rx, ry float64) {
	c.path.Append(BuildPath().Ellipse(x, y, rx, ry).Build())
}

// Fill fills the current path and clears it.
func (c *Context) Fill() {
	c.FillPreserve()
	c.ClearPath()
}

// FillPreserve fills the current path without clearing it.
func (c *Context) FillPreserve() {
	c.paint(Rasterize(c.path, c.state.matrix, c.img.Rect), c.state.fill)
}

// Stroke strokes the current path and clears it.
func (c *Context) Stroke() {
	c.StrokePreserve()
	c.ClearPath()
}

// StrokePreserve strokes the current path without clearing it.
func (c *Context) StrokePreserve() {
	c.paint(strokeCoverage(c.path, c.state.line, c.state.matrix, c.img.Rect), c.state.stroke)
}

// FillAlpha paints the fill brush through a device-space coverage image,
// honoring clip, alpha and blend mode. Text rendering uses it for glyph masks.
func (c *Context) FillAlpha(a *image.Alpha) {
	c.paint(a, c.state.fill)
}

// Clip intersects the clip region with the current path and clears it.
func (c *Context) Clip() {
	c.ClipPreserve()
	c.ClearPath()
}

// ClipPreserve intersects the clip region with the current path.
func (c *Context) ClipPreserve() {
	m := NewMask(c.width, c.height)
	if a := Rasterize(c.path, c.state.matrix, c.img.Rect); a != nil {
		r := a.Rect
		for y := r.Min.Y; y < r.Max.Y; y++ {
			copy(m.data[y*m.width+r.Min.X:y*m.width+r.Max.X], a.Pix[(y-r.Min.Y)*a.Stride:])
		}
	}
	c.ClipMask(m)
}

// ClipRect intersects the clip region with a user-space rectangle.
func (c *Context) ClipRect(x, y, w, h float64) {
	saved := c.path
	c.path = BuildPath().Rect(x, y, w, h).Build()
	c.ClipPreserve()
	c.path = saved
}

// ClipMask intersects the clip region with a device-space mask. The mask is
// copied; pixels outside it are clipped away.
func (c *Context) ClipMask(m *Mask) {
	next := NewMask(c.width, c.height)
	next.Fill(255)
	if c.state.clip != nil {
		copy(next.data, c.state.clip.data)
	}
	next.Intersect(m)
	c.state.clip = next
}

// ResetClip removes all clipping.
func (c *Context) ResetClip() { c.state.clip = nil }

// DrawImage draws img mapped into user space by m. m maps image pixel
// coordinates (img.Bounds()) to user units; the current transform applies
// on top.
func (c *Context) DrawImage(img image.Image, m Matrix) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	full := c.state.matrix.Multiply(m)
	sb := img.Bounds()
	area := Rect{X: float64(sb.Min.X), Y: float64(sb.Min.Y), Width: float64(sb.Dx()), Height: float64(sb.Dy())}
	r := area.Transform(full).Pixels().Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	if c.state.blend == BlendNormal && c.state.alpha == 1 && c.state.clip == nil {
		c.state.interp.Transform(c.img, full.Aff3(), img, sb, xdraw.Over, nil)
		return
	}
	scratch := image.NewRGBA(r)
	c.state.interp.Transform(scratch, full.Aff3(), img, sb, xdraw.Src, nil)
	c.composite(scratch, c.state.alpha, c.state.blend, true)
}

// DrawLayer composites a device-space image (usually an Offscreen canvas)
// onto the canvas with the given opacity and blend mode, honoring the
// current clip and global alpha.
func (c *Context) DrawLayer(img *image.RGBA, opacity float64, mode BlendMode) {
	if img == nil {
		return
	}
	c.composite(img, clamp01(opacity)*c.state.alpha, mode, true)
}

// PushLayer redirects drawing into a transparent layer until PopLayer,
// which composites it with the given blend mode and opacity.
//
// Example:
//
//	dc.PushLayer(pairkit.BlendMultiply, 0.5)
//	dc.DrawCircle(100, 100, 50)
//	dc.Fill()
//	dc.PopLayer()
func (c *Context) PushLayer(mode BlendMode, opacity float64) {
	c.layers = append(c.layers, &layer{parent: c.img, blend: mode, opacity: clamp01(opacity)})
	c.img = image.NewRGBA(c.img.Rect)
}

// PopLayer composites the innermost layer onto its parent.
// If there are no layers to pop, this function does nothing.
func (c *Context) PopLayer() {
	if len(c.layers) == 0 {
		return
	}
	l := c.layers[len(c.layers)-1]
	c.layers = c.layers[:len(c.layers)-1]
	src := c.img
	c.img = l.parent
	// Clip already applied while painting into the layer.
	c.composite(src, l.opacity, l.blend, false)
}

// paint blends brush through coverage a.
func (c *Context) paint(a *image.Alpha, brush Brush) {
	if a == nil || c.state.alpha <= 0 {
		return
	}
	inv, invOK := c.state.matrix.Invert()
	solid, isSolid := brush.(SolidBrush)
	if !isSolid && !invOK {
		return
	}
	r := a.Rect.Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := a.Pix[(y-a.Rect.Min.Y)*a.Stride:]
		for x := r.Min.X; x < r.Max.X; x++ {
			cov := row[x-a.Rect.Min.X]
			if cov == 0 {
				continue
			}
			k := float64(cov) / 255 * c.state.alpha
			if c.state.clip != nil {
				k *= float64(c.state.clip.Value(x, y)) / 255
				if k == 0 {
					continue
				}
			}
			var col RGBA
			if isSolid {
				col = solid.Color
			} else {
				p := inv.TransformPoint(Pt(float64(x)+0.5, float64(y)+0.5))
				col = brush.ColorAt(p.X, p.Y)
			}
			sa := clamp01(col.A) * k
			blendPixel(c.img, x, y, clamp01(col.R)*sa, clamp01(col.G)*sa, clamp01(col.B)*sa, sa, c.state.blend)
		}
	}
}

// composite blends a premultiplied device-space image onto the canvas.
func (c *Context) composite(src *image.RGBA, opacity float64, mode BlendMode, useClip bool) {
	if opacity <= 0 {
		return
	}
	r := src.Rect.Intersect(c.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := src.PixOffset(x, y)
			s := src.Pix[i : i+4 : i+4]
			if s[3] == 0 {
				continue
			}
			k := opacity / 255
			if useClip && c.state.clip != nil {
				v := c.state.clip.Value(x, y)
				if v == 0 {
					continue
				}
				k *= float64(v) / 255
			}
			blendPixel(c.img, x, y, float64(s[0])*k, float64(s[1])*k, float64(s[2])*k, float64(s[3])*k, mode)
		}
	}
}

// blendPixel composites a premultiplied float source onto dst at (x, y).
func blendPixel(dst *image.RGBA, x, y int, sr, sg, sb, sa float64, mode BlendMode) {
	if sa <= 0 {
		return
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	dr, dg, db, da := float64(p[0])/255, float64(p[1])/255, float64(p[2])/255, float64(p[3])/255
	r, g, b, a := mode.composite(sr, sg, sb, sa, dr, dg, db, da)
	p[3] = uint8(clamp255(a*255 + 0.5))
	p[0] = min(uint8(clamp255(r*255+0.5)), p[3])
	p[1] = min(uint8(clamp255(g*255+0.5)), p[3])
	p[2] = min(uint8(clamp255(b*255+0.5)), p[3])
}

// PixelAt returns the straight color of the canvas pixel at (x, y).
func (c *Context) PixelAt(x, y int) RGBA {
	if !(image.Point{X: x, Y: y}).In(c.img.Rect) {
		return Transparent
	}
	return FromColor(c.img.RGBAAt(x, y))
}

// ScaleFactor returns the mean linear scale of the current transform.
func (c *Context) ScaleFactor() float64 {
	m := c.state.matrix
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}
