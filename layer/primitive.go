package layer

import (
	"image"
	"math"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/filter"
	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/template"
)

// Primitive is a paintable result of one layer. Bounds is in canvas units.
type Primitive interface {
	Paint(dc *pairkit.Context)
	Bounds() pairkit.Rect
	LayerID() string
}

// Shadow is a resolved drop shadow. Offsets and blur are canvas units; a
// glow is a shadow without offset.
type Shadow struct {
	OffsetX, OffsetY float64
	Blur             float64
	Color            pairkit.RGBA
}

func resolveShadow(s *template.Shadow, palette map[string]string) *Shadow {
	if s == nil {
		return nil
	}
	col := resolve.Color(s.Color, palette, resolve.RoleStroke)
	col.A *= template.Opacity(s.Opacity, 1)
	if col.A <= 0 {
		return nil
	}
	return &Shadow{OffsetX: s.OffsetX, OffsetY: s.OffsetY, Blur: s.Blur, Color: col}
}

// paintEffects runs draw under a shadow, an opacity and a blend mode.
// Without effects draw paints straight into dc.
func paintEffects(dc *pairkit.Context, sh *Shadow, opacity float64, mode pairkit.BlendMode, draw func(*pairkit.Context)) {
	if !(opacity > 0) {
		return
	}
	if sh == nil {
		if opacity >= 1 && mode == pairkit.BlendNormal {
			draw(dc)
			return
		}
		dc.PushLayer(mode, opacity)
		draw(dc)
		dc.PopLayer()
		return
	}

	off := dc.Offscreen()
	draw(off)
	content := off.Image()
	r := coveredBounds(content)
	if r.Empty() {
		return
	}
	s := dc.ScaleFactor()
	sil, at := filter.Shadow(content.SubImage(r), sh.Blur*s, sh.Color)
	shift := image.Pt(int(math.Round(sh.OffsetX*s)), int(math.Round(sh.OffsetY*s)))
	sil.Rect = sil.Rect.Add(r.Min.Add(at).Add(shift))

	dc.PushLayer(mode, opacity)
	dc.DrawLayer(sil, 1, pairkit.BlendNormal)
	dc.DrawLayer(content, 1, pairkit.BlendNormal)
	dc.PopLayer()
}

// coveredBounds returns the smallest rectangle holding every pixel of img
// with non-zero alpha.
func coveredBounds(img *image.RGBA) image.Rectangle {
	b := img.Rect
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x+1)
			minY, maxY = min(minY, y), max(maxY, y+1)
		}
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// Group paints several primitives as one layer.
type Group struct {
	ID    string
	Items []Primitive
}

func (g *Group) Paint(dc *pairkit.Context) {
	for _, p := range g.Items {
		p.Paint(dc)
	}
}

func (g *Group) Bounds() pairkit.Rect {
	var r pairkit.Rect
	for _, p := range g.Items {
		r = r.Union(p.Bounds())
	}
	return r
}

func (g *Group) LayerID() string { return g.ID }

// Vector is a filled and/or stroked path.
type Vector struct {
	ID string

	// Matrix maps Path coordinates to canvas units.
	Matrix pairkit.Matrix
	Path   *pairkit.Path

	// Fill is nil for unfilled paths; Stroke is nil for unstroked ones.
	Fill        pairkit.Brush
	Stroke      *pairkit.Stroke
	StrokeBrush pairkit.Brush

	Opacity float64
	Blend   pairkit.BlendMode
	Shadow  *Shadow
}

func (v *Vector) Paint(dc *pairkit.Context) {
	dc.Push()
	defer dc.Pop()
	dc.Transform(v.Matrix)
	paintEffects(dc, v.Shadow, v.Opacity, v.Blend, func(dc *pairkit.Context) {
		if v.Fill != nil {
			dc.SetFillBrush(v.Fill)
			dc.AppendPath(v.Path)
			dc.Fill()
		}
		if v.Stroke != nil && v.StrokeBrush != nil {
			dc.SetStroke(*v.Stroke)
			dc.SetStrokeBrush(v.StrokeBrush)
			dc.AppendPath(v.Path)
			dc.Stroke()
		}
	})
}

func (v *Vector) Bounds() pairkit.Rect {
	r := v.Path.Bounds()
	if v.Stroke != nil {
		r = inflate(r, v.Stroke.Width/2)
	}
	return r.Transform(v.Matrix)
}

func (v *Vector) LayerID() string { return v.ID }

// Picture is an image placed in a box.
type Picture struct {
	ID    string
	Image image.Image

	// Frame maps box-local units to canvas units; Place maps image pixels
	// to box-local units.
	Frame pairkit.Matrix
	Place pairkit.Matrix

	// Clip restricts painting to a box-local rectangle when non-empty.
	// Repeat tiles the image over Clip.
	Clip   pairkit.Rect
	Repeat bool

	Opacity float64
	Blend   pairkit.BlendMode
}

func (p *Picture) Paint(dc *pairkit.Context) {
	dc.Push()
	defer dc.Pop()
	dc.Transform(p.Frame)
	if !p.Clip.Empty() {
		dc.ClipRect(p.Clip.X, p.Clip.Y, p.Clip.Width, p.Clip.Height)
	}
	paintEffects(dc, nil, p.Opacity, p.Blend, func(dc *pairkit.Context) {
		if p.Repeat {
			dc.SetFillBrush(pairkit.NewImageBrush(p.Image, p.Place, true))
			dc.DrawRectangle(p.Clip.X, p.Clip.Y, p.Clip.Width, p.Clip.Height)
			dc.Fill()
			return
		}
		dc.DrawImage(p.Image, p.Place)
	})
}

func (p *Picture) Bounds() pairkit.Rect {
	if !p.Clip.Empty() {
		return p.Clip.Transform(p.Frame)
	}
	return imageRect(p.Image).Transform(p.Frame.Multiply(p.Place))
}

func (p *Picture) LayerID() string { return p.ID }

func imageRect(img image.Image) pairkit.Rect {
	b := img.Bounds()
	return pairkit.Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func inflate(r pairkit.Rect, d float64) pairkit.Rect {
	if !(d > 0) {
		return r
	}
	return pairkit.Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// fitted returns the matrix placing img into a w x h box per fit.
func fitted(img image.Image, w, h float64, fit resolve.Fit) (pairkit.Matrix, bool) {
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	r := resolve.ImageFit(iw, ih, w, h, fit)
	if r.Empty() {
		return pairkit.Matrix{}, false
	}
	return pairkit.Translate(r.X, r.Y).
		Multiply(pairkit.Scale(r.Width/iw, r.Height/ih)).
		Multiply(pairkit.Translate(-float64(b.Min.X), -float64(b.Min.Y))), true
}

func blendMode(s string) pairkit.BlendMode {
	if s == "" {
		return pairkit.BlendNormal
	}
	m, ok := pairkit.ParseBlendMode(s)
	if !ok {
		pairkit.Logger().Warn("layer: unknown blend mode", "mode", s)
	}
	return m
}
