package pairkit

import (
	"image"
	"math"
)

// Brush supplies the paint color for fills and strokes. Coordinates passed
// to ColorAt are in the user space that was current when the brush was used.
//
// Implementations: SolidBrush, *LinearGradientBrush, *RadialGradientBrush,
// *ImageBrush.
type Brush interface {
	ColorAt(x, y float64) RGBA
}

// SolidBrush is a single-color brush.
type SolidBrush struct {
	Color RGBA
}

// Solid creates a SolidBrush.
func Solid(c RGBA) SolidBrush {
	return SolidBrush{Color: c}
}

// ColorAt implements Brush.
func (b SolidBrush) ColorAt(_, _ float64) RGBA {
	return b.Color
}

// ImageBrush paints with an image placed by a matrix mapping image pixels
// to user space. With Repeat set the image tiles the plane.
type ImageBrush struct {
	Image  image.Image
	Matrix Matrix
	Repeat bool

	inv    Matrix
	invOK  bool
	bounds image.Rectangle
}

// NewImageBrush creates a brush drawing img through m.
func NewImageBrush(img image.Image, m Matrix, repeat bool) *ImageBrush {
	inv, ok := m.Invert()
	return &ImageBrush{Image: img, Matrix: m, Repeat: repeat, inv: inv, invOK: ok, bounds: img.Bounds()}
}

// ColorAt implements Brush with nearest-neighbour sampling.
func (b *ImageBrush) ColorAt(x, y float64) RGBA {
	if !b.invOK || b.bounds.Empty() {
		return Transparent
	}
	p := b.inv.TransformPoint(Pt(x, y))
	ix := int(math.Floor(p.X))
	iy := int(math.Floor(p.Y))
	w, h := b.bounds.Dx(), b.bounds.Dy()
	if b.Repeat {
		ix = ((ix % w) + w) % w
		iy = ((iy % h) + h) % h
	} else if ix < 0 || iy < 0 || ix >= w || iy >= h {
		return Transparent
	}
	return FromColor(b.Image.At(b.bounds.Min.X+ix, b.bounds.Min.Y+iy))
}
