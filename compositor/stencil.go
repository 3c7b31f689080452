package compositor

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/template"
)

// MaskPath returns the outline of a shape mask in slot-local coordinates
// (0..w, 0..h). Unknown shape kinds trace the plain slot rectangle.
func MaskPath(m template.Mask, w, h float64) *pairkit.Path {
	b := pairkit.BuildPath()
	cx, cy := w/2, h/2
	switch m.Shape {
	case template.ShapeCircle:
		b.Circle(cx, cy, math.Min(w, h)/2)
	case template.ShapeEllipse:
		b.Ellipse(cx, cy, w/2, h/2)
	case template.ShapeTriangle:
		b.Polyline([]float64{cx, 0, w, h, 0, h}, true)
	case template.ShapeStar:
		b.Star(cx, cy, w/2, h/2, 0.5, 5)
	case template.ShapeHexagon:
		b.RegularPolygon(cx, cy, w/2, h/2, 6)
	case template.ShapeHeart:
		b.Heart(0, 0, w, h)
	case template.ShapeDiamond:
		b.Polyline([]float64{cx, 0, w, cy, cx, h, 0, cy}, true)
	default:
		if r := m.CornerRadius; r > 0 && !math.IsInf(r, 1) {
			b.RoundRect(0, 0, w, h, r)
		} else {
			b.Rect(0, 0, w, h)
		}
	}
	return b.Build()
}

// Outline returns the path a border follows: the mask shape for shape
// masks, otherwise the slot rectangle.
func Outline(m template.Mask, w, h float64) *pairkit.Path {
	if m.Type == template.MaskShape {
		return MaskPath(m, w, h)
	}
	return pairkit.BuildPath().Rect(0, 0, w, h).Build()
}

// Stencil builds the coverage mask of a tile of width x height pixels
// representing a w x h slot. maskImg is the decoded alpha source of an
// image mask; when it is missing the stencil falls back to the full slot
// rectangle. opacity is folded into the result.
func Stencil(m template.Mask, maskImg image.Image, width, height int, w, h, opacity float64) *pairkit.Mask {
	st := pairkit.NewMask(width, height)
	if width <= 0 || height <= 0 {
		return st
	}
	switch m.Type {
	case template.MaskShape:
		sx, sy := float64(width)/w, float64(height)/h
		a := pairkit.Rasterize(MaskPath(m, w, h), pairkit.Scale(sx, sy), image.Rect(0, 0, width, height))
		if a != nil {
			for y := a.Rect.Min.Y; y < a.Rect.Max.Y; y++ {
				row := a.Pix[(y-a.Rect.Min.Y)*a.Stride:]
				for x := a.Rect.Min.X; x < a.Rect.Max.X; x++ {
					st.Set(x, y, row[x-a.Rect.Min.X])
				}
			}
		}
		if m.Invert {
			st.Invert()
		}
	case template.MaskImage:
		if maskImg == nil || maskImg.Bounds().Empty() {
			pairkit.Logger().Warn("compositor: mask image unavailable, clipping to slot bounds",
				"ref", m.ImageRef)
			st.Fill(255)
			break
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.BiLinear.Scale(scaled, scaled.Rect, maskImg, maskImg.Bounds(), xdraw.Src, nil)
		if m.Mode == template.MaskLuminance {
			st = pairkit.NewMaskFromLuminance(scaled)
		} else {
			st = pairkit.NewMaskFromAlpha(scaled)
		}
		if m.Invert {
			st.Invert()
		}
	default:
		st.Fill(255)
	}
	st.ScaleBy(opacity)
	return st
}
