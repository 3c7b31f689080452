package pairkit

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// DefaultFlatness is the maximum device-space deviation, in pixels, of
// flattened curves.
const DefaultFlatness = 0.2

// Rasterize returns the anti-aliased coverage of the filled path p after
// transformation by m, clipped to clip. The returned image's Rect is the
// covered area; nil means nothing is covered.
func Rasterize(p *Path, m Matrix, clip image.Rectangle) *image.Alpha {
	if p.Empty() {
		return nil
	}
	return coverage(p.Transform(m).Flatten(DefaultFlatness), clip)
}

// coverage rasterizes closed device-space contours with
// golang.org/x/image/vector. Overlapping contours of equal winding saturate,
// opposite windings cancel.
func coverage(contours []Polyline, clip image.Rectangle) *image.Alpha {
	bounds, ok := polylineBounds(contours)
	if !ok {
		return nil
	}
	r := bounds.Pixels().Intersect(clip)
	if r.Empty() {
		return nil
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Src
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for _, c := range contours {
		if len(c.Points) < 3 {
			continue
		}
		p0 := c.Points[0]
		z.MoveTo(float32(p0.X-ox), float32(p0.Y-oy))
		for _, p := range c.Points[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
	}
	a := image.NewAlpha(r)
	z.Draw(a, r, image.Opaque, image.Point{})
	return a
}

// polylineBounds returns the bounds of all finite points. ok is false when
// no contour has area or any coordinate is not finite.
func polylineBounds(contours []Polyline) (Rect, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	n := 0
	for _, c := range contours {
		if len(c.Points) < 3 {
			continue
		}
		for _, p := range c.Points {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				return Rect{}, false
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		n++
	}
	if n == 0 {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// strokeCoverage returns the coverage of p stroked with st under m. The
// outline is built in user space so the width scales with the transform.
func strokeCoverage(p *Path, st Stroke, m Matrix, clip image.Rectangle) *image.Alpha {
	if p.Empty() {
		return nil
	}
	scale := math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
	if !(scale > 0) {
		return nil
	}
	tol := DefaultFlatness / scale
	polys := st.outline(p.Flatten(tol), tol)
	for i := range polys {
		for j, pt := range polys[i].Points {
			polys[i].Points[j] = m.TransformPoint(pt)
		}
	}
	return coverage(polys, clip)
}
