package pairkit

import "math"

// PathBuilder provides a fluent interface for path construction.
//
// Example:
//
//	path := pairkit.BuildPath().
//	    MoveTo(0, 0).
//	    LineTo(100, 0).
//	    Close().
//	    Build()
type PathBuilder struct {
	path *Path
}

// BuildPath starts a new path builder.
func BuildPath() *PathBuilder {
	return &PathBuilder{path: NewPath()}
}

// MoveTo moves to a point without drawing.
func (b *PathBuilder) MoveTo(x, y float64) *PathBuilder {
	b.path.MoveTo(x, y)
	return b
}

// LineTo draws a line to a point.
func (b *PathBuilder) LineTo(x, y float64) *PathBuilder {
	b.path.LineTo(x, y)
	return b
}

// Close closes the current subpath.
func (b *PathBuilder) Close() *PathBuilder {
	b.path.Close()
	return b
}

// Rect adds a rectangle to the path.
func (b *PathBuilder) Rect(x, y, w, h float64) *PathBuilder {
	b.path.MoveTo(x, y)
	b.path.LineTo(x+w, y)
	b.path.LineTo(x+w, y+h)
	b.path.LineTo(x, y+h)
	b.path.Close()
	return b
}

// RoundRect adds a rounded rectangle to the path. A radius <= 0 yields a
// plain rectangle.
func (b *PathBuilder) RoundRect(x, y, w, h, r float64) *PathBuilder {
	r = min(r, min(w, h)/2)
	if !(r > 0) {
		return b.Rect(x, y, w, h)
	}
	k := 0.5522847498 * r // Control point distance for circle approximation

	b.path.MoveTo(x+r, y)
	b.path.LineTo(x+w-r, y)
	b.path.CubicTo(x+w-r+k, y, x+w, y+r-k, x+w, y+r)
	b.path.LineTo(x+w, y+h-r)
	b.path.CubicTo(x+w, y+h-r+k, x+w-r+k, y+h, x+w-r, y+h)
	b.path.LineTo(x+r, y+h)
	b.path.CubicTo(x+r-k, y+h, x, y+h-r+k, x, y+h-r)
	b.path.LineTo(x, y+r)
	b.path.CubicTo(x, y+r-k, x+r-k, y, x+r, y)
	b.path.Close()
	return b
}

// Circle adds a circle to the path.
func (b *PathBuilder) Circle(cx, cy, r float64) *PathBuilder {
	return b.Ellipse(cx, cy, r, r)
}

// Ellipse adds an ellipse to the path.
func (b *PathBuilder) Ellipse(cx, cy, rx, ry float64) *PathBuilder {
	kx := 0.5522847498 * rx
	ky := 0.5522847498 * ry

	b.path.MoveTo(cx+rx, cy)
	b.path.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	b.path.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	b.path.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	b.path.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	b.path.Close()
	return b
}

// RegularPolygon adds a regular polygon inscribed in an ellipse, first
// vertex at the top.
func (b *PathBuilder) RegularPolygon(cx, cy, rx, ry float64, sides int) *PathBuilder {
	if sides < 3 {
		return b
	}
	step := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		a := -math.Pi/2 + float64(i)*step
		b.path.LineToOrMove(i == 0, cx+rx*math.Cos(a), cy+ry*math.Sin(a))
	}
	b.path.Close()
	return b
}

// Star adds a star shape inscribed in an ellipse. inner is the inner radius
// as a fraction of the outer one.
func (b *PathBuilder) Star(cx, cy, rx, ry, inner float64, points int) *PathBuilder {
	if points < 3 {
		return b
	}
	step := math.Pi / float64(points)
	for i := 0; i < points*2; i++ {
		a := -math.Pi/2 + float64(i)*step
		f := 1.0
		if i%2 == 1 {
			f = inner
		}
		b.path.LineToOrMove(i == 0, cx+rx*f*math.Cos(a), cy+ry*f*math.Sin(a))
	}
	b.path.Close()
	return b
}

// Polyline adds a polygon through a flat list of x,y coordinates. Odd
// trailing values are ignored. Closed polygons need at least three points.
func (b *PathBuilder) Polyline(coords []float64, closed bool) *PathBuilder {
	n := len(coords) / 2
	if n < 2 || (closed && n < 3) {
		return b
	}
	for i := 0; i < n; i++ {
		b.path.LineToOrMove(i == 0, coords[2*i], coords[2*i+1])
	}
	if closed {
		b.path.Close()
	}
	return b
}

// AnnularSector adds a ring segment centred at (cx, cy) sweeping angle
// radians clockwise from start. An inner radius of 0 yields a pie slice.
func (b *PathBuilder) AnnularSector(cx, cy, inner, outer, start, angle float64) *PathBuilder {
	if !(outer > 0) || angle == 0 {
		return b
	}
	if math.Abs(angle) >= 2*math.Pi {
		b.Circle(cx, cy, outer)
		if inner > 0 {
			// Counter-wound inner circle punches the hole under nonzero fill.
			k := 0.5522847498 * inner
			b.path.MoveTo(cx+inner, cy)
			b.path.CubicTo(cx+inner, cy-k, cx+k, cy-inner, cx, cy-inner)
			b.path.CubicTo(cx-k, cy-inner, cx-inner, cy-k, cx-inner, cy)
			b.path.CubicTo(cx-inner, cy+k, cx-k, cy+inner, cx, cy+inner)
			b.path.CubicTo(cx+k, cy+inner, cx+inner, cy+k, cx+inner, cy)
			b.path.Close()
		}
		return b
	}
	b.path.MoveTo(cx+outer*math.Cos(start), cy+outer*math.Sin(start))
	b.path.arcTo(cx, cy, outer, outer, start, start+angle)
	if inner > 0 {
		b.path.arcTo(cx, cy, inner, inner, start+angle, start)
	} else {
		b.path.LineTo(cx, cy)
	}
	b.path.Close()
	return b
}

// Heart adds a heart inscribed in the box (x, y, w, h).
func (b *PathBuilder) Heart(x, y, w, h float64) *PathBuilder {
	b.path.MoveTo(x+w/2, y+h*0.3)
	b.path.CubicTo(x+w/2, y+h*0.27, x+w*0.45, y, x+w/4, y)
	b.path.CubicTo(x, y, x, y+h*0.35, x, y+h*0.35)
	b.path.CubicTo(x, y+h*0.55, x+w*0.2, y+h*0.77, x+w/2, y+h)
	b.path.CubicTo(x+w*0.8, y+h*0.77, x+w, y+h*0.55, x+w, y+h*0.35)
	b.path.CubicTo(x+w, y+h*0.35, x+w, y, x+w*0.75, y)
	b.path.CubicTo(x+w*0.6, y, x+w/2, y+h*0.27, x+w/2, y+h*0.3)
	b.path.Close()
	return b
}

// Append adds another path's elements.
func (b *PathBuilder) Append(p *Path) *PathBuilder {
	b.path.Append(p)
	return b
}

// Build returns the constructed path.
func (b *PathBuilder) Build() *Path {
	return b.path
}

// LineToOrMove issues MoveTo when first is true and LineTo otherwise.
func (p *Path) LineToOrMove(first bool, x, y float64) {
	if first {
		p.MoveTo(x, y)
		return
	}
	p.LineTo(x, y)
}
