package pairkit

import "math"

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// QuadTo draws a quadratic Bezier curve.
type QuadTo struct {
	Control Point
	Point   Point
}

func (QuadTo) isPathElement() {}

// CubicTo draws a cubic Bezier curve.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// Close closes the current subpath.
type Close struct{}

func (Close) isPathElement() {}

// Path represents a vector path.
type Path struct {
	elements []PathElement
	start    Point // Starting point of current subpath
	current  Point // Current point
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
	}
}

// MoveTo moves to a point without drawing.
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
}

// LineTo draws a line to a point. Without a current point it acts as MoveTo.
func (p *Path) LineTo(x, y float64) {
	if len(p.elements) == 0 {
		p.MoveTo(x, y)
		return
	}
	pt := Pt(x, y)
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// QuadraticTo draws a quadratic Bezier curve.
func (p *Path) QuadraticTo(cx, cy, x, y float64) {
	if len(p.elements) == 0 {
		p.MoveTo(cx, cy)
	}
	pt := Pt(x, y)
	p.elements = append(p.elements, QuadTo{Control: Pt(cx, cy), Point: pt})
	p.current = pt
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if len(p.elements) == 0 {
		p.MoveTo(c1x, c1y)
	}
	pt := Pt(x, y)
	p.elements = append(p.elements, CubicTo{
		Control1: Pt(c1x, c1y),
		Control2: Pt(c2x, c2y),
		Point:    pt,
	})
	p.current = pt
}

// Close closes the current subpath by drawing a line to the start point.
func (p *Path) Close() {
	if len(p.elements) == 0 {
		return
	}
	p.elements = append(p.elements, Close{})
	p.current = p.start
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// Empty reports whether the path has no elements.
func (p *Path) Empty() bool {
	return p == nil || len(p.elements) == 0
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point {
	return p.current
}

// Transform returns a copy of the path with m applied to every point.
func (p *Path) Transform(m Matrix) *Path {
	result := NewPath()
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := m.TransformPoint(e.Point)
			result.MoveTo(pt.X, pt.Y)
		case LineTo:
			pt := m.TransformPoint(e.Point)
			result.LineTo(pt.X, pt.Y)
		case QuadTo:
			ctrl := m.TransformPoint(e.Control)
			pt := m.TransformPoint(e.Point)
			result.QuadraticTo(ctrl.X, ctrl.Y, pt.X, pt.Y)
		case CubicTo:
			ctrl1 := m.TransformPoint(e.Control1)
			ctrl2 := m.TransformPoint(e.Control2)
			pt := m.TransformPoint(e.Point)
			result.CubicTo(ctrl1.X, ctrl1.Y, ctrl2.X, ctrl2.Y, pt.X, pt.Y)
		case Close:
			result.Close()
		}
	}
	return result
}

// Append adds all elements of other to p.
func (p *Path) Append(other *Path) {
	if other.Empty() {
		return
	}
	p.elements = append(p.elements, other.elements...)
	p.start = other.start
	p.current = other.current
}

// Bounds returns the bounding box of the path's control polygon, which
// contains the curve itself.
func (p *Path) Bounds() Rect {
	if p.Empty() {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	add := func(pt Point) {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			add(e.Point)
		case LineTo:
			add(e.Point)
		case QuadTo:
			add(e.Control)
			add(e.Point)
		case CubicTo:
			add(e.Control1)
			add(e.Control2)
			add(e.Point)
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Polyline is a flattened subpath.
type Polyline struct {
	Points []Point
	Closed bool
}

// Flatten approximates curves with line segments whose deviation from the
// curve stays under tolerance (in path units).
func (p *Path) Flatten(tolerance float64) []Polyline {
	if tolerance <= 0 {
		tolerance = 0.25
	}
	var out []Polyline
	var cur *Polyline
	var last Point
	flush := func() {
		if cur != nil && len(cur.Points) > 1 {
			out = append(out, *cur)
		}
		cur = nil
	}
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			flush()
			cur = &Polyline{Points: []Point{e.Point}}
			last = e.Point
		case LineTo:
			if cur == nil {
				cur = &Polyline{Points: []Point{last}}
			}
			cur.Points = append(cur.Points, e.Point)
			last = e.Point
		case QuadTo:
			if cur == nil {
				cur = &Polyline{Points: []Point{last}}
			}
			n := segmentsFor(last.Sub(e.Control).Length()+e.Control.Sub(e.Point).Length(), tolerance)
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				cur.Points = append(cur.Points, Point{
					X: mt*mt*last.X + 2*mt*t*e.Control.X + t*t*e.Point.X,
					Y: mt*mt*last.Y + 2*mt*t*e.Control.Y + t*t*e.Point.Y,
				})
			}
			last = e.Point
		case CubicTo:
			if cur == nil {
				cur = &Polyline{Points: []Point{last}}
			}
			hull := last.Sub(e.Control1).Length() + e.Control1.Sub(e.Control2).Length() + e.Control2.Sub(e.Point).Length()
			n := segmentsFor(hull, tolerance)
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
				cur.Points = append(cur.Points, Point{
					X: a*last.X + b*e.Control1.X + c*e.Control2.X + d*e.Point.X,
					Y: a*last.Y + b*e.Control1.Y + c*e.Control2.Y + d*e.Point.Y,
				})
			}
			last = e.Point
		case Close:
			if cur != nil {
				cur.Closed = true
				last = cur.Points[0]
			}
			flush()
		}
	}
	flush()
	return out
}

func segmentsFor(length, tolerance float64) int {
	n := int(math.Ceil(math.Sqrt(length / tolerance)))
	if n < 1 {
		return 1
	}
	if n > 256 {
		return 256
	}
	return n
}

// arcTo appends a circular arc from angle a1 to a2 (radians) as cubic
// Beziers, at most 90 degrees per segment. The arc starts with a LineTo
// (or MoveTo on an empty path) to its first point.
func (p *Path) arcTo(cx, cy, rx, ry, a1, a2 float64) {
	sweep := a2 - a1
	if sweep == 0 {
		return
	}
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)

	p.LineTo(cx+rx*math.Cos(a1), cy+ry*math.Sin(a1))
	for i := 0; i < n; i++ {
		s := a1 + float64(i)*step
		e := s + step
		cs, ss := math.Cos(s), math.Sin(s)
		ce, se := math.Cos(e), math.Sin(e)
		p.CubicTo(
			cx+rx*(cs-k*ss), cy+ry*(ss+k*cs),
			cx+rx*(ce+k*se), cy+ry*(se-k*ce),
			cx+rx*ce, cy+ry*se,
		)
	}
}
