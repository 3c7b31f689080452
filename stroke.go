package pairkit

import "math"

// LineCap specifies the shape of open path endpoints.
type LineCap int

const (
	// LineCapButt ends the stroke flush with the endpoint.
	LineCapButt LineCap = iota
	// LineCapRound adds a half circle at each endpoint.
	LineCapRound
	// LineCapSquare extends the stroke by half its width.
	LineCapSquare
)

// LineJoin specifies the shape of stroke corners.
type LineJoin int

const (
	// LineJoinMiter extends the outer edges until they meet.
	LineJoinMiter LineJoin = iota
	// LineJoinRound rounds the corner with the stroke radius.
	LineJoinRound
	// LineJoinBevel cuts the corner off.
	LineJoinBevel
)

// Stroke defines the style for stroking paths.
type Stroke struct {
	// Width is the line width in user units. Default: 1.0
	Width float64

	// Cap is the shape of line endpoints. Default: LineCapButt
	Cap LineCap

	// Join is the shape of line joins. Default: LineJoinMiter
	Join LineJoin

	// MiterLimit is the limit for miter joins before they become bevels.
	// Default: 4.0 (matches SVG)
	MiterLimit float64
}

// DefaultStroke returns a solid 1-unit stroke with butt caps and miter joins.
func DefaultStroke() Stroke {
	return Stroke{
		Width:      1.0,
		Cap:        LineCapButt,
		Join:       LineJoinMiter,
		MiterLimit: 4.0,
	}
}

// WithWidth returns a copy of the Stroke with the given width.
func (s Stroke) WithWidth(w float64) Stroke {
	s.Width = w
	return s
}

// WithCap returns a copy of the Stroke with the given line cap style.
func (s Stroke) WithCap(lineCap LineCap) Stroke {
	s.Cap = lineCap
	return s
}

// WithJoin returns a copy of the Stroke with the given line join style.
func (s Stroke) WithJoin(join LineJoin) Stroke {
	s.Join = join
	return s
}

// outline converts flattened polylines into closed polygons whose union is
// the stroked area. Every polygon is wound the same way so the nonzero
// coverage of overlapping pieces never cancels out. tolerance bounds the
// flattening error of round caps and joins.
func (s Stroke) outline(lines []Polyline, tolerance float64) []Polyline {
	hw := s.Width / 2
	if !(hw > 0) || math.IsInf(hw, 0) {
		return nil
	}
	var out []Polyline
	add := func(pts ...Point) {
		out = append(out, oriented(pts))
	}
	for _, line := range lines {
		pts := dedupe(line.Points)
		closed := line.Closed && len(pts) > 2
		if len(pts) == 1 {
			switch s.Cap {
			case LineCapRound:
				add(circlePoints(pts[0], hw, tolerance)...)
			case LineCapSquare:
				p := pts[0]
				add(Pt(p.X-hw, p.Y-hw), Pt(p.X+hw, p.Y-hw), Pt(p.X+hw, p.Y+hw), Pt(p.X-hw, p.Y+hw))
			}
			continue
		}

		n := len(pts)
		segs := n - 1
		if closed {
			segs = n
		}
		for i := 0; i < segs; i++ {
			a, b := pts[i], pts[(i+1)%n]
			nv := normal(a, b).Mul(hw)
			add(a.Sub(nv), b.Sub(nv), b.Add(nv), a.Add(nv))
		}

		first, last := 1, n-1
		if closed {
			first, last = 0, n
		}
		for i := first; i < last; i++ {
			prev := pts[(i-1+n)%n]
			cur := pts[i]
			next := pts[(i+1)%n]
			out = append(out, s.join(prev, cur, next, hw, tolerance)...)
		}

		if !closed {
			out = append(out, s.capAt(pts[0], pts[1], hw, tolerance)...)
			out = append(out, s.capAt(pts[n-1], pts[n-2], hw, tolerance)...)
		}
	}
	return out
}

// join returns the polygons filling the outer wedge at vertex cur.
func (s Stroke) join(prev, cur, next Point, hw, tolerance float64) []Polyline {
	d0 := direction(prev, cur)
	d1 := direction(cur, next)
	cross := d0.X*d1.Y - d0.Y*d1.X
	if math.Abs(cross) < 1e-9 && d0.X*d1.X+d0.Y*d1.Y > 0 {
		return nil // collinear, no gap
	}
	if s.Join == LineJoinRound {
		return []Polyline{oriented(circlePoints(cur, hw, tolerance))}
	}
	side := 1.0
	if cross > 0 {
		side = -1
	}
	n0 := Pt(-d0.Y, d0.X).Mul(side)
	n1 := Pt(-d1.Y, d1.X).Mul(side)
	a := cur.Add(n0.Mul(hw))
	b := cur.Add(n1.Mul(hw))
	if s.Join == LineJoinMiter {
		dot := n0.X*n1.X + n0.Y*n1.Y
		limit := s.MiterLimit
		if limit < 1 {
			limit = 4
		}
		// Ratio of miter length to stroke half-width is 2/|n0+n1|.
		if sum := n0.Add(n1).Length(); sum > 1e-9 && 2/sum <= limit {
			tip := cur.Add(n0.Add(n1).Mul(hw / (1 + dot)))
			return []Polyline{oriented([]Point{cur, a, tip, b})}
		}
	}
	return []Polyline{oriented([]Point{cur, a, b})}
}

// capAt returns the cap polygon at end p of the segment coming from q.
func (s Stroke) capAt(p, q Point, hw, tolerance float64) []Polyline {
	switch s.Cap {
	case LineCapRound:
		return []Polyline{oriented(circlePoints(p, hw, tolerance))}
	case LineCapSquare:
		d := direction(q, p).Mul(hw)
		nv := Pt(-d.Y, d.X)
		return []Polyline{oriented([]Point{p.Sub(nv), p.Add(d).Sub(nv), p.Add(d).Add(nv), p.Add(nv)})}
	}
	return nil
}

func direction(a, b Point) Point {
	d := b.Sub(a)
	l := d.Length()
	if l == 0 {
		return Point{}
	}
	return d.Mul(1 / l)
}

func normal(a, b Point) Point {
	d := direction(a, b)
	return Pt(-d.Y, d.X)
}

func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func circlePoints(c Point, r, tolerance float64) []Point {
	n := segmentsFor(2*math.Pi*r, tolerance)
	n = max(n, 8)
	pts := make([]Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a))
	}
	return pts
}

// signedArea returns twice the signed area of the polygon.
func signedArea(pts []Point) float64 {
	var sum float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum
}

// oriented returns pts as a closed polyline with non-negative signed area.
func oriented(pts []Point) Polyline {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return Polyline{Points: pts, Closed: true}
}
