package pairkit

import (
	"fmt"
	"math"
	"strconv"
)

// ParseSVGPath parses SVG path data (the "d" attribute) into a Path.
// All commands are supported: M L H V C S Q T A Z in absolute and relative
// forms. Parsing stops at the first malformed token; the returned error
// wraps ErrInvalidPathData and the path holds everything parsed before it.
func ParseSVGPath(d string) (*Path, error) {
	s := &svgScanner{src: d}
	p := NewPath()

	var cmd byte
	var cur, start, lastCtrl Point
	var prevCmd byte

	for {
		s.skipSeparators()
		if s.done() {
			break
		}
		if c := s.peek(); isCommand(c) {
			cmd = c
			s.pos++
		} else if cmd == 0 || cmd|0x20 == 'z' {
			return p, fmt.Errorf("%w: expected command at offset %d", ErrInvalidPathData, s.pos)
		}

		rel := cmd >= 'a'
		abs := func(x, y float64) Point {
			if rel {
				return Point{X: cur.X + x, Y: cur.Y + y}
			}
			return Point{X: x, Y: y}
		}

		switch cmd | 0x20 {
		case 'm':
			v, err := s.numbers(2)
			if err != nil {
				return p, err
			}
			cur = abs(v[0], v[1])
			start = cur
			p.MoveTo(cur.X, cur.Y)
			// Subsequent pairs are implicit LineTo commands.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'l':
			v, err := s.numbers(2)
			if err != nil {
				return p, err
			}
			cur = abs(v[0], v[1])
			p.LineTo(cur.X, cur.Y)
		case 'h':
			v, err := s.numbers(1)
			if err != nil {
				return p, err
			}
			if rel {
				cur.X += v[0]
			} else {
				cur.X = v[0]
			}
			p.LineTo(cur.X, cur.Y)
		case 'v':
			v, err := s.numbers(1)
			if err != nil {
				return p, err
			}
			if rel {
				cur.Y += v[0]
			} else {
				cur.Y = v[0]
			}
			p.LineTo(cur.X, cur.Y)
		case 'c':
			v, err := s.numbers(6)
			if err != nil {
				return p, err
			}
			c1, c2, end := abs(v[0], v[1]), abs(v[2], v[3]), abs(v[4], v[5])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, cur = c2, end
		case 's':
			v, err := s.numbers(4)
			if err != nil {
				return p, err
			}
			c1 := cur
			if pc := prevCmd | 0x20; pc == 'c' || pc == 's' {
				c1 = reflect(lastCtrl, cur)
			}
			c2, end := abs(v[0], v[1]), abs(v[2], v[3])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, cur = c2, end
		case 'q':
			v, err := s.numbers(4)
			if err != nil {
				return p, err
			}
			c, end := abs(v[0], v[1]), abs(v[2], v[3])
			p.QuadraticTo(c.X, c.Y, end.X, end.Y)
			lastCtrl, cur = c, end
		case 't':
			v, err := s.numbers(2)
			if err != nil {
				return p, err
			}
			c := cur
			if pc := prevCmd | 0x20; pc == 'q' || pc == 't' {
				c = reflect(lastCtrl, cur)
			}
			end := abs(v[0], v[1])
			p.QuadraticTo(c.X, c.Y, end.X, end.Y)
			lastCtrl, cur = c, end
		case 'a':
			v, err := s.arc()
			if err != nil {
				return p, err
			}
			end := abs(v[5], v[6])
			svgArc(p, cur, end, v[0], v[1], v[2], v[3] != 0, v[4] != 0)
			cur = end
		case 'z':
			p.Close()
			cur = start
		}
		prevCmd = cmd
	}
	return p, nil
}

func reflect(ctrl, about Point) Point {
	return Point{X: 2*about.X - ctrl.X, Y: 2*about.Y - ctrl.Y}
}

func isCommand(c byte) bool {
	switch c | 0x20 {
	case 'm', 'l', 'h', 'v', 'c', 's', 'q', 't', 'a', 'z':
		return true
	}
	return false
}

// svgArc converts an SVG endpoint-parameterized elliptical arc to cubic
// Beziers (SVG 1.1 implementation notes, F.6.5).
func svgArc(p *Path, from, to Point, rx, ry, phiDeg float64, large, sweep bool) {
	if from == to {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		p.LineTo(to.X, to.Y)
		return
	}
	phi := Radians(phiDeg)
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx2, dy2 := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	// Scale radii up when they cannot span the endpoints.
	if lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	coef := 0.0
	if den != 0 && num > 0 {
		coef = math.Sqrt(num / den)
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	cx := cosPhi*cxp - sinPhi*cyp + (from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (from.Y+to.Y)/2

	theta1 := math.Atan2((y1p-cyp)/ry, (x1p-cxp)/rx)
	theta2 := math.Atan2((-y1p-cyp)/ry, (-x1p-cxp)/rx)
	dTheta := theta2 - theta1
	if sweep && dTheta < 0 {
		dTheta += 2 * math.Pi
	} else if !sweep && dTheta > 0 {
		dTheta -= 2 * math.Pi
	}

	// Build the arc on an axis-aligned ellipse, then rotate into place.
	arc := NewPath()
	arc.arcTo(0, 0, rx, ry, theta1, theta1+dTheta)
	m := Translate(cx, cy).Multiply(Rotate(phi))
	for _, elem := range arc.Transform(m).Elements() {
		if c, ok := elem.(CubicTo); ok {
			p.CubicTo(c.Control1.X, c.Control1.Y, c.Control2.X, c.Control2.Y, c.Point.X, c.Point.Y)
		}
	}
}

// svgScanner tokenizes numbers and flags in SVG path data.
type svgScanner struct {
	src string
	pos int
}

func (s *svgScanner) done() bool { return s.pos >= len(s.src) }

func (s *svgScanner) peek() byte { return s.src[s.pos] }

func (s *svgScanner) skipSeparators() {
	for !s.done() {
		switch s.peek() {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

func (s *svgScanner) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := s.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// arc reads rx ry rotation large-arc-flag sweep-flag x y. Flags may be
// packed without separators ("a5 5 0 0110 10").
func (s *svgScanner) arc() ([]float64, error) {
	out := make([]float64, 7)
	for i := range out {
		if i == 3 || i == 4 {
			s.skipSeparators()
			if s.done() || (s.peek() != '0' && s.peek() != '1') {
				return nil, fmt.Errorf("%w: bad arc flag at offset %d", ErrInvalidPathData, s.pos)
			}
			out[i] = float64(s.peek() - '0')
			s.pos++
			continue
		}
		v, err := s.number()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *svgScanner) number() (float64, error) {
	s.skipSeparators()
	begin := s.pos
	if !s.done() && (s.peek() == '+' || s.peek() == '-') {
		s.pos++
	}
	digits, dot, exp := false, false, false
scan:
	for !s.done() {
		c := s.peek()
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' && !dot && !exp:
			dot = true
		case (c == 'e' || c == 'E') && digits && !exp:
			exp = true
			if s.pos+1 < len(s.src) && (s.src[s.pos+1] == '+' || s.src[s.pos+1] == '-') {
				s.pos++
			}
		default:
			break scan
		}
		s.pos++
	}
	if !digits {
		return 0, fmt.Errorf("%w: expected number at offset %d", ErrInvalidPathData, begin)
	}
	v, err := strconv.ParseFloat(s.src[begin:s.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPathData, err)
	}
	return v, nil
}
