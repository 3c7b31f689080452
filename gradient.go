package pairkit

import (
	"math"
	"sort"
)

// ExtendMode defines how gradients extend beyond their defined bounds.
type ExtendMode int

const (
	// ExtendPad extends edge colors beyond bounds (default behavior).
	ExtendPad ExtendMode = iota
	// ExtendRepeat repeats the gradient pattern.
	ExtendRepeat
	// ExtendReflect mirrors the gradient pattern.
	ExtendReflect
)

// ColorStop represents a color at a specific position in a gradient.
type ColorStop struct {
	Offset float64 // Position in gradient, 0.0 to 1.0
	Color  RGBA    // Color at this position
}

// sortStops returns a copy of stops sorted by offset. The sort is stable so
// coincident stops keep their declaration order (hard color edges).
func sortStops(stops []ColorStop) []ColorStop {
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// applyExtendMode applies the extend mode to normalize t to [0, 1].
func applyExtendMode(t float64, mode ExtendMode) float64 {
	switch mode {
	case ExtendRepeat:
		t -= math.Floor(t)
	case ExtendReflect:
		t = math.Abs(t)
		period := math.Floor(t)
		t -= period
		if int(period)%2 == 1 {
			t = 1 - t
		}
	default: // ExtendPad
		t = clamp01(t)
	}
	return t
}

// colorAtOffset returns the interpolated color at t for pre-sorted stops.
// Interpolation happens on straight sRGB components, matching CSS gradients.
func colorAtOffset(sorted []ColorStop, t float64, mode ExtendMode) RGBA {
	switch len(sorted) {
	case 0:
		return Transparent
	case 1:
		return sorted[0].Color
	}

	t = applyExtendMode(t, mode)

	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Offset >= t
	})
	if idx == 0 {
		return sorted[0].Color
	}
	if idx >= len(sorted) {
		return sorted[len(sorted)-1].Color
	}

	s1, s2 := sorted[idx-1], sorted[idx]
	if s2.Offset == s1.Offset {
		return s1.Color
	}
	return s1.Color.Lerp(s2.Color, (t-s1.Offset)/(s2.Offset-s1.Offset))
}

// LinearGradientBrush is a linear color transition between two points.
//
// Example:
//
//	g := pairkit.NewLinearGradient(0, 0, 100, 0).
//	    AddColorStop(0, pairkit.White).
//	    AddColorStop(1, pairkit.Black)
//	dc.SetFillBrush(g)
type LinearGradientBrush struct {
	Start  Point
	End    Point
	Extend ExtendMode

	stops []ColorStop // kept sorted
}

// NewLinearGradient creates a linear gradient from (x0, y0) to (x1, y1).
func NewLinearGradient(x0, y0, x1, y1 float64) *LinearGradientBrush {
	return &LinearGradientBrush{Start: Pt(x0, y0), End: Pt(x1, y1)}
}

// AddColorStop adds a color stop at the specified offset.
func (g *LinearGradientBrush) AddColorStop(offset float64, c RGBA) *LinearGradientBrush {
	g.stops = sortStops(append(g.stops, ColorStop{Offset: offset, Color: c}))
	return g
}

// Stops returns the sorted color stops.
func (g *LinearGradientBrush) Stops() []ColorStop { return g.stops }

// ColorAt returns the color at the given point.
func (g *LinearGradientBrush) ColorAt(x, y float64) RGBA {
	dx := g.End.X - g.Start.X
	dy := g.End.Y - g.Start.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return colorAtOffset(g.stops, 0, g.Extend)
	}
	// Project the point onto the gradient line.
	t := ((x-g.Start.X)*dx + (y-g.Start.Y)*dy) / lengthSq
	return colorAtOffset(g.stops, t, g.Extend)
}

// RadialGradientBrush is a radial color transition from Center outwards.
type RadialGradientBrush struct {
	Center      Point
	StartRadius float64
	EndRadius   float64
	Extend      ExtendMode

	stops []ColorStop
}

// NewRadialGradient creates a radial gradient around (cx, cy).
func NewRadialGradient(cx, cy, startRadius, endRadius float64) *RadialGradientBrush {
	return &RadialGradientBrush{
		Center:      Pt(cx, cy),
		StartRadius: startRadius,
		EndRadius:   endRadius,
	}
}

// AddColorStop adds a color stop at the specified offset.
func (g *RadialGradientBrush) AddColorStop(offset float64, c RGBA) *RadialGradientBrush {
	g.stops = sortStops(append(g.stops, ColorStop{Offset: offset, Color: c}))
	return g
}

// Stops returns the sorted color stops.
func (g *RadialGradientBrush) Stops() []ColorStop { return g.stops }

// ColorAt returns the color at the given point.
func (g *RadialGradientBrush) ColorAt(x, y float64) RGBA {
	span := g.EndRadius - g.StartRadius
	if span <= 0 {
		return colorAtOffset(g.stops, 1, g.Extend)
	}
	d := math.Hypot(x-g.Center.X, y-g.Center.Y)
	return colorAtOffset(g.stops, (d-g.StartRadius)/span, g.Extend)
}
