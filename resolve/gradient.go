package resolve

import (
	"math"

	"github.com/gogpu/pairkit"
)

// LinearGradientPoints returns the start and end of a CSS-style linear
// gradient line for a w x h area. Angle is in degrees: 0 points up, 90 to
// the right. The line passes through the centre and is long enough that the
// corners receive the first and last stop colors.
func LinearGradientPoints(angle, w, h float64) (start, end pairkit.Point) {
	w, h = finiteNonNeg(w), finiteNonNeg(h)
	c := pairkit.Pt(w/2, h/2)
	rad := pairkit.Radians(finite(angle, 180))
	dir := pairkit.Pt(math.Sin(rad), -math.Cos(rad))
	half := (math.Abs(w*dir.X) + math.Abs(h*dir.Y)) / 2
	return c.Sub(dir.Mul(half)), c.Add(dir.Mul(half))
}

// RadialGradient returns the centre and radius of a radial background
// gradient: centred on the area, radius half its longer side.
func RadialGradient(w, h float64) (center pairkit.Point, radius float64) {
	w, h = finiteNonNeg(w), finiteNonNeg(h)
	return pairkit.Pt(w/2, h/2), math.Max(w, h) / 2
}
