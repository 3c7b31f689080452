package resolve

import (
	"math"

	"github.com/gogpu/pairkit"
)

// Transform positions a layer box on the canvas. X, Y, Width and Height are
// canvas units with a top-left origin. Rotation is in degrees, clockwise on
// screen. Zero scales mean 1. OriginX and OriginY locate the rotation and
// scale pivot as a fraction of the box (0,0 is the top-left corner).
type Transform struct {
	X        float64 `yaml:"x" json:"x"`
	Y        float64 `yaml:"y" json:"y"`
	Width    float64 `yaml:"width" json:"width"`
	Height   float64 `yaml:"height" json:"height"`
	Rotation float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	ScaleX   float64 `yaml:"scaleX,omitempty" json:"scaleX,omitempty"`
	ScaleY   float64 `yaml:"scaleY,omitempty" json:"scaleY,omitempty"`
	OriginX  float64 `yaml:"originX,omitempty" json:"originX,omitempty"`
	OriginY  float64 `yaml:"originY,omitempty" json:"originY,omitempty"`
}

// Size returns the box dimensions with non-finite or negative values
// replaced by 0.
func (t Transform) Size() (w, h float64) {
	return finiteNonNeg(t.Width), finiteNonNeg(t.Height)
}

// Box returns the untransformed box in canvas space.
func (t Transform) Box() pairkit.Rect {
	w, h := t.Size()
	return pairkit.Rect{X: finite(t.X, 0), Y: finite(t.Y, 0), Width: w, Height: h}
}

// Matrix maps box-local coordinates (0..Width, 0..Height) to canvas space.
func (t Transform) Matrix() pairkit.Matrix {
	w, h := t.Size()
	ox, oy := finite(t.OriginX, 0)*w, finite(t.OriginY, 0)*h
	sx, sy := scaleOr1(t.ScaleX), scaleOr1(t.ScaleY)
	return pairkit.Translate(finite(t.X, 0)+ox, finite(t.Y, 0)+oy).
		Multiply(pairkit.Rotate(pairkit.Radians(finite(t.Rotation, 0)))).
		Multiply(pairkit.Scale(sx, sy)).
		Multiply(pairkit.Translate(-ox, -oy))
}

// Bounds returns the canvas-space bounding box of the transformed box.
func (t Transform) Bounds() pairkit.Rect {
	w, h := t.Size()
	return pairkit.Rect{Width: w, Height: h}.Transform(t.Matrix())
}

func scaleOr1(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}

func finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func finiteNonNeg(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 1) {
		return 0
	}
	return v
}
