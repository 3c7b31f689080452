package resolve

import (
	"math"

	"github.com/gogpu/pairkit"
)

// Fit is the strategy for placing a source image in a fixed-size region.
type Fit string

const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
	FitFill    Fit = "fill"
	FitTile    Fit = "tile"
)

// Valid reports whether f is a known fit mode. The empty mode is valid and
// behaves as cover.
func (f Fit) Valid() bool {
	switch f {
	case "", FitCover, FitContain, FitFill, FitTile:
		return true
	}
	return false
}

// ImageFit places a srcW x srcH image into a dstW x dstH region and returns
// the image rectangle in region coordinates.
//
//   - cover scales to fully cover the region, centred, overflow cropped
//   - contain scales to fit entirely inside, centred, letterboxed
//   - fill and tile stretch to exactly the region (tiling is a paint concern)
//
// Unknown modes behave as cover. Zero, negative or non-finite inputs yield
// the zero Rect.
func ImageFit(srcW, srcH, dstW, dstH float64, mode Fit) pairkit.Rect {
	if !positive(srcW) || !positive(srcH) || !positive(dstW) || !positive(dstH) {
		return pairkit.Rect{}
	}
	if mode == FitFill || mode == FitTile {
		return pairkit.Rect{Width: dstW, Height: dstH}
	}

	sx, sy := dstW/srcW, dstH/srcH
	widthBound := sx >= sy // cover matches width when width needs the larger scale
	if mode == FitContain {
		widthBound = sx <= sy
	}

	// The bound dimension is set exactly so it never drifts by an ulp.
	var w, h float64
	if widthBound {
		w, h = dstW, srcH*sx
	} else {
		w, h = srcW*sy, dstH
	}
	return pairkit.Rect{X: (dstW - w) / 2, Y: (dstH - h) / 2, Width: w, Height: h}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// ClampPan clamps a normalized pan offset to [-1, 1]. NaN becomes 0.
func ClampPan(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// PanDelta converts a pixel drag distance into a normalized pan delta
// relative to half the slot extent. A zero, negative or non-finite half
// extent ignores the drag and returns 0.
func PanDelta(px, half float64) float64 {
	if !positive(half) || math.IsNaN(px) || math.IsInf(px, 0) {
		return 0
	}
	return px / half
}
