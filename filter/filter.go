package filter

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"

	"github.com/gogpu/pairkit"
)

// Filter names.
const (
	Brightness = "brightness" // Amount in [-1, 1], 0 is identity
	Contrast   = "contrast"   // Amount in [-1, 1], 0 is identity
	Saturation = "saturation" // Amount in [-1, 1], -1 is grayscale
	Hue        = "hue"        // Amount in degrees
	Gamma      = "gamma"      // Amount > 0, 1 is identity
	Grayscale  = "grayscale"
	Sepia      = "sepia"
	Invert     = "invert"
	Blur       = "blur" // Amount is the radius in pixels
	Sharpen    = "sharpen"
)

// Spec is one entry of a filter chain.
type Spec struct {
	Name   string  `yaml:"name" json:"name"`
	Amount float64 `yaml:"amount,omitempty" json:"amount,omitempty"`
}

// String returns the canonical form "name(amount)" used in cache keys.
func (s Spec) String() string {
	return strings.ToLower(s.Name) + "(" + strconv.FormatFloat(s.Amount, 'g', -1, 64) + ")"
}

// Key returns the canonical form of a filter chain.
func Key(specs []Spec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

type op struct {
	// straight ops see non-premultiplied pixels.
	straight bool
	apply    func(img *image.RGBA, amount float64) *image.RGBA
}

var ops = map[string]op{
	Brightness: {true, func(img *image.RGBA, v float64) *image.RGBA {
		return adjust.Brightness(img, clampf(v, -1, 1))
	}},
	Contrast: {true, func(img *image.RGBA, v float64) *image.RGBA {
		return adjust.Contrast(img, clampf(v, -1, 1))
	}},
	Saturation: {true, func(img *image.RGBA, v float64) *image.RGBA {
		return adjust.Saturation(img, clampf(v, -1, 1))
	}},
	Hue: {true, func(img *image.RGBA, v float64) *image.RGBA {
		return adjust.Hue(img, int(math.Round(math.Mod(v, 360))))
	}},
	Gamma: {true, func(img *image.RGBA, v float64) *image.RGBA {
		if !(v > 0) {
			return img
		}
		return adjust.Gamma(img, v)
	}},
	Grayscale: {true, func(img *image.RGBA, _ float64) *image.RGBA { return effect.Grayscale(img) }},
	Sepia:     {true, func(img *image.RGBA, _ float64) *image.RGBA { return effect.Sepia(img) }},
	Invert:    {true, func(img *image.RGBA, _ float64) *image.RGBA { return effect.Invert(img) }},
	Blur: {false, func(img *image.RGBA, v float64) *image.RGBA {
		if !(v > 0) {
			return img
		}
		return blur.Gaussian(img, math.Min(v, MaxBlurRadius))
	}},
	Sharpen: {false, func(img *image.RGBA, _ float64) *image.RGBA { return effect.Sharpen(img) }},
}

// MaxBlurRadius caps blur radii so a hostile value cannot stall rendering.
const MaxBlurRadius = 100

// Known reports whether name is a supported filter.
func Known(name string) bool {
	_, ok := ops[strings.ToLower(name)]
	return ok
}

// Validate returns an error naming the first unsupported filter in specs.
func Validate(specs []Spec) error {
	for i, s := range specs {
		if !Known(s.Name) {
			return fmt.Errorf("filter: unknown filter %q at index %d", s.Name, i)
		}
	}
	return nil
}

// Apply runs the chain over img in order and returns a new premultiplied
// image with bounds starting at the origin. Unknown filters and non-finite
// amounts are skipped and logged. img is never modified.
func Apply(img image.Image, specs []Spec) *image.RGBA {
	out := clone.AsRGBA(img)
	out.Rect = out.Rect.Sub(out.Rect.Min)
	if len(specs) == 0 {
		return out
	}
	for _, s := range specs {
		o, ok := ops[strings.ToLower(s.Name)]
		if !ok || math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
			pairkit.Logger().Warn("filter: skipped", "filter", s.Name, "amount", s.Amount)
			continue
		}
		if o.straight {
			unpremultiply(out)
			out = o.apply(out, s.Amount)
			premultiply(out)
		} else {
			out = o.apply(out, s.Amount)
			clampPremultiplied(out)
		}
	}
	return out
}

// unpremultiply converts img in place to straight alpha so color math
// operates on the visible color.
func unpremultiply(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := range 3 {
			img.Pix[i+c] = uint8(min(uint32(img.Pix[i+c])*255/a, 255))
		}
	}
}

func premultiply(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		if a == 255 {
			continue
		}
		for c := range 3 {
			img.Pix[i+c] = uint8((uint32(img.Pix[i+c])*a + 127) / 255)
		}
	}
}

// clampPremultiplied keeps color components at or below alpha after
// kernels that can overshoot.
func clampPremultiplied(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		for c := range 3 {
			img.Pix[i+c] = min(img.Pix[i+c], a)
		}
	}
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
