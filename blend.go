package pairkit

import (
	"math"
	"strings"
)

// BlendMode selects how painted pixels combine with the backdrop, following
// the W3C Compositing and Blending Level 1 separable modes.
type BlendMode uint8

const (
	BlendNormal     BlendMode = iota // Source over
	BlendMultiply                    // S * D
	BlendScreen                      // 1 - (1-S)*(1-D)
	BlendOverlay                     // HardLight with swapped layers
	BlendDarken                      // min(S, D)
	BlendLighten                     // max(S, D)
	BlendColorDodge                  // D / (1 - S)
	BlendColorBurn                   // 1 - (1 - D) / S
	BlendHardLight                   // Multiply or Screen depending on source
	BlendSoftLight                   // Soft version of HardLight
	BlendDifference                  // |S - D|
	BlendExclusion                   // S + D - 2*S*D
)

var blendModeNames = [...]string{
	BlendNormal:     "normal",
	BlendMultiply:   "multiply",
	BlendScreen:     "screen",
	BlendOverlay:    "overlay",
	BlendDarken:     "darken",
	BlendLighten:    "lighten",
	BlendColorDodge: "color-dodge",
	BlendColorBurn:  "color-burn",
	BlendHardLight:  "hard-light",
	BlendSoftLight:  "soft-light",
	BlendDifference: "difference",
	BlendExclusion:  "exclusion",
}

// String returns the CSS name of the blend mode.
func (m BlendMode) String() string {
	if int(m) < len(blendModeNames) {
		return blendModeNames[m]
	}
	return "unknown"
}

// ParseBlendMode maps a CSS / canvas globalCompositeOperation name to a
// BlendMode. Empty and "source-over" mean normal. Unknown names report false
// and yield BlendNormal.
func ParseBlendMode(s string) (BlendMode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "source-over":
		return BlendNormal, true
	}
	for i, name := range blendModeNames {
		if name == s {
			return BlendMode(i), true
		}
	}
	return BlendNormal, false
}

// blendChannel is B(Cs, Cb) on straight channel values in [0, 1].
func (m BlendMode) blendChannel(s, d float64) float64 {
	switch m {
	case BlendMultiply:
		return s * d
	case BlendScreen:
		return s + d - s*d
	case BlendOverlay:
		return BlendHardLight.blendChannel(d, s)
	case BlendDarken:
		return math.Min(s, d)
	case BlendLighten:
		return math.Max(s, d)
	case BlendColorDodge:
		switch {
		case d == 0:
			return 0
		case s >= 1:
			return 1
		}
		return math.Min(1, d/(1-s))
	case BlendColorBurn:
		switch {
		case d >= 1:
			return 1
		case s <= 0:
			return 0
		}
		return 1 - math.Min(1, (1-d)/s)
	case BlendHardLight:
		if s <= 0.5 {
			return 2 * s * d
		}
		return 1 - 2*(1-s)*(1-d)
	case BlendSoftLight:
		if s <= 0.5 {
			return d - (1-2*s)*d*(1-d)
		}
		var dx float64
		if d <= 0.25 {
			dx = ((16*d-12)*d + 4) * d
		} else {
			dx = math.Sqrt(d)
		}
		return d + (2*s-1)*(dx-d)
	case BlendDifference:
		return math.Abs(s - d)
	case BlendExclusion:
		return s + d - 2*s*d
	default:
		return s
	}
}

// composite blends premultiplied source (sr..sa) over premultiplied
// backdrop (dr..da), all in [0, 1], and returns the premultiplied result:
//
//	Co = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Cs, Cd)
//	Ao = Sa + Da*(1 - Sa)
func (m BlendMode) composite(sr, sg, sb, sa, dr, dg, db, da float64) (r, g, b, a float64) {
	if sa <= 0 {
		return dr, dg, db, da
	}
	a = sa + da*(1-sa)
	if m == BlendNormal || da <= 0 {
		return sr + dr*(1-sa), sg + dg*(1-sa), sb + db*(1-sa), a
	}
	csr, csg, csb := sr/sa, sg/sa, sb/sa
	cdr, cdg, cdb := dr/da, dg/da, db/da
	k := sa * da
	r = (1-sa)*dr + (1-da)*sr + k*m.blendChannel(csr, cdr)
	g = (1-sa)*dg + (1-da)*sg + k*m.blendChannel(csg, cdg)
	b = (1-sa)*db + (1-da)*sb + k*m.blendChannel(csb, cdb)
	return r, g, b, a
}
