package resolve

import (
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/pairkit"
)

// Role says what a color is used for. It picks the fallback when a
// reference cannot be resolved.
type Role int

const (
	RoleFill Role = iota
	RoleBackground
	RoleText
	RoleStroke
)

func (r Role) String() string {
	switch r {
	case RoleBackground:
		return "background"
	case RoleText:
		return "text"
	case RoleStroke:
		return "stroke"
	default:
		return "fill"
	}
}

// Default returns the fallback color for the role: white for fills and
// backgrounds, black for text and strokes.
func (r Role) Default() pairkit.RGBA {
	if r == RoleText || r == RoleStroke {
		return pairkit.Black
	}
	return pairkit.White
}

// maxPaletteDepth bounds palette-to-palette indirection; deeper chains and
// cycles are unresolvable.
const maxPaletteDepth = 8

// PalettePrefix marks a reference that must resolve through the palette.
const PalettePrefix = "palette:"

// Color resolves ref against palette. A reference is a palette key, an
// explicit "palette:key", or a literal (see Literal). Palette keys win over
// literals of the same spelling so themes can rebind names like "accent".
// An empty reference yields the role default silently; any other
// unresolvable reference is logged and yields the role default.
func Color(ref string, palette map[string]string, role Role) pairkit.RGBA {
	if strings.TrimSpace(ref) == "" {
		return role.Default()
	}
	if c, ok := lookup(ref, palette, 0); ok {
		return c
	}
	pairkit.Logger().Warn("resolve: unresolvable color reference",
		"ref", ref, "role", role.String())
	return role.Default()
}

func lookup(ref string, palette map[string]string, depth int) (pairkit.RGBA, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || depth > maxPaletteDepth {
		return pairkit.RGBA{}, false
	}
	key, explicit := strings.CutPrefix(ref, PalettePrefix)
	if v, ok := palette[key]; ok {
		return lookup(v, palette, depth+1)
	}
	if explicit {
		return pairkit.RGBA{}, false
	}
	return Literal(ref)
}

// Literal parses a color literal: hex (#RGB, #RGBA, #RRGGBB, #RRGGBBAA),
// rgb()/rgba() with 0-255 or percentage channels, hsl()/hsla(),
// "transparent", or a CSS basic color keyword.
func Literal(s string) (pairkit.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return pairkit.Hex(s)
	case s == "transparent":
		return pairkit.Transparent, true
	case strings.HasPrefix(s, "rgb"):
		return parseRGB(s)
	case strings.HasPrefix(s, "hsl"):
		return parseHSL(s)
	}
	if hex, ok := namedColors[s]; ok {
		return pairkit.Hex(hex)
	}
	return pairkit.RGBA{}, false
}

// functionArgs splits "name(a, b, c)" or "name(a b c / d)" into its
// arguments.
func functionArgs(s string) ([]string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	body := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : len(s)-1])
	args := strings.Fields(body)
	if len(args) != 3 && len(args) != 4 {
		return nil, false
	}
	return args, true
}

// number parses a plain or percentage number. Percentages scale to full.
func number(s string, full float64) (float64, bool) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		v = v / 100 * full
	}
	return v, true
}

func alphaArg(args []string) (float64, bool) {
	if len(args) < 4 {
		return 1, true
	}
	a, ok := number(args[3], 1)
	return clamp(a, 0, 1), ok
}

func parseRGB(s string) (pairkit.RGBA, bool) {
	args, ok := functionArgs(s)
	if !ok {
		return pairkit.RGBA{}, false
	}
	var ch [3]float64
	for i := range ch {
		v, ok := number(args[i], 255)
		if !ok {
			return pairkit.RGBA{}, false
		}
		ch[i] = clamp(v, 0, 255) / 255
	}
	a, ok := alphaArg(args)
	if !ok {
		return pairkit.RGBA{}, false
	}
	return pairkit.RGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

func parseHSL(s string) (pairkit.RGBA, bool) {
	args, ok := functionArgs(s)
	if !ok {
		return pairkit.RGBA{}, false
	}
	h, okH := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	sat, okS := number(args[1], 1)
	l, okL := number(args[2], 1)
	a, okA := alphaArg(args)
	if okH != nil || math.IsNaN(h) || math.IsInf(h, 0) || !okS || !okL || !okA {
		return pairkit.RGBA{}, false
	}
	if h = math.Mod(h, 360); h < 0 {
		h += 360
	}
	c := colorful.Hsl(h, clamp(sat, 0, 1), clamp(l, 0, 1)).Clamped()
	return pairkit.RGBA{R: c.R, G: c.G, B: c.B, A: a}, true
}

func clamp(v, lo, hi float64) float64 {
	if !(v > lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// namedColors holds the CSS basic keywords plus a few common extras.
var namedColors = map[string]string{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"orange":  "#ffa500",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
}

// Resolvable reports whether ref resolves without falling back. Template
// validation uses it to report authoring defects up front.
func Resolvable(ref string, palette map[string]string) bool {
	_, ok := lookup(ref, palette, 0)
	return ok
}
