package text

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/cache"
)

// DefaultFamily is the family used when a requested family is not
// registered.
const DefaultFamily = "Go"

// outlineCacheSize bounds the cached glyph outlines per font.
const outlineCacheSize = 2048

// ErrInvalidFont is returned when font data cannot be parsed.
var ErrInvalidFont = errors.New("text: invalid font data")

// Font is one parsed font file. It is safe for concurrent use.
type Font struct {
	family string
	bold   bool
	italic bool

	sfnt   *sfnt.Font
	shaped *gotext.Font

	buffers  sync.Pool // *sfnt.Buffer
	outlines *cache.Cache[outlineKey, *pairkit.Path]
}

type outlineKey struct {
	gid  sfnt.GlyphIndex
	ppem fixed.Int26_6
}

// Parse parses TrueType or OpenType data into a Font.
func Parse(family string, bold, italic bool, data []byte) (*Font, error) {
	sf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, family, err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFont, family, err)
	}
	return &Font{
		family:   family,
		bold:     bold,
		italic:   italic,
		sfnt:     sf,
		shaped:   face.Font,
		buffers:  sync.Pool{New: func() any { return new(sfnt.Buffer) }},
		outlines: cache.New[outlineKey, *pairkit.Path](outlineCacheSize),
	}, nil
}

// Family returns the family name the font was registered under.
func (f *Font) Family() string { return f.family }

// Bold reports whether the font is a bold variant.
func (f *Font) Bold() bool { return f.bold }

// Italic reports whether the font is an italic variant.
func (f *Font) Italic() bool { return f.italic }

// Metrics are vertical font metrics in pixels at a given size.
// Descent is positive (distance below the baseline).
type Metrics struct {
	Ascent  float64
	Descent float64
	XHeight float64
}

// Metrics returns the font metrics at size pixels per em.
func (f *Font) Metrics(size float64) Metrics {
	buf := f.buffers.Get().(*sfnt.Buffer)
	defer f.buffers.Put(buf)

	m, err := f.sfnt.Metrics(buf, toFixed(size), xfont.HintingNone)
	if err != nil {
		return Metrics{Ascent: size * 0.8, Descent: size * 0.2, XHeight: size * 0.5}
	}
	out := Metrics{
		Ascent:  fromFixed(m.Ascent),
		Descent: fromFixed(m.Descent),
		XHeight: fromFixed(m.XHeight),
	}
	if out.XHeight <= 0 {
		out.XHeight = out.Ascent * 0.5
	}
	return out
}

// outline returns the glyph outline at size with the origin on the
// baseline and y pointing down. Glyphs without an outline yield nil.
func (f *Font) outline(gid sfnt.GlyphIndex, size float64) *pairkit.Path {
	key := outlineKey{gid: gid, ppem: toFixed(size)}
	return f.outlines.GetOrCreate(key, func() *pairkit.Path {
		buf := f.buffers.Get().(*sfnt.Buffer)
		defer f.buffers.Put(buf)

		segs, err := f.sfnt.LoadGlyph(buf, gid, key.ppem, nil)
		if err != nil || len(segs) == 0 {
			return nil
		}
		p := pairkit.NewPath()
		open := false
		for _, s := range segs {
			switch s.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					p.Close()
				}
				p.MoveTo(pt(s.Args[0]))
				open = true
			case sfnt.SegmentOpLineTo:
				p.LineTo(pt(s.Args[0]))
			case sfnt.SegmentOpQuadTo:
				cx, cy := pt(s.Args[0])
				x, y := pt(s.Args[1])
				p.QuadraticTo(cx, cy, x, y)
			case sfnt.SegmentOpCubeTo:
				c1x, c1y := pt(s.Args[0])
				c2x, c2y := pt(s.Args[1])
				x, y := pt(s.Args[2])
				p.CubicTo(c1x, c1y, c2x, c2y, x, y)
			}
		}
		if open {
			p.Close()
		}
		return p
	})
}

func pt(p fixed.Point26_6) (float64, float64) {
	return fromFixed(p.X), fromFixed(p.Y)
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Registry maps family names to fonts. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*[4]*Font
	fallback string
}

// NewRegistry returns an empty registry whose fallback family is
// DefaultFamily.
func NewRegistry() *Registry {
	return &Registry{families: map[string]*[4]*Font{}, fallback: DefaultFamily}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the shared registry holding the Go fonts as
// "Go" (also "sans-serif") and "Go Mono" (also "monospace").
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for _, v := range []struct {
			families     []string
			bold, italic bool
			data         []byte
		}{
			{[]string{"Go", "sans-serif"}, false, false, goregular.TTF},
			{[]string{"Go", "sans-serif"}, true, false, gobold.TTF},
			{[]string{"Go", "sans-serif"}, false, true, goitalic.TTF},
			{[]string{"Go", "sans-serif"}, true, true, gobolditalic.TTF},
			{[]string{"Go Mono", "monospace"}, false, false, gomono.TTF},
			{[]string{"Go Mono", "monospace"}, true, false, gomonobold.TTF},
			{[]string{"Go Mono", "monospace"}, false, true, gomonoitalic.TTF},
			{[]string{"Go Mono", "monospace"}, true, true, gomonobolditalic.TTF},
		} {
			f, err := Parse(v.families[0], v.bold, v.italic, v.data)
			if err != nil {
				panic(err) // embedded fonts always parse
			}
			for _, fam := range v.families {
				r.add(fam, f)
			}
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register parses data and adds it to family as the given variant,
// replacing any font already registered for that variant.
func (r *Registry) Register(family string, bold, italic bool, data []byte) error {
	f, err := Parse(family, bold, italic, data)
	if err != nil {
		return err
	}
	r.add(family, f)
	return nil
}

// SetFallback selects the family used for unknown family names.
func (r *Registry) SetFallback(family string) {
	r.mu.Lock()
	r.fallback = family
	r.mu.Unlock()
}

// Families returns the number of registered families.
func (r *Registry) Families() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.families)
}

func (r *Registry) add(family string, f *Font) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeFamily(family)
	v := r.families[key]
	if v == nil {
		v = new([4]*Font)
		r.families[key] = v
	}
	v[variant(f.bold, f.italic)] = f
}

// Font returns the best match for a CSS-like family, weight and style.
// Missing variants fall back to the family's regular font, unknown
// families to the fallback family. It returns nil only when the registry
// holds neither.
func (r *Registry) Font(family, weight, style string) *Font {
	bold := IsBold(weight)
	italic := IsItalic(style)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, fam := range familyList(family) {
		if f := pick(r.families[fam], bold, italic); f != nil {
			return f
		}
	}
	if family != "" {
		pairkit.Logger().Debug("text: font family fallback", "family", family, "fallback", r.fallback)
	}
	return pick(r.families[normalizeFamily(r.fallback)], bold, italic)
}

// familyList splits a CSS font-family list into normalized names.
func familyList(family string) []string {
	var out []string
	for _, part := range strings.Split(family, ",") {
		if name := normalizeFamily(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func normalizeFamily(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
}

func pick(v *[4]*Font, bold, italic bool) *Font {
	if v == nil {
		return nil
	}
	for _, i := range []int{variant(bold, italic), variant(bold, false), variant(false, italic), 0} {
		if v[i] != nil {
			return v[i]
		}
	}
	return nil
}

func variant(bold, italic bool) int {
	i := 0
	if bold {
		i |= 2
	}
	if italic {
		i |= 1
	}
	return i
}

// IsBold reports whether a CSS font-weight selects a bold face:
// "bold", "bolder" or a numeric weight of at least 600.
func IsBold(weight string) bool {
	switch w := strings.ToLower(strings.TrimSpace(weight)); w {
	case "bold", "bolder":
		return true
	case "", "normal", "lighter":
		return false
	default:
		n, err := strconv.Atoi(w)
		return err == nil && n >= 600
	}
}

// IsItalic reports whether a CSS font-style selects an italic face.
func IsItalic(style string) bool {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "italic", "oblique":
		return true
	}
	return false
}
