package text

import (
	"math"
	"strings"
	"unicode"

	"github.com/gogpu/pairkit"
)

// DefaultLineHeight is the line height, as a multiple of the font size,
// used when Options.LineHeight is not positive.
const DefaultLineHeight = 1.2

// Align is horizontal alignment inside the layout box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// VerticalAlign is vertical alignment inside the layout box.
type VerticalAlign string

const (
	AlignTop    VerticalAlign = "top"
	AlignMiddle VerticalAlign = "middle"
	AlignBottom VerticalAlign = "bottom"
)

// Options configure a Layout.
type Options struct {
	// Size is the font size in pixels per em.
	Size float64

	// LineHeight is the line pitch as a multiple of Size.
	LineHeight float64

	// LetterSpacing is extra space in pixels added after every character.
	LetterSpacing float64

	Align         Align
	VerticalAlign VerticalAlign

	// Width and Height are the box the text is laid out in. Lines wrap at
	// Width when it is positive; Height only affects vertical alignment,
	// text is never clipped.
	Width, Height float64
}

// Layout is text shaped into lines and positioned in its box. Coordinates
// are box-local with y pointing down.
type Layout struct {
	Font  *Font
	Size  float64
	Lines []Line

	lineHeight float64
	metrics    Metrics
}

// Line is one laid out line of text.
type Line struct {
	Text string

	// X is the left edge and Baseline the baseline of the line.
	X, Baseline float64
	Width       float64

	Glyphs []PlacedGlyph
}

// PlacedGlyph is a glyph positioned relative to its line's origin.
type PlacedGlyph struct {
	Glyph
	X, Y float64
}

// NewLayout shapes s with f and breaks it into lines. Explicit newlines
// always break; lines also wrap at word boundaries when wider than
// opts.Width, and words wider than the box break between characters.
// A nil font or non-positive size yields an empty layout.
func NewLayout(f *Font, s string, opts Options) *Layout {
	l := &Layout{Font: f, Size: opts.Size}
	if f == nil || !(opts.Size > 0) || math.IsInf(opts.Size, 0) {
		return l
	}
	lh := opts.LineHeight
	if !(lh > 0) {
		lh = DefaultLineHeight
	}
	l.lineHeight = lh * opts.Size
	l.metrics = f.Metrics(opts.Size)

	for _, para := range strings.Split(s, "\n") {
		l.Lines = append(l.Lines, l.layoutParagraph([]rune(strings.TrimSuffix(para, "\r")), opts)...)
	}

	total := float64(len(l.Lines)) * l.lineHeight
	top := 0.0
	if opts.Height > 0 {
		switch opts.VerticalAlign {
		case AlignMiddle:
			top = (opts.Height - total) / 2
		case AlignBottom:
			top = opts.Height - total
		}
	}
	lead := (l.lineHeight-(l.metrics.Ascent+l.metrics.Descent))/2 + l.metrics.Ascent

	boxW := opts.Width
	if !(boxW > 0) {
		boxW = 0
		for _, ln := range l.Lines {
			boxW = math.Max(boxW, ln.Width)
		}
	}
	for i := range l.Lines {
		ln := &l.Lines[i]
		ln.Baseline = top + float64(i)*l.lineHeight + lead
		switch opts.Align {
		case AlignCenter:
			ln.X = (boxW - ln.Width) / 2
		case AlignRight:
			ln.X = boxW - ln.Width
		}
	}
	return l
}

func (l *Layout) layoutParagraph(runes []rune, opts Options) []Line {
	if len(runes) == 0 {
		return []Line{{}}
	}
	glyphs := l.Font.Shape(runes, opts.Size)

	// Per-rune advance; ligatures credit their whole advance to the
	// cluster's first rune.
	adv := make([]float64, len(runes))
	for _, g := range glyphs {
		if g.Cluster >= 0 && g.Cluster < len(runes) {
			adv[g.Cluster] += g.Advance
		}
	}
	for i := range adv {
		adv[i] += opts.LetterSpacing
	}

	var lines []Line
	for _, span := range breakLines(runes, adv, opts.Width) {
		lines = append(lines, l.makeLine(runes, adv, glyphs, span[0], span[1]))
	}
	return lines
}

// breakLines returns [start, end) rune spans of the wrapped lines.
// Trailing spaces hang past the box edge and are excluded from the next
// line.
func breakLines(runes []rune, adv []float64, maxWidth float64) [][2]int {
	n := len(runes)
	if !(maxWidth > 0) {
		return [][2]int{{0, n}}
	}
	var spans [][2]int
	start := 0
	for start < n {
		width := 0.0
		lastBreak := -1
		i := start
		for ; i < n; i++ {
			if i > start && canBreakBefore(runes, i) {
				lastBreak = i
			}
			if i > start && !unicode.IsSpace(runes[i]) && width+adv[i] > maxWidth {
				break
			}
			width += adv[i]
		}
		end := i
		if i < n && lastBreak > start {
			end = lastBreak
		}
		spans = append(spans, [2]int{start, end})
		start = end
		for start < n && runes[start] == ' ' {
			start++
		}
	}
	return spans
}

// canBreakBefore reports a line break opportunity between runes i-1 and i:
// after spaces and hyphens, and around ideographs.
func canBreakBefore(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	if unicode.IsSpace(cur) {
		return false
	}
	switch {
	case unicode.IsSpace(prev), prev == '-', prev == '\u2010', prev == '\u200b':
		return true
	case isIdeograph(prev), isIdeograph(cur):
		return true
	}
	return false
}

func isIdeograph(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r)
}

func (l *Layout) makeLine(runes []rune, adv []float64, glyphs []Glyph, start, end int) Line {
	trim := end
	for trim > start && unicode.IsSpace(runes[trim-1]) {
		trim--
	}
	runeX := make([]float64, end-start+1)
	for i := start; i < end; i++ {
		runeX[i-start+1] = runeX[i-start] + adv[i]
	}
	ln := Line{
		Text:  string(runes[start:trim]),
		Width: runeX[trim-start],
	}
	intra := 0.0
	prevCluster := -1
	for _, g := range glyphs {
		if g.Cluster < start || g.Cluster >= trim {
			continue
		}
		if g.Cluster != prevCluster {
			intra = 0
			prevCluster = g.Cluster
		}
		ln.Glyphs = append(ln.Glyphs, PlacedGlyph{
			Glyph: g,
			X:     runeX[g.Cluster-start] + intra + g.XOffset,
			Y:     g.YOffset,
		})
		intra += g.Advance
	}
	return ln
}

// LineHeight returns the line pitch in pixels.
func (l *Layout) LineHeight() float64 { return l.lineHeight }

// Metrics returns the font metrics at the layout's size.
func (l *Layout) Metrics() Metrics { return l.metrics }

// Empty reports whether the layout has no visible glyphs.
func (l *Layout) Empty() bool {
	for _, ln := range l.Lines {
		if len(ln.Glyphs) > 0 {
			return false
		}
	}
	return true
}

// Bounds returns the union of the line boxes.
func (l *Layout) Bounds() pairkit.Rect {
	var r pairkit.Rect
	for _, ln := range l.Lines {
		r = r.Union(pairkit.Rect{
			X:      ln.X,
			Y:      ln.Baseline - l.metrics.Ascent,
			Width:  ln.Width,
			Height: l.metrics.Ascent + l.metrics.Descent,
		})
	}
	return r
}

// Path returns the outlines of every glyph as one path in box
// coordinates.
func (l *Layout) Path() *pairkit.Path {
	p := pairkit.NewPath()
	for _, ln := range l.Lines {
		for _, g := range ln.Glyphs {
			o := l.Font.outline(g.ID, l.Size)
			if o == nil {
				continue
			}
			p.Append(o.Transform(pairkit.Translate(ln.X+g.X, ln.Baseline+g.Y)))
		}
	}
	return p
}

// Decoration is a CSS text-decoration-line value.
type Decoration string

const (
	DecorationNone        Decoration = "none"
	DecorationUnderline   Decoration = "underline"
	DecorationLineThrough Decoration = "line-through"
)

// DecorationPath returns filled rectangles for d under or through every
// non-empty line, or nil for none and unknown values.
func (l *Layout) DecorationPath(d Decoration) *pairkit.Path {
	thickness := math.Max(1, l.Size/15)
	var offset float64
	switch d {
	case DecorationUnderline:
		offset = l.metrics.Descent*0.4 + thickness/2
	case DecorationLineThrough:
		offset = -l.metrics.XHeight / 2
	default:
		return nil
	}
	b := pairkit.BuildPath()
	for _, ln := range l.Lines {
		if ln.Width <= 0 {
			continue
		}
		b.Rect(ln.X, ln.Baseline+offset-thickness/2, ln.Width, thickness)
	}
	return b.Build()
}
