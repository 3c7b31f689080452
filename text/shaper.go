package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"
)

// Glyph is one shaped glyph. Cluster is the index of the first rune the
// glyph represents; advances and offsets are in pixels with y pointing
// down.
type Glyph struct {
	ID      sfnt.GlyphIndex
	Cluster int
	Advance float64
	XOffset float64
	YOffset float64
}

// HarfbuzzShaper keeps mutable buffers and is not safe for concurrent use,
// so instances are pooled.
var shapers = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Shape converts runes into glyphs at size pixels per em, applying the
// font's kerning and ligatures. Text is shaped left to right.
func (f *Font) Shape(runes []rune, size float64) []Glyph {
	if len(runes) == 0 || !(size > 0) {
		return nil
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.shaped),
		Size:      toFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	hb := shapers.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	shapers.Put(hb)

	glyphs := make([]Glyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = Glyph{
			ID:      sfnt.GlyphIndex(g.GlyphID),
			Cluster: g.ClusterIndex,
			Advance: fromFixed(g.XAdvance),
			XOffset: fromFixed(g.XOffset),
			YOffset: -fromFixed(g.YOffset),
		}
	}
	return glyphs
}

// Measure returns the advance width of s at size.
func (f *Font) Measure(s string, size float64) float64 {
	var w float64
	for _, g := range f.Shape([]rune(s), size) {
		w += g.Advance
	}
	return w
}

// detectScript returns the script of the first non-space rune. Mixed-script
// text is shaped with that script.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
