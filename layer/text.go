package layer

import (
	"math"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/template"
	"github.com/gogpu/pairkit/text"
)

const (
	// DefaultFontSize applies when a text style has no usable size.
	DefaultFontSize = 16

	// PlaceholderOpacity marks text shown without a value or default.
	PlaceholderOpacity = 0.5
)

// Text is a laid out text field.
type Text struct {
	ID string

	// Matrix maps box-local units to canvas units.
	Matrix pairkit.Matrix
	Box    pairkit.Rect
	Layout *text.Layout

	// Glyphs holds the glyph outlines and decoration in box units.
	Glyphs  *pairkit.Path
	Color   pairkit.RGBA
	Opacity float64

	Panel  *Panel
	Stroke *TextStroke
	Shadow *Shadow
}

// Panel is the rounded rectangle behind a text run.
type Panel struct {
	Rect   pairkit.Rect
	Radius float64
	Color  pairkit.RGBA
}

// TextStroke outlines glyphs.
type TextStroke struct {
	Width float64
	Color pairkit.RGBA
}

func (t *Text) Paint(dc *pairkit.Context) {
	dc.Push()
	defer dc.Pop()
	dc.Transform(t.Matrix)
	if p := t.Panel; p != nil {
		dc.SetFillColor(p.Color)
		dc.DrawRoundedRectangle(p.Rect.X, p.Rect.Y, p.Rect.Width, p.Rect.Height, p.Radius)
		dc.Fill()
	}
	if t.Glyphs.Empty() {
		return
	}
	paintEffects(dc, t.Shadow, t.Opacity, pairkit.BlendNormal, func(dc *pairkit.Context) {
		dc.SetFillColor(t.Color)
		dc.AppendPath(t.Glyphs)
		dc.Fill()
		if s := t.Stroke; s != nil {
			dc.SetStroke(pairkit.DefaultStroke().WithWidth(s.Width).WithJoin(pairkit.LineJoinRound))
			dc.SetStrokeColor(s.Color)
			dc.AppendPath(t.Glyphs)
			dc.Stroke()
		}
	})
}

// Bounds returns the field box; the glyph run never extends selection.
func (t *Text) Bounds() pairkit.Rect { return t.Box.Transform(t.Matrix) }

func (t *Text) LayerID() string { return t.ID }

// DisplayText resolves what a field shows: the value, else the default
// value, else the placeholder, else nothing. placeholder reports whether
// neither a value nor a default exists.
func DisplayText(f *template.TextField, value *string) (s string, placeholder bool) {
	switch {
	case value != nil:
		s = *value
		if f.MaxLength > 0 {
			s = text.Truncate(s, f.MaxLength)
		}
		return s, false
	case f.DefaultValue != nil:
		return *f.DefaultValue, false
	case f.Placeholder != nil:
		return *f.Placeholder, true
	}
	return "", true
}

// TextField renders a text field with the entered value, which is nil
// when the user has not entered one. fonts defaults to
// text.DefaultRegistry.
func TextField(f *template.TextField, value *string, palette map[string]string, fonts *text.Registry) Primitive {
	if f == nil {
		return nil
	}
	if fonts == nil {
		fonts = text.DefaultRegistry()
	}
	st := f.Style
	s, placeholder := DisplayText(f, value)
	s = text.Case(st.TextTransform).Apply(s)

	size := st.FontSize
	if !(size > 0) || math.IsInf(size, 1) {
		size = DefaultFontSize
	}
	w, h := f.Transform.Size()
	lay := text.NewLayout(fonts.Font(st.FontFamily, st.FontWeight, st.FontStyle), s, text.Options{
		Size:          size,
		LineHeight:    st.LineHeight,
		LetterSpacing: st.LetterSpacing,
		Align:         text.Align(st.Align),
		VerticalAlign: text.VerticalAlign(st.VerticalAlign),
		Width:         w,
		Height:        h,
	})
	glyphs := pairkit.NewPath()
	if !lay.Empty() {
		glyphs = lay.Path()
		if d := lay.DecorationPath(text.Decoration(st.Decoration)); d != nil {
			glyphs.Append(d)
		}
	}

	t := &Text{
		ID:      f.ID,
		Matrix:  f.Transform.Matrix(),
		Box:     pairkit.Rect{Width: w, Height: h},
		Layout:  lay,
		Glyphs:  glyphs,
		Color:   resolve.Color(st.Color, palette, resolve.RoleText),
		Opacity: 1,
	}
	if placeholder {
		t.Opacity = PlaceholderOpacity
	}
	if bg := f.Background; bg != nil && !lay.Empty() {
		col := resolve.Color(bg.Color, palette, resolve.RoleBackground)
		col.A *= template.Opacity(bg.Opacity, 1)
		t.Panel = &Panel{Rect: inflate(lay.Bounds(), bg.Padding), Radius: math.Max(bg.CornerRadius, 0), Color: col}
	}
	if fx := f.Effects; fx != nil {
		switch {
		case fx.Glow != nil:
			col := resolve.Color(fx.Glow.Color, palette, resolve.RoleStroke)
			col.A *= template.Opacity(fx.Glow.Opacity, 1)
			if col.A > 0 {
				t.Shadow = &Shadow{Blur: fx.Glow.Blur, Color: col}
			}
		case fx.Shadow != nil:
			t.Shadow = resolveShadow(fx.Shadow, palette)
		}
		if sk := fx.Stroke; sk != nil && sk.Width > 0 {
			t.Stroke = &TextStroke{Width: sk.Width, Color: resolve.Color(sk.Color, palette, resolve.RoleStroke)}
		}
	}
	return t
}
