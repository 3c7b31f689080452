package template

import (
	"fmt"
	"strings"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/resolve"
)

// ValidationError lists every authoring defect found in a template.
// Rendering tolerates all of them; validation exists to surface them early.
type ValidationError struct {
	TemplateID string
	Problems   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("template %q: %d problem(s): %s",
		e.TemplateID, len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks layer id uniqueness, canvas size, enum values, color
// references, shape geometry and zone declarations. It returns nil or a
// *ValidationError.
func (t *Template) Validate() error {
	v := &validator{t: t, seen: map[string]string{}}

	if !(t.CanvasSize.Width > 0) || !(t.CanvasSize.Height > 0) {
		v.addf("canvasSize %gx%g must be positive", t.CanvasSize.Width, t.CanvasSize.Height)
	}
	v.background()
	for _, s := range t.ImageSlots {
		v.id(s.ID, KindImageSlot)
		v.fit(s.ID, s.ImageFit)
		v.mask(s.ID, s.Mask)
		if s.Border != nil {
			v.color(s.ID+".border", s.Border.Color)
		}
		v.shadow(s.ID, s.Shadow)
	}
	for _, f := range t.TextFields {
		v.id(f.ID, KindTextField)
		v.color(f.ID+".style", f.Style.Color)
		if f.Effects != nil {
			v.shadow(f.ID, f.Effects.Shadow)
			if f.Effects.Stroke != nil {
				v.color(f.ID+".stroke", f.Effects.Stroke.Color)
			}
			if f.Effects.Glow != nil {
				v.color(f.ID+".glow", f.Effects.Glow.Color)
			}
		}
		if f.Background != nil {
			v.color(f.ID+".background", f.Background.Color)
		}
	}
	for _, s := range t.DynamicShapes {
		v.id(s.ID, KindShape)
		v.shape(s)
	}
	for _, o := range t.OverlayImages {
		v.id(o.ID, KindOverlay)
		v.fit(o.ID, o.Fit)
		v.blend(o.ID, o.BlendMode)
		if o.ImageRef == "" {
			v.addf("overlay %q has no imageRef", o.ID)
		}
	}
	v.zones()

	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{TemplateID: t.ID, Problems: v.problems}
}

type validator struct {
	t        *Template
	seen     map[string]string
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) id(id string, kind Kind) {
	if id == "" {
		v.addf("%s without id", kind)
		return
	}
	if prev, ok := v.seen[id]; ok {
		v.addf("duplicate layer id %q (%s and %s)", id, prev, kind)
		return
	}
	v.seen[id] = string(kind)
}

func (v *validator) color(where, ref string) {
	if ref != "" && !resolve.Resolvable(ref, v.t.Palette) {
		v.addf("%s: color %q does not resolve", where, ref)
	}
}

func (v *validator) fit(where string, f resolve.Fit) {
	if !f.Valid() {
		v.addf("%s: unknown fit %q", where, f)
	}
}

func (v *validator) blend(where, mode string) {
	if _, ok := pairkit.ParseBlendMode(mode); !ok {
		v.addf("%s: unknown blend mode %q", where, mode)
	}
}

func (v *validator) shadow(where string, s *Shadow) {
	if s != nil {
		v.color(where+".shadow", s.Color)
	}
}

func (v *validator) background() {
	bg := v.t.Background
	switch bg.Type {
	case "", BackgroundSolid:
		v.color("background", bg.Color)
	case BackgroundGradient:
		if bg.Gradient == nil || len(bg.Gradient.Stops) == 0 {
			v.addf("gradient background without stops")
			return
		}
		if g := bg.Gradient.Type; g != GradientLinear && g != GradientRadial && g != "" {
			v.addf("background: unknown gradient type %q", g)
		}
		for i, s := range bg.Gradient.Stops {
			v.color(fmt.Sprintf("background.stops[%d]", i), s.Color)
		}
	case BackgroundImage:
		if bg.ImageRef == "" {
			v.addf("image background without imageRef")
		}
		v.fit("background", bg.Fit)
	default:
		v.addf("unknown background type %q", bg.Type)
	}
}

func (v *validator) mask(where string, m Mask) {
	switch m.Type {
	case "", MaskNone:
	case MaskShape:
		switch m.Shape {
		case "", ShapeRect, ShapeCircle, ShapeEllipse, ShapeTriangle, ShapeStar, ShapeHexagon, ShapeHeart, ShapeDiamond:
		default:
			v.addf("%s: unknown mask shape %q (renders as rect)", where, m.Shape)
		}
	case MaskImage:
		if m.ImageRef == "" {
			v.addf("%s: image mask without imageRef", where)
		}
		if m.Mode != "" && m.Mode != MaskAlpha && m.Mode != MaskLuminance {
			v.addf("%s: unknown mask mode %q", where, m.Mode)
		}
	default:
		v.addf("%s: unknown mask type %q", where, m.Type)
	}
}

func (v *validator) shape(s DynamicShape) {
	switch s.Type {
	case ShapeTypeRect, ShapeTypeCircle, ShapeTypeEllipse, ShapeTypeLine:
	case ShapeTypePath:
		if s.PathData == "" {
			v.addf("%s: path without pathData", s.ID)
		} else if _, err := pairkit.ParseSVGPath(s.PathData); err != nil {
			v.addf("%s: %v", s.ID, err)
		}
	case ShapeTypePolygon:
		if len(s.Points) < 6 {
			v.addf("%s: polygon needs at least 3 points", s.ID)
		}
	case ShapeTypeArc:
		if s.Arc == nil {
			v.addf("%s: arc without arc descriptor", s.ID)
		}
	default:
		v.addf("%s: unknown shape type %q", s.ID, s.Type)
	}
	if s.Layer != "" && s.Layer != ShapeUnder && s.Layer != ShapeOver {
		v.addf("%s: unknown shape layer %q", s.ID, s.Layer)
	}
	v.color(s.ID+".fill", s.Fill)
	v.color(s.ID+".stroke", s.Stroke)
	v.blend(s.ID, s.BlendMode)
	v.shadow(s.ID, s.Shadow)
}

func (v *validator) zones() {
	ids := map[string]bool{}
	for _, z := range v.t.Zones {
		if z.ID == "" {
			v.addf("zone without id")
			continue
		}
		if ids[z.ID] {
			v.addf("duplicate zone id %q", z.ID)
		}
		ids[z.ID] = true
		for _, l := range z.Layers {
			if _, ok := v.seen[l]; !ok {
				v.addf("zone %q lists unknown layer %q", z.ID, l)
			}
		}
	}
	for _, l := range v.t.Layers() {
		if l.Zone != "" && !ids[l.Zone] {
			v.addf("%s: unknown zone %q", l.ID, l.Zone)
		}
	}
}
