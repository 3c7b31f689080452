package layer

import (
	"math"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/template"
)

// PathUnits is the authored coordinate range of path shapes: path data is
// scaled by width/PathUnits and height/PathUnits.
const PathUnits = 100

// Shape renders a dynamic shape. Shapes missing their geometry render
// nothing and return nil.
func Shape(s *template.DynamicShape, palette map[string]string) Primitive {
	if s == nil {
		return nil
	}
	path := ShapePath(s)
	if path == nil || path.Empty() {
		return nil
	}
	v := &Vector{
		ID:      s.ID,
		Matrix:  s.Transform.Matrix(),
		Path:    path,
		Opacity: template.Opacity(s.Opacity, 1),
		Blend:   blendMode(s.BlendMode),
		Shadow:  resolveShadow(s.Shadow, palette),
	}
	if s.Type != template.ShapeTypeLine && s.Fill != "" {
		v.Fill = pairkit.Solid(resolve.Color(s.Fill, palette, resolve.RoleFill))
	}
	if s.Stroke != "" || s.Type == template.ShapeTypeLine {
		width := s.StrokeWidth
		if !(width > 0) || math.IsInf(width, 1) {
			width = 1
		}
		st := pairkit.DefaultStroke().WithWidth(width)
		if s.Type == template.ShapeTypeLine {
			st = st.WithCap(pairkit.LineCapRound)
		}
		v.Stroke = &st
		v.StrokeBrush = pairkit.Solid(resolve.Color(s.Stroke, palette, resolve.RoleStroke))
	}
	return v
}

// ShapePath returns the outline of s in its box-local coordinates, or nil
// when the shape lacks the geometry its type needs.
func ShapePath(s *template.DynamicShape) *pairkit.Path {
	w, h := s.Transform.Size()
	b := pairkit.BuildPath()
	switch s.Type {
	case template.ShapeTypeRect:
		if s.CornerRadius > 0 {
			b.RoundRect(0, 0, w, h, s.CornerRadius)
		} else {
			b.Rect(0, 0, w, h)
		}
	case template.ShapeTypeCircle:
		b.Circle(w/2, h/2, math.Min(w, h)/2)
	case template.ShapeTypeEllipse:
		b.Ellipse(w/2, h/2, w/2, h/2)
	case template.ShapeTypeLine:
		if len(s.Points) >= 4 {
			b.Polyline(s.Points, false)
		} else {
			b.MoveTo(0, h/2).LineTo(w, h/2)
		}
	case template.ShapeTypePath:
		if s.PathData == "" {
			return nil
		}
		p, err := pairkit.ParseSVGPath(s.PathData)
		if err != nil {
			pairkit.Logger().Warn("layer: skipping shape with invalid path data", "id", s.ID, "err", err)
			return nil
		}
		return p.Transform(pairkit.Scale(w/PathUnits, h/PathUnits))
	case template.ShapeTypePolygon:
		if len(s.Points) < 6 {
			return nil
		}
		b.Polyline(s.Points, true)
	case template.ShapeTypeArc:
		a := s.Arc
		if a == nil {
			return nil
		}
		outer := a.OuterRadius
		if !(outer > 0) {
			outer = math.Min(w, h) / 2
		}
		b.AnnularSector(w/2, h/2, math.Max(a.InnerRadius, 0), outer,
			pairkit.Radians(a.Rotation), pairkit.Radians(a.Angle))
	default:
		pairkit.Logger().Warn("layer: unknown shape type", "id", s.ID, "type", string(s.Type))
		return nil
	}
	return b.Build()
}
