package compositor

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/pairkit/filter"
	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/template"
)

// Adjustment is the user's non-destructive edit of a slot's content.
// X and Y pan the content in slot half-extents and are kept in [-1, 1].
type Adjustment struct {
	X        float64       `json:"x" yaml:"x"`
	Y        float64       `json:"y" yaml:"y"`
	Scale    float64       `json:"scale" yaml:"scale"`
	Rotation float64       `json:"rotation" yaml:"rotation"`
	FlipX    bool          `json:"flipX,omitempty" yaml:"flipX,omitempty"`
	FlipY    bool          `json:"flipY,omitempty" yaml:"flipY,omitempty"`
	Opacity  float64       `json:"opacity" yaml:"opacity"`
	Filters  []filter.Spec `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// DefaultAdjustment is the identity adjustment: no pan, scale 1,
// opacity 1.
func DefaultAdjustment() Adjustment {
	return Adjustment{Scale: 1, Opacity: 1}
}

// Clone returns a copy that shares no memory with a.
func (a Adjustment) Clone() Adjustment {
	if a.Filters != nil {
		a.Filters = append([]filter.Spec(nil), a.Filters...)
	}
	return a
}

// Params is the full input of a composite. Two Params with the same Key
// produce the same tile.
type Params struct {
	// Width and Height are the slot size in canvas units.
	Width, Height float64

	ImageRef string
	Fit      resolve.Fit

	PanX, PanY float64
	Scale      float64
	Rotation   float64 // degrees, clockwise
	FlipX      bool
	FlipY      bool
	Opacity    float64

	Filters []filter.Spec
	Mask    template.Mask
}

// NewParams combines a slot's template description, its content reference
// and the user's adjustment. The authored image position composes with the
// adjustment: pans add, scales multiply.
func NewParams(slot *template.ImageSlot, ref string, adj Adjustment) Params {
	w, h := slot.Transform.Size()
	pos := slot.ImagePosition
	authored := pos.Scale
	if !(authored > 0) {
		authored = 1
	}
	return Params{
		Width:    w,
		Height:   h,
		ImageRef: ref,
		Fit:      slot.ImageFit,
		PanX:     resolve.ClampPan(pos.X + adj.X),
		PanY:     resolve.ClampPan(pos.Y + adj.Y),
		Scale:    authored * normScale(adj.Scale),
		Rotation: adj.Rotation,
		FlipX:    adj.FlipX,
		FlipY:    adj.FlipY,
		Opacity:  adj.Opacity,
		Filters:  adj.Filters,
		Mask:     slot.Mask,
	}
}

// normalized returns p with every field in its valid range.
func (p Params) normalized() Params {
	p.PanX = resolve.ClampPan(p.PanX)
	p.PanY = resolve.ClampPan(p.PanY)
	p.Scale = normScale(p.Scale)
	if math.IsNaN(p.Rotation) || math.IsInf(p.Rotation, 0) {
		p.Rotation = 0
	}
	p.Rotation = math.Mod(p.Rotation, 360)
	p.Opacity = normOpacity(p.Opacity)
	if p.Fit == "" || !p.Fit.Valid() {
		p.Fit = resolve.FitCover
	}
	if p.Fit == resolve.FitTile {
		p.Fit = resolve.FitFill
	}
	return p
}

func normScale(s float64) float64 {
	if !(s > 0) || math.IsInf(s, 1) {
		return 1
	}
	return s
}

func normOpacity(o float64) float64 {
	if math.IsNaN(o) {
		return 1
	}
	return math.Max(0, math.Min(1, o))
}

// Key returns the canonical form of the normalized parameter tuple.
func (p Params) Key() string {
	p = p.normalized()
	var b strings.Builder
	f := func(v float64) {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('|')
	}
	s := func(v string) {
		b.WriteString(strconv.Quote(v))
		b.WriteByte('|')
	}
	s(p.ImageRef)
	f(p.Width)
	f(p.Height)
	s(string(p.Fit))
	f(p.PanX)
	f(p.PanY)
	f(p.Scale)
	f(p.Rotation)
	b.WriteString(strconv.FormatBool(p.FlipX))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(p.FlipY))
	b.WriteByte('|')
	f(p.Opacity)
	s(filter.Key(p.Filters))
	m := p.Mask
	s(string(m.Type))
	s(string(m.Shape))
	f(m.CornerRadius)
	s(m.ImageRef)
	s(string(m.Mode))
	b.WriteString(strconv.FormatBool(m.Invert))
	return b.String()
}
