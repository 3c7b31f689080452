package template

import "github.com/gogpu/pairkit/resolve"

// BackgroundType selects how the background is painted.
type BackgroundType string

const (
	BackgroundSolid    BackgroundType = "solid"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundImage    BackgroundType = "image"
)

// Background always spans the full canvas and is never transformed.
type Background struct {
	Type     BackgroundType `yaml:"type" json:"type"`
	Color    string         `yaml:"color,omitempty" json:"color,omitempty"`
	Gradient *Gradient      `yaml:"gradient,omitempty" json:"gradient,omitempty"`
	ImageRef string         `yaml:"imageRef,omitempty" json:"imageRef,omitempty"`
	Fit      resolve.Fit    `yaml:"fit,omitempty" json:"fit,omitempty"`
}

// GradientType is linear or radial.
type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
)

// Gradient describes a background gradient. Angle applies to linear
// gradients, in CSS degrees (0 points up).
type Gradient struct {
	Type  GradientType   `yaml:"type" json:"type"`
	Angle float64        `yaml:"angle,omitempty" json:"angle,omitempty"`
	Stops []GradientStop `yaml:"stops" json:"stops"`
}

// GradientStop is a color reference at an offset in [0, 1].
type GradientStop struct {
	Offset float64 `yaml:"offset" json:"offset"`
	Color  string  `yaml:"color" json:"color"`
}

// MaskType selects how an image slot is clipped.
type MaskType string

const (
	MaskNone  MaskType = "none"
	MaskShape MaskType = "shape"
	MaskImage MaskType = "image"
)

// MaskShapeKind names a mask stencil primitive.
type MaskShapeKind string

const (
	ShapeRect     MaskShapeKind = "rect"
	ShapeCircle   MaskShapeKind = "circle"
	ShapeEllipse  MaskShapeKind = "ellipse"
	ShapeTriangle MaskShapeKind = "triangle"
	ShapeStar     MaskShapeKind = "star"
	ShapeHexagon  MaskShapeKind = "hexagon"
	ShapeHeart    MaskShapeKind = "heart"
	ShapeDiamond  MaskShapeKind = "diamond"
)

// MaskMode says which channel of a mask image is the stencil.
type MaskMode string

const (
	MaskAlpha     MaskMode = "alpha"
	MaskLuminance MaskMode = "luminance"
)

// Mask is an image slot's clipping stencil.
type Mask struct {
	Type         MaskType      `yaml:"type,omitempty" json:"type,omitempty"`
	Shape        MaskShapeKind `yaml:"shape,omitempty" json:"shape,omitempty"`
	CornerRadius float64       `yaml:"cornerRadius,omitempty" json:"cornerRadius,omitempty"`
	ImageRef     string        `yaml:"imageRef,omitempty" json:"imageRef,omitempty"`
	Mode         MaskMode      `yaml:"mode,omitempty" json:"mode,omitempty"`
	Invert       bool          `yaml:"invert,omitempty" json:"invert,omitempty"`
}

// ImagePosition is the slot's authored content offset. It composes with the
// user's adjustment: pans add, scales multiply.
type ImagePosition struct {
	X     float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y     float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Scale float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// Border strokes the outline of an image slot's mask.
type Border struct {
	Width   float64  `yaml:"width" json:"width"`
	Color   string   `yaml:"color" json:"color"`
	Opacity *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

// Shadow is a blurred, offset copy of a layer's silhouette.
type Shadow struct {
	OffsetX float64  `yaml:"offsetX,omitempty" json:"offsetX,omitempty"`
	OffsetY float64  `yaml:"offsetY,omitempty" json:"offsetY,omitempty"`
	Blur    float64  `yaml:"blur,omitempty" json:"blur,omitempty"`
	Color   string   `yaml:"color,omitempty" json:"color,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

// ImageSlot is a positioned region holding user-supplied image content.
type ImageSlot struct {
	ID                  string            `yaml:"id" json:"id"`
	Transform           resolve.Transform `yaml:"transform" json:"transform"`
	Mask                Mask              `yaml:"mask,omitempty" json:"mask,omitempty"`
	ImageFit            resolve.Fit       `yaml:"imageFit,omitempty" json:"imageFit,omitempty"`
	ImagePosition       ImagePosition     `yaml:"imagePosition,omitempty" json:"imagePosition,omitempty"`
	Border              *Border           `yaml:"border,omitempty" json:"border,omitempty"`
	Shadow              *Shadow           `yaml:"shadow,omitempty" json:"shadow,omitempty"`
	PlaceholderImageRef string            `yaml:"placeholderImageRef,omitempty" json:"placeholderImageRef,omitempty"`
	Zone                string            `yaml:"zone,omitempty" json:"zone,omitempty"`
}

// TextStyle is a text field's typography.
type TextStyle struct {
	FontFamily    string  `yaml:"fontFamily,omitempty" json:"fontFamily,omitempty"`
	FontSize      float64 `yaml:"fontSize,omitempty" json:"fontSize,omitempty"`
	FontWeight    string  `yaml:"fontWeight,omitempty" json:"fontWeight,omitempty"`
	FontStyle     string  `yaml:"fontStyle,omitempty" json:"fontStyle,omitempty"`
	Color         string  `yaml:"color,omitempty" json:"color,omitempty"`
	Align         string  `yaml:"align,omitempty" json:"align,omitempty"`
	VerticalAlign string  `yaml:"verticalAlign,omitempty" json:"verticalAlign,omitempty"`
	LineHeight    float64 `yaml:"lineHeight,omitempty" json:"lineHeight,omitempty"`
	LetterSpacing float64 `yaml:"letterSpacing,omitempty" json:"letterSpacing,omitempty"`
	TextTransform string  `yaml:"textTransform,omitempty" json:"textTransform,omitempty"`
	Decoration    string  `yaml:"decoration,omitempty" json:"decoration,omitempty"`
}

// TextStroke outlines glyphs.
type TextStroke struct {
	Width float64 `yaml:"width" json:"width"`
	Color string  `yaml:"color" json:"color"`
}

// Glow is a zero-offset blurred halo. It takes precedence over Shadow.
type Glow struct {
	Blur    float64  `yaml:"blur" json:"blur"`
	Color   string   `yaml:"color" json:"color"`
	Opacity *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

// TextEffects are optional text decorations beyond the fill.
type TextEffects struct {
	Shadow *Shadow     `yaml:"shadow,omitempty" json:"shadow,omitempty"`
	Stroke *TextStroke `yaml:"stroke,omitempty" json:"stroke,omitempty"`
	Glow   *Glow       `yaml:"glow,omitempty" json:"glow,omitempty"`
}

// TextBackground is a padded rounded panel behind the text.
type TextBackground struct {
	Color        string   `yaml:"color" json:"color"`
	Opacity      *float64 `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	Padding      float64  `yaml:"padding,omitempty" json:"padding,omitempty"`
	CornerRadius float64  `yaml:"cornerRadius,omitempty" json:"cornerRadius,omitempty"`
}

// TextField is a positioned text layer bound to form data by id.
type TextField struct {
	ID           string            `yaml:"id" json:"id"`
	Transform    resolve.Transform `yaml:"transform" json:"transform"`
	Style        TextStyle         `yaml:"style" json:"style"`
	Effects      *TextEffects      `yaml:"effects,omitempty" json:"effects,omitempty"`
	Background   *TextBackground   `yaml:"background,omitempty" json:"background,omitempty"`
	DefaultValue *string           `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
	Placeholder  *string           `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	MaxLength    int               `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Zone         string            `yaml:"zone,omitempty" json:"zone,omitempty"`
}

// ShapeType discriminates dynamic shapes.
type ShapeType string

const (
	ShapeTypeRect    ShapeType = "rect"
	ShapeTypeCircle  ShapeType = "circle"
	ShapeTypeEllipse ShapeType = "ellipse"
	ShapeTypeLine    ShapeType = "line"
	ShapeTypePath    ShapeType = "path"
	ShapeTypePolygon ShapeType = "polygon"
	ShapeTypeArc     ShapeType = "arc"
)

// Arc describes a ring segment inside the shape box. Angle is the sweep and
// Rotation the start, both in degrees clockwise from 3 o'clock. Radii are
// canvas units; a zero outer radius means half the shorter box side.
type Arc struct {
	InnerRadius float64 `yaml:"innerRadius,omitempty" json:"innerRadius,omitempty"`
	OuterRadius float64 `yaml:"outerRadius,omitempty" json:"outerRadius,omitempty"`
	Angle       float64 `yaml:"angle" json:"angle"`
	Rotation    float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
}

// ShapeLayer says whether a shape paints below image slots or above text.
type ShapeLayer string

const (
	ShapeUnder ShapeLayer = "under"
	ShapeOver  ShapeLayer = "over"
)

// DynamicShape is a vector primitive.
type DynamicShape struct {
	ID           string            `yaml:"id" json:"id"`
	Type         ShapeType         `yaml:"type" json:"type"`
	Transform    resolve.Transform `yaml:"transform" json:"transform"`
	Fill         string            `yaml:"fill,omitempty" json:"fill,omitempty"`
	Stroke       string            `yaml:"stroke,omitempty" json:"stroke,omitempty"`
	StrokeWidth  float64           `yaml:"strokeWidth,omitempty" json:"strokeWidth,omitempty"`
	Opacity      *float64          `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	BlendMode    string            `yaml:"blendMode,omitempty" json:"blendMode,omitempty"`
	Shadow       *Shadow           `yaml:"shadow,omitempty" json:"shadow,omitempty"`
	CornerRadius float64           `yaml:"cornerRadius,omitempty" json:"cornerRadius,omitempty"`
	PathData     string            `yaml:"pathData,omitempty" json:"pathData,omitempty"`
	Points       []float64         `yaml:"points,omitempty" json:"points,omitempty"`
	Arc          *Arc              `yaml:"arc,omitempty" json:"arc,omitempty"`
	Layer        ShapeLayer        `yaml:"layer,omitempty" json:"layer,omitempty"`
	Zone         string            `yaml:"zone,omitempty" json:"zone,omitempty"`
}

// Over reports whether the shape paints above text fields.
func (s *DynamicShape) Over() bool { return s.Layer == ShapeOver }

// OverlayImage is a static decorative image.
type OverlayImage struct {
	ID        string            `yaml:"id" json:"id"`
	ImageRef  string            `yaml:"imageRef" json:"imageRef"`
	Transform resolve.Transform `yaml:"transform" json:"transform"`
	Fit       resolve.Fit       `yaml:"fit,omitempty" json:"fit,omitempty"`
	Opacity   *float64          `yaml:"opacity,omitempty" json:"opacity,omitempty"`
	BlendMode string            `yaml:"blendMode,omitempty" json:"blendMode,omitempty"`
	Zone      string            `yaml:"zone,omitempty" json:"zone,omitempty"`
}

// Sticker is a user-placed image. Stickers belong to a document, not to a
// template, but render like any other layer. Flips mirror the content
// inside Box without moving it.
type Sticker struct {
	ID       string            `yaml:"id" json:"id"`
	ImageRef string            `yaml:"imageRef" json:"imageRef"`
	Box      resolve.Transform `yaml:"box" json:"box"`
	FlipX    bool              `yaml:"flipX,omitempty" json:"flipX,omitempty"`
	FlipY    bool              `yaml:"flipY,omitempty" json:"flipY,omitempty"`
	Opacity  *float64          `yaml:"opacity,omitempty" json:"opacity,omitempty"`
}

// Opacity returns *p, or def when p is nil. Values are clamped to [0, 1].
func Opacity(p *float64, def float64) float64 {
	v := def
	if p != nil {
		v = *p
	}
	if !(v > 0) {
		return 0
	}
	return min(v, 1)
}
