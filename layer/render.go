package layer

import (
	"image"

	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/template"
	"github.com/gogpu/pairkit/text"
)

// Layer is one layer of a scene. Kind selects which of the pointers is
// set; the others are nil.
type Layer struct {
	Kind       template.Kind
	Background *template.Background
	Slot       *template.ImageSlot
	Text       *template.TextField
	Shape      *template.DynamicShape
	Overlay    *template.OverlayImage
	Sticker    *template.Sticker
}

// ID returns the layer id.
func (l Layer) ID() string {
	switch l.Kind {
	case template.KindBackground:
		return BackgroundID
	case template.KindImageSlot:
		return l.Slot.ID
	case template.KindTextField:
		return l.Text.ID
	case template.KindShape:
		return l.Shape.ID
	case template.KindOverlay:
		return l.Overlay.ID
	case template.KindSticker:
		return l.Sticker.ID
	}
	return ""
}

// Content is what a layer renders with, already resolved by the caller.
type Content struct {
	// Value is the entered text of a text field.
	Value *string

	// Image is the decoded image of a background, overlay or sticker, or
	// the placeholder of an image slot.
	Image image.Image

	// Tile is the composite of an image slot.
	Tile *compositor.Tile
}

// Env holds what every renderer shares.
type Env struct {
	Canvas  template.Size
	Palette map[string]string
	Fonts   *text.Registry
}

// Render dispatches l to the renderer of its kind. It returns nil when
// the layer renders nothing.
func Render(l Layer, c Content, env Env) Primitive {
	switch l.Kind {
	case template.KindBackground:
		return Background(l.Background, env.Canvas, env.Palette, c.Image)
	case template.KindImageSlot:
		return ImageSlot(l.Slot, c.Tile, c.Image, env.Palette)
	case template.KindTextField:
		return TextField(l.Text, c.Value, env.Palette, env.Fonts)
	case template.KindShape:
		return Shape(l.Shape, env.Palette)
	case template.KindOverlay:
		return Overlay(l.Overlay, c.Image)
	case template.KindSticker:
		return Sticker(l.Sticker, c.Image)
	}
	return nil
}
