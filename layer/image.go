package layer

import (
	"image"
	"math"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/template"
)

// MinStickerSize is the smallest width and height a sticker box may have
// after a transform ends.
const MinStickerSize = 20

// NeutralColor fills slots that have neither content nor a placeholder,
// and slots whose composite is still pending.
var NeutralColor = pairkit.MustHex("#E5E7EB")

// Overlay renders a decorative image fitted into its box. Without an image
// it renders nothing.
func Overlay(o *template.OverlayImage, img image.Image) Primitive {
	if o == nil || img == nil || img.Bounds().Empty() {
		return nil
	}
	w, h := o.Transform.Size()
	box := pairkit.Rect{Width: w, Height: h}
	pic := &Picture{
		ID:      o.ID,
		Image:   img,
		Frame:   o.Transform.Matrix(),
		Clip:    box,
		Opacity: template.Opacity(o.Opacity, 1),
		Blend:   blendMode(o.BlendMode),
	}
	if o.Fit == resolve.FitTile {
		b := img.Bounds()
		pic.Place = pairkit.Translate(-float64(b.Min.X), -float64(b.Min.Y))
		pic.Repeat = true
		return pic
	}
	place, ok := fitted(img, w, h, o.Fit)
	if !ok {
		return nil
	}
	pic.Place = place
	return pic
}

// FlipMatrix mirrors a w x h box in place: a negative scale plus a
// translation by the flipped axis length, so the box keeps its position.
func FlipMatrix(w, h float64, flipX, flipY bool) pairkit.Matrix {
	m := pairkit.Identity()
	if flipX {
		m = m.Multiply(pairkit.Translate(w, 0)).Multiply(pairkit.Scale(-1, 1))
	}
	if flipY {
		m = m.Multiply(pairkit.Translate(0, h)).Multiply(pairkit.Scale(1, -1))
	}
	return m
}

// Sticker renders a user-placed image stretched over its box.
func Sticker(s *template.Sticker, img image.Image) Primitive {
	if s == nil || img == nil || img.Bounds().Empty() {
		return nil
	}
	w, h := s.Box.Size()
	if w == 0 || h == 0 {
		return nil
	}
	place, _ := fitted(img, w, h, resolve.FitFill)
	return &Picture{
		ID:      s.ID,
		Image:   img,
		Frame:   s.Box.Matrix(),
		Place:   FlipMatrix(w, h, s.FlipX, s.FlipY).Multiply(place),
		Clip:    pairkit.Rect{Width: w, Height: h},
		Opacity: template.Opacity(s.Opacity, 1),
	}
}

// Slot is a rendered image slot.
type Slot struct {
	ID     string
	Matrix pairkit.Matrix
	Width  float64
	Height float64

	// Exactly one of Tile and Placeholder is drawn; with neither the slot
	// is filled with NeutralColor.
	Tile        *compositor.Tile
	Placeholder image.Image

	// Outline is the mask outline in slot units, used for the border and
	// to clip the placeholder.
	Outline *pairkit.Path
	Border  *SlotBorder
	Shadow  *Shadow
}

// SlotBorder strokes the slot outline.
type SlotBorder struct {
	Width float64
	Color pairkit.RGBA
}

// Neutral reports whether the slot paints the flat neutral rectangle.
func (s *Slot) Neutral() bool { return s.Tile == nil && s.Placeholder == nil }

func (s *Slot) Paint(dc *pairkit.Context) {
	dc.Push()
	defer dc.Pop()
	dc.Transform(s.Matrix)
	paintEffects(dc, s.Shadow, 1, pairkit.BlendNormal, s.paintContent)
	if b := s.Border; b != nil {
		dc.SetStroke(pairkit.DefaultStroke().WithWidth(b.Width).WithJoin(pairkit.LineJoinRound))
		dc.SetStrokeColor(b.Color)
		dc.AppendPath(s.Outline)
		dc.Stroke()
	}
}

func (s *Slot) paintContent(dc *pairkit.Context) {
	switch {
	case s.Tile != nil && s.Tile.Image != nil && !s.Tile.Image.Rect.Empty():
		r := s.Tile.Image.Rect
		dc.DrawImage(s.Tile.Image, pairkit.Scale(s.Width/float64(r.Dx()), s.Height/float64(r.Dy())))
	case s.Placeholder != nil:
		place, ok := fitted(s.Placeholder, s.Width, s.Height, resolve.FitCover)
		if !ok {
			return
		}
		dc.Push()
		dc.AppendPath(s.Outline)
		dc.Clip()
		dc.DrawImage(s.Placeholder, place)
		dc.Pop()
	default:
		dc.SetFillColor(NeutralColor)
		dc.DrawRectangle(0, 0, s.Width, s.Height)
		dc.Fill()
	}
}

func (s *Slot) Bounds() pairkit.Rect {
	return pairkit.Rect{Width: s.Width, Height: s.Height}.Transform(s.Matrix)
}

func (s *Slot) LayerID() string { return s.ID }

// ImageSlot renders a slot. tile is the slot's composite, nil when no
// content is assigned or its composite is pending; placeholder is the
// decoded placeholder image, if any.
func ImageSlot(slot *template.ImageSlot, tile *compositor.Tile, placeholder image.Image, palette map[string]string) Primitive {
	if slot == nil {
		return nil
	}
	w, h := slot.Transform.Size()
	s := &Slot{
		ID:      slot.ID,
		Matrix:  slot.Transform.Matrix(),
		Width:   w,
		Height:  h,
		Tile:    tile,
		Outline: compositor.Outline(slot.Mask, w, h),
		Shadow:  resolveShadow(slot.Shadow, palette),
	}
	if tile == nil && placeholder != nil && !placeholder.Bounds().Empty() {
		s.Placeholder = placeholder
	}
	if b := slot.Border; b != nil && b.Width > 0 && !math.IsInf(b.Width, 1) {
		col := resolve.Color(b.Color, palette, resolve.RoleStroke)
		col.A *= template.Opacity(b.Opacity, 1)
		s.Border = &SlotBorder{Width: b.Width, Color: col}
	}
	return s
}
