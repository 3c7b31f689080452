package template

import (
	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/resolve"
)

// Template is one pair template configuration.
type Template struct {
	ID            string            `yaml:"id" json:"id"`
	Name          string            `yaml:"name,omitempty" json:"name,omitempty"`
	CanvasSize    Size              `yaml:"canvasSize" json:"canvasSize"`
	Background    Background        `yaml:"backgroundLayer" json:"backgroundLayer"`
	ImageSlots    []ImageSlot       `yaml:"imageSlots,omitempty" json:"imageSlots,omitempty"`
	TextFields    []TextField       `yaml:"textFields,omitempty" json:"textFields,omitempty"`
	DynamicShapes []DynamicShape    `yaml:"dynamicShapes,omitempty" json:"dynamicShapes,omitempty"`
	OverlayImages []OverlayImage    `yaml:"overlayImages,omitempty" json:"overlayImages,omitempty"`
	Palette       map[string]string `yaml:"colorPalette,omitempty" json:"colorPalette,omitempty"`
	Zones         []Zone            `yaml:"zones,omitempty" json:"zones,omitempty"`
}

// Size is the fixed raster size of the canvas in canvas units.
type Size struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Kind names a layer kind.
type Kind string

const (
	KindBackground Kind = "background"
	KindImageSlot  Kind = "imageSlot"
	KindTextField  Kind = "textField"
	KindShape      Kind = "dynamicShape"
	KindOverlay    Kind = "overlayImage"
	KindSticker    Kind = "sticker"
)

// Zone is a named editing region that a collaborator may claim.
type Zone struct {
	ID     string   `yaml:"id" json:"id"`
	Rect   ZoneRect `yaml:"rect" json:"rect"`
	Layers []string `yaml:"layers,omitempty" json:"layers,omitempty"`
}

// ZoneRect is a zone's canvas-space rectangle.
type ZoneRect struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Rect converts to a pairkit.Rect.
func (r ZoneRect) Rect() pairkit.Rect {
	return pairkit.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// LayerRef describes one template layer for lookups.
type LayerRef struct {
	ID        string
	Kind      Kind
	Transform resolve.Transform
	Zone      string
}

// Layers returns every template layer except the background, in paint order
// within each kind: image slots, text fields, dynamic shapes, overlays.
func (t *Template) Layers() []LayerRef {
	var out []LayerRef
	for _, s := range t.ImageSlots {
		out = append(out, LayerRef{ID: s.ID, Kind: KindImageSlot, Transform: s.Transform, Zone: s.Zone})
	}
	for _, f := range t.TextFields {
		out = append(out, LayerRef{ID: f.ID, Kind: KindTextField, Transform: f.Transform, Zone: f.Zone})
	}
	for _, s := range t.DynamicShapes {
		out = append(out, LayerRef{ID: s.ID, Kind: KindShape, Transform: s.Transform, Zone: s.Zone})
	}
	for _, o := range t.OverlayImages {
		out = append(out, LayerRef{ID: o.ID, Kind: KindOverlay, Transform: o.Transform, Zone: o.Zone})
	}
	return out
}

// Layer looks up a layer by id.
func (t *Template) Layer(id string) (LayerRef, bool) {
	for _, l := range t.Layers() {
		if l.ID == id {
			return l, true
		}
	}
	return LayerRef{}, false
}

// ImageSlot returns the slot with the given id.
func (t *Template) ImageSlot(id string) (*ImageSlot, bool) {
	for i := range t.ImageSlots {
		if t.ImageSlots[i].ID == id {
			return &t.ImageSlots[i], true
		}
	}
	return nil, false
}

// TextField returns the text field with the given id.
func (t *Template) TextField(id string) (*TextField, bool) {
	for i := range t.TextFields {
		if t.TextFields[i].ID == id {
			return &t.TextFields[i], true
		}
	}
	return nil, false
}

// ZoneOf returns the zone a layer belongs to, or "" for none. A zone that
// lists the layer wins; then the layer's own zone field; then the first zone
// whose rectangle contains the centre of the layer's bounds.
func (t *Template) ZoneOf(layerID string) string {
	if t == nil || layerID == "" {
		return ""
	}
	for _, z := range t.Zones {
		for _, id := range z.Layers {
			if id == layerID {
				return z.ID
			}
		}
	}
	l, ok := t.Layer(layerID)
	if !ok {
		return ""
	}
	if l.Zone != "" {
		return l.Zone
	}
	return t.ZoneAt(l.Transform.Bounds().Center())
}

// ZoneAt returns the first zone containing the canvas point p, or "".
func (t *Template) ZoneAt(p pairkit.Point) string {
	for _, z := range t.Zones {
		if z.Rect.Rect().Contains(p) {
			return z.ID
		}
	}
	return ""
}

// ZoneIDs returns the declared zone ids in order.
func (t *Template) ZoneIDs() []string {
	ids := make([]string, len(t.Zones))
	for i, z := range t.Zones {
		ids[i] = z.ID
	}
	return ids
}
