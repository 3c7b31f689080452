package pairkit

import (
	"image"
	"image/color"
)

// Mask represents an alpha mask for compositing operations.
// Values range from 0 (fully transparent) to 255 (fully opaque).
// Mask implements image.Image so it can be handed to golang.org/x/image/draw
// as a source or destination mask.
type Mask struct {
	width  int
	height int
	data   []uint8
}

// NewMask creates a new empty mask with the given dimensions.
// All values are initialized to 0 (fully transparent).
func NewMask(width, height int) *Mask {
	width, height = max(width, 0), max(height, 0)
	return &Mask{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// NewMaskFromAlpha creates a mask from an image's alpha channel.
func NewMaskFromAlpha(img image.Image) *Mask {
	b := img.Bounds()
	mask := NewMask(b.Dx(), b.Dy())
	if a, ok := img.(*image.Alpha); ok {
		for y := 0; y < mask.height; y++ {
			copy(mask.data[y*mask.width:(y+1)*mask.width], a.Pix[(y)*a.Stride:])
		}
		return mask
	}
	for y := 0; y < mask.height; y++ {
		for x := 0; x < mask.width; x++ {
			_, _, _, a := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
			mask.data[y*mask.width+x] = uint8(a >> 8)
		}
	}
	return mask
}

// NewMaskFromLuminance creates a mask from an image's luminance multiplied
// by its alpha (white opaque pixels are fully visible).
func NewMaskFromLuminance(img image.Image) *Mask {
	b := img.Bounds()
	mask := NewMask(b.Dx(), b.Dy())
	for y := 0; y < mask.height; y++ {
		for x := 0; x < mask.width; x++ {
			// Premultiplied components already carry alpha.
			r, g, bl, _ := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
			lum := (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(bl)) / 65535
			mask.data[y*mask.width+x] = uint8(clamp255(lum*255 + 0.5))
		}
	}
	return mask
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// Value returns the mask value at (x, y).
// Returns 0 for coordinates outside the mask bounds.
func (m *Mask) Value(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set sets the mask value at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, value uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = value
}

// Fill fills the entire mask with a value.
func (m *Mask) Fill(value uint8) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Invert inverts all mask values (255 - value).
func (m *Mask) Invert() {
	for i := range m.data {
		m.data[i] = 255 - m.data[i]
	}
}

// Intersect multiplies m by other in place. Pixels outside other become 0.
func (m *Mask) Intersect(other *Mask) {
	for y := 0; y < m.height; y++ {
		row := m.data[y*m.width : (y+1)*m.width]
		for x := range row {
			row[x] = mulDiv255(row[x], other.Value(x, y))
		}
	}
}

// ScaleBy multiplies every value by f in [0, 1].
func (m *Mask) ScaleBy(f float64) {
	f = clamp01(f)
	if f == 1 {
		return
	}
	for i, v := range m.data {
		m.data[i] = uint8(float64(v)*f + 0.5)
	}
}

// Clone creates a copy of the mask.
func (m *Mask) Clone() *Mask {
	clone := NewMask(m.width, m.height)
	copy(clone.data, m.data)
	return clone
}

// Data returns the underlying mask data slice.
func (m *Mask) Data() []uint8 {
	return m.data
}

// ColorModel implements image.Image.
func (m *Mask) ColorModel() color.Model { return color.AlphaModel }

// Bounds implements image.Image.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// At implements image.Image.
func (m *Mask) At(x, y int) color.Color {
	return color.Alpha{A: m.Value(x, y)}
}

// mulDiv255 computes a*b/255 with rounding.
func mulDiv255(a, b uint8) uint8 {
	t := uint16(a)*uint16(b) + 128
	return uint8((t + t>>8) >> 8)
}
