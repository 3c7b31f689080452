package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/filter"
	"github.com/gogpu/pairkit/resolve"
)

var (
	// ErrNoSource is returned when Composite is called without an image.
	// Slots without content render their placeholder instead.
	ErrNoSource = errors.New("compositor: no source image")

	// ErrTileTooLarge is returned for slots whose tile would exceed MaxTilePixels.
	ErrTileTooLarge = errors.New("compositor: tile too large")
)

// MaxTilePixels bounds the pixel count of a single tile.
const MaxTilePixels = 8192 * 8192

// Tile is a composited slot raster. Image covers Width x Height slot units
// at one pixel per unit, rounded up.
type Tile struct {
	Image  *image.RGBA
	Width  float64
	Height float64
	Key    string
}

// Matrix maps tile pixels into slot-local units.
func (t *Tile) Matrix() pairkit.Matrix {
	b := t.Image.Rect
	if b.Empty() {
		return pairkit.Identity()
	}
	return pairkit.Scale(t.Width/float64(b.Dx()), t.Height/float64(b.Dy()))
}

// Placement returns the matrix mapping source pixels (0..srcW, 0..srcH) to
// slot-local units: fitted into the slot, then panned, scaled, rotated and
// flipped about the slot centre. p is expected to be normalized.
func Placement(srcW, srcH float64, p Params) pairkit.Matrix {
	w, h := p.Width, p.Height
	fit := resolve.ImageFit(srcW, srcH, w, h, p.Fit)
	if fit.Empty() {
		return pairkit.Scale(0, 0)
	}
	cx, cy := w/2, h/2
	fx, fy := p.Scale, p.Scale
	if p.FlipX {
		fx = -fx
	}
	if p.FlipY {
		fy = -fy
	}
	return pairkit.Translate(cx+p.PanX*cx, cy+p.PanY*cy).
		Multiply(pairkit.Rotate(pairkit.Radians(p.Rotation))).
		Multiply(pairkit.Scale(fx, fy)).
		Multiply(pairkit.Translate(-cx, -cy)).
		Multiply(pairkit.Translate(fit.X, fit.Y)).
		Multiply(pairkit.Scale(fit.Width/srcW, fit.Height/srcH))
}

// Composite renders one slot tile. Filters run on the source first, the
// filtered image is placed per Placement, and the mask stencil clips the
// result last. maskImg is only consulted for image masks.
func Composite(ctx context.Context, src, maskImg image.Image, p Params) (*Tile, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrNoSource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = p.normalized()
	if !(p.Width > 0) || !(p.Height > 0) || math.IsInf(p.Width, 1) || math.IsInf(p.Height, 1) {
		return nil, fmt.Errorf("compositor: slot %gx%g: %w", p.Width, p.Height, pairkit.ErrInvalidSize)
	}
	tw, th := int(math.Ceil(p.Width)), int(math.Ceil(p.Height))
	if tw*th > MaxTilePixels {
		return nil, fmt.Errorf("compositor: %dx%d: %w", tw, th, ErrTileTooLarge)
	}

	img := src
	if len(p.Filters) > 0 {
		img = filter.Apply(src, p.Filters)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	sb := img.Bounds()
	place := Placement(float64(sb.Dx()), float64(sb.Dy()), p).
		Multiply(pairkit.Translate(-float64(sb.Min.X), -float64(sb.Min.Y)))

	dc := pairkit.NewContext(tw, th)
	dc.ClipMask(Stencil(p.Mask, maskImg, tw, th, p.Width, p.Height, p.Opacity))
	dc.Scale(float64(tw)/p.Width, float64(th)/p.Height)
	dc.DrawImage(img, place)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tile{Image: dc.Image(), Width: p.Width, Height: p.Height, Key: p.Key()}, nil
}
