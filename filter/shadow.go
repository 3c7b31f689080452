package filter

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"

	"github.com/gogpu/pairkit"
)

// Shadow returns a blurred silhouette of src's alpha channel painted in
// col, and the position of the silhouette's top-left corner relative to
// src's. The silhouette is padded so the blur is never cut off; place it
// at the returned offset plus the shadow offset. A glow is a shadow placed
// without offset.
func Shadow(src image.Image, radius float64, col pairkit.RGBA) (*image.RGBA, image.Point) {
	if !(radius > 0) {
		radius = 0
	}
	radius = math.Min(radius, MaxBlurRadius)
	margin := int(math.Ceil(radius))
	if margin > 0 {
		margin++
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*margin, b.Dy()+2*margin))

	pc := col.Premultiplied()
	tint := [4]uint32{uint32(pc.R), uint32(pc.G), uint32(pc.B), uint32(pc.A)}
	alphaAt := alphaReader(src)
	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[(y+margin)*dst.Stride+margin*4:]
		for x := 0; x < b.Dx(); x++ {
			a := alphaAt(b.Min.X+x, b.Min.Y+y)
			if a == 0 {
				continue
			}
			for c := range 4 {
				row[x*4+c] = uint8((tint[c]*a + 127) / 255)
			}
		}
	}
	if radius > 0 {
		dst = blur.Gaussian(dst, radius)
		clampPremultiplied(dst)
	}
	return dst, image.Pt(-margin, -margin)
}

func alphaReader(src image.Image) func(x, y int) uint32 {
	switch s := src.(type) {
	case *image.RGBA:
		return func(x, y int) uint32 { return uint32(s.Pix[s.PixOffset(x, y)+3]) }
	case *image.Alpha:
		return func(x, y int) uint32 { return uint32(s.Pix[s.PixOffset(x, y)]) }
	}
	return func(x, y int) uint32 {
		_, _, _, a := src.At(x, y).RGBA()
		return a >> 8
	}
}
