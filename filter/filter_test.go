package filter

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/pairkit"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	src := solid(4, 4, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	before := append([]uint8(nil), src.Pix...)
	out := Apply(src, []Spec{{Name: Invert}, {Name: Blur, Amount: 1}})
	if out == src {
		t.Fatal("Apply returned its input")
	}
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("Apply modified its input")
		}
	}
}

func TestApplyFilters(t *testing.T) {
	base := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	tests := []struct {
		name  string
		specs []Spec
		check func(c color.RGBA) bool
	}{
		{"empty chain", nil, func(c color.RGBA) bool { return c == base }},
		{"invert", []Spec{{Name: Invert}}, func(c color.RGBA) bool {
			return c == color.RGBA{R: 55, G: 155, B: 205, A: 255}
		}},
		{"grayscale", []Spec{{Name: Grayscale}}, func(c color.RGBA) bool {
			return c.R == c.G && c.G == c.B
		}},
		{"desaturate fully", []Spec{{Name: Saturation, Amount: -1}}, func(c color.RGBA) bool {
			return absDiff(c.R, c.G) <= 1 && absDiff(c.G, c.B) <= 1
		}},
		{"brighten", []Spec{{Name: Brightness, Amount: 0.5}}, func(c color.RGBA) bool {
			return c.R > base.R && c.G > base.G && c.B > base.B
		}},
		{"gamma identity", []Spec{{Name: Gamma, Amount: 1}}, func(c color.RGBA) bool {
			return absDiff(c.R, base.R) <= 1 && absDiff(c.G, base.G) <= 1
		}},
		{"gamma non-positive skipped", []Spec{{Name: Gamma, Amount: 0}}, func(c color.RGBA) bool { return c == base }},
		{"unknown skipped", []Spec{{Name: "vignette", Amount: 1}}, func(c color.RGBA) bool { return c == base }},
		{"case insensitive", []Spec{{Name: "INVERT"}}, func(c color.RGBA) bool { return c.R == 55 }},
		{"order matters", []Spec{{Name: Invert}, {Name: Grayscale}}, func(c color.RGBA) bool {
			return c.R == c.G && c.R > 100
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Apply(solid(3, 3, base), tt.specs)
			if got := out.RGBAAt(1, 1); !tt.check(got) {
				t.Errorf("pixel = %v", got)
			}
		})
	}
}

func TestApplyKeepsPremultipliedInvariant(t *testing.T) {
	src := solid(3, 3, color.RGBA{R: 60, G: 30, B: 10, A: 128})
	for _, name := range []string{Invert, Brightness, Sepia, Sharpen, Hue} {
		out := Apply(src, []Spec{{Name: name, Amount: 0.8}})
		for i := 0; i < len(out.Pix); i += 4 {
			a := out.Pix[i+3]
			if out.Pix[i] > a || out.Pix[i+1] > a || out.Pix[i+2] > a {
				t.Fatalf("%s: pixel %v exceeds alpha", name, out.Pix[i:i+4])
			}
		}
	}
	// Invert on half-transparent red keeps alpha and inverts the visible color.
	red := solid(1, 1, color.RGBA{R: 128, A: 128})
	got := Apply(red, []Spec{{Name: Invert}}).RGBAAt(0, 0)
	if got.A != 128 || got.R > 2 || got.G < 126 {
		t.Errorf("inverted half red = %v", got)
	}
}

func TestApplyNormalizesBounds(t *testing.T) {
	src := solid(6, 6, color.RGBA{A: 255}).SubImage(image.Rect(2, 2, 5, 6))
	out := Apply(src, nil)
	if out.Rect != image.Rect(0, 0, 3, 4) {
		t.Errorf("bounds = %v, want (0,0)-(3,4)", out.Rect)
	}
}

func TestBlurSpreadsEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 9))
	img.SetRGBA(4, 4, color.RGBA{R: 255, A: 255})
	out := Apply(img, []Spec{{Name: Blur, Amount: 2}})
	if out.RGBAAt(4, 4).A == 255 || out.RGBAAt(3, 4).A == 0 {
		t.Errorf("blur did not spread: centre %v, neighbour %v", out.RGBAAt(4, 4), out.RGBAAt(3, 4))
	}
}

func TestKeyAndValidate(t *testing.T) {
	specs := []Spec{{Name: "Blur", Amount: 2.5}, {Name: Sepia}}
	if got := Key(specs); got != "blur(2.5),sepia(0)" {
		t.Errorf("Key() = %q", got)
	}
	if err := Validate(specs); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := Validate([]Spec{{Name: "vignette"}}); err == nil {
		t.Error("Validate should reject unknown filters")
	}
}

func TestShadow(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 3; y < 7; y++ {
		for x := 3; x < 7; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	black := pairkit.RGBA{A: 0.5}

	sharp, off := Shadow(src, 0, black)
	if off != (image.Point{}) || sharp.Rect != src.Rect {
		t.Fatalf("unblurred shadow: offset %v, bounds %v", off, sharp.Rect)
	}
	if got := sharp.RGBAAt(4, 4); got != black.Premultiplied() {
		t.Errorf("silhouette pixel = %v, want half black", got)
	}
	if got := sharp.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", got)
	}

	soft, off := Shadow(src, 3, black)
	if off != image.Pt(-4, -4) || soft.Rect.Dx() != 18 {
		t.Fatalf("blurred shadow: offset %v, bounds %v", off, soft.Rect)
	}
	// Pixel (2,2) in source space lies just outside the square.
	if soft.RGBAAt(2-off.X, 2-off.Y).A == 0 {
		t.Error("blur should bleed outside the silhouette")
	}
}

func TestShadowFromAlpha(t *testing.T) {
	a := image.NewAlpha(image.Rect(5, 5, 8, 8))
	a.SetAlpha(6, 6, color.Alpha{A: 255})
	img, _ := Shadow(a, 0, pairkit.RGB(1, 0, 0))
	if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("alpha source pixel = %v", got)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
