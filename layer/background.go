package layer

import (
	"image"

	"github.com/gogpu/pairkit"
	"github.com/gogpu/pairkit/resolve"
	"github.com/gogpu/pairkit/template"
)

// BackgroundID is the layer id of the background.
const BackgroundID = "background"

// Background renders the background across the whole canvas. img is the
// decoded background image for image backgrounds. Anything that cannot be
// drawn falls back to opaque white; the background is never transformed.
func Background(bg *template.Background, canvas template.Size, palette map[string]string, img image.Image) Primitive {
	w, h := canvas.Width, canvas.Height
	area := pairkit.BuildPath().Rect(0, 0, w, h).Build()
	fill := func(b pairkit.Brush) *Vector {
		return &Vector{ID: BackgroundID, Matrix: pairkit.Identity(), Path: area, Fill: b, Opacity: 1}
	}
	white := fill(pairkit.Solid(pairkit.White))
	if bg == nil {
		return white
	}

	switch bg.Type {
	case template.BackgroundSolid:
		return fill(pairkit.Solid(resolve.Color(bg.Color, palette, resolve.RoleBackground)))

	case template.BackgroundGradient:
		if b := gradientBrush(bg.Gradient, w, h, palette); b != nil {
			return fill(b)
		}

	case template.BackgroundImage:
		if img == nil || img.Bounds().Empty() {
			break
		}
		box := pairkit.Rect{Width: w, Height: h}
		if bg.Fit == resolve.FitTile {
			pic := &Picture{ID: BackgroundID, Image: img, Frame: pairkit.Identity(), Clip: box, Repeat: true, Opacity: 1,
				Place: pairkit.Translate(-float64(img.Bounds().Min.X), -float64(img.Bounds().Min.Y))}
			return &Group{ID: BackgroundID, Items: []Primitive{white, pic}}
		}
		place, ok := fitted(img, w, h, bg.Fit)
		if !ok {
			break
		}
		pic := &Picture{ID: BackgroundID, Image: img, Frame: pairkit.Identity(), Place: place, Clip: box, Opacity: 1}
		return &Group{ID: BackgroundID, Items: []Primitive{white, pic}}
	}
	return white
}

func gradientBrush(g *template.Gradient, w, h float64, palette map[string]string) pairkit.Brush {
	if g == nil || len(g.Stops) == 0 {
		return nil
	}
	add := func(fn func(float64, pairkit.RGBA)) {
		for _, s := range g.Stops {
			fn(s.Offset, resolve.Color(s.Color, palette, resolve.RoleBackground))
		}
	}
	if g.Type == template.GradientRadial {
		c, r := resolve.RadialGradient(w, h)
		rg := pairkit.NewRadialGradient(c.X, c.Y, 0, r)
		add(func(o float64, col pairkit.RGBA) { rg.AddColorStop(o, col) })
		return rg
	}
	start, end := resolve.LinearGradientPoints(g.Angle, w, h)
	lg := pairkit.NewLinearGradient(start.X, start.Y, end.X, end.Y)
	add(func(o float64, col pairkit.RGBA) { lg.AddColorStop(o, col) })
	return lg
}
