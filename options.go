package pairkit

import "image"

// ContextOption configures a Context during creation.
//
// Example:
//
//	// Draw into a fresh transparent canvas
//	dc := pairkit.NewContext(800, 600)
//
//	// Draw into an existing image
//	dc := pairkit.NewContext(800, 600, pairkit.WithImage(img))
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	image *image.RGBA
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{}
}

// WithImage makes the Context draw into img instead of allocating a canvas.
// The image bounds must start at the origin; other images are ignored.
func WithImage(img *image.RGBA) ContextOption {
	return func(o *contextOptions) {
		if img != nil && img.Rect.Min == (image.Point{}) {
			o.image = img
		}
	}
}

