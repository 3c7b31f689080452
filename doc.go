// Package pairkit renders pair templates: declarative illustration layouts with
// named slots for photos and text that several people fill in together.
//
// # Overview
//
// The root package holds the raster core every other package draws with: a
// drawing Context over an *image.RGBA, paths, brushes, alpha masks and blend
// modes. Paths are rasterized with golang.org/x/image/vector and images are
// resampled with golang.org/x/image/draw.
//
//	dc := pairkit.NewContext(600, 400)
//	dc.SetFillColor(pairkit.MustHex("#F4E1D2"))
//	dc.AppendPath(pairkit.BuildPath().RoundRect(20, 20, 560, 360, 24).Build())
//	dc.Fill()
//
// The engine itself lives in sub-packages:
//   - resolve: color references and image fit math
//   - template: template configuration documents
//   - compositor: masked image slot compositing and its cache/queue
//   - layer: one renderer per layer kind
//   - scene: document state, scene assembly and export
//   - collab: presence, zone claims and conflict notices
//   - interact: gesture to transform conversion and hit testing
//   - editor: the owning document layer tying the above together
//
// # Coordinate System
//
// Canvas coordinates: origin at top-left, X right, Y down, units are canvas
// pixels. Angles passed to Context are radians; template documents use degrees.
package pairkit

// Version is the current version of the library.
const Version = "0.4.0"
