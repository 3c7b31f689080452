// Package layer turns template layers and their resolved content into
// paintable primitives.
//
// Renderers are pure: the same layer, content and palette always yield a
// primitive that paints the same pixels. Configuration defects never fail
// a render. An unresolvable color falls back to its role default, and a
// shape without geometry or an overlay without an image yields no
// primitive at all.
package layer
