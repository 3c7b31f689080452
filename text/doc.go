// Package text lays out and outlines the text of template text fields.
//
// The pipeline separates concerns the same way at every size:
//
//   - Registry: font families, each with up to four variants
//     (regular, bold, italic, bold italic). DefaultRegistry serves the Go
//     fonts and falls back to them for unknown families.
//   - Font: one parsed font file. Shaping goes through
//     github.com/go-text/typesetting (kerning, ligatures); outlines come
//     from golang.org/x/image/font/sfnt.
//   - Layout: shaped, wrapped and aligned lines inside a box.
//
// Glyphs are emitted as vector paths, so text follows any transform of the
// drawing context exactly:
//
//	f := text.DefaultRegistry().Font("Go", "bold", "normal")
//	l := text.NewLayout(f, "Best Friends", text.Options{Size: 24, Width: 200, Align: text.AlignCenter})
//	dc.AppendPath(l.Path())
//	dc.Fill()
package text
