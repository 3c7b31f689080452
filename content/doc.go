// Package content loads and decodes the raster images a pair template
// references: slot photos, overlay images, stickers, background images and
// image masks.
//
// A Loader resolves an opaque content reference to a decoded image.
// FSLoader reads from a file system, BytesLoader and ImageLoader serve
// in-memory content, and Chain tries several loaders in turn. Decode sniffs
// the encoded bytes, so a reference's extension never has to match its
// format.
//
// Arena owns decoded images for one document. Lookups are served from
// memory, concurrent loads of the same reference are collapsed, and Retain
// drops every image no visible layer references any longer:
//
//	arena := content.NewArena(content.NewDirLoader("assets"), 0)
//	_ = arena.Prefetch(ctx, refs)
//	img, ok := arena.Lookup("left.jpg")
//	arena.Retain(visibleRefs)
package content
