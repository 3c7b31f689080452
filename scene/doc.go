// Package scene assembles a template and a document into an ordered tree of
// paintable primitives and exports it as an encoded image.
//
// Layers are ordered by kind and then by declaration order:
//
//	background
//	dynamic shapes painted under content (the default)
//	image slots
//	text fields
//	dynamic shapes painted over content
//	overlay images
//	stickers
//
// Render is a pure function of its inputs. Assembler wraps it with the
// stateful parts: the decoded image arena, the tile cache and the
// background compositing queue.
package scene
