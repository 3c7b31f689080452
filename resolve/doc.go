// Package resolve turns declarative template values into concrete numbers:
// color references into colors, fit modes into placement rectangles, layer
// transforms into matrices, and gradient descriptors into endpoints.
//
// Every function is pure and total. Malformed input degrades to a neutral
// default (a role color, a zero rectangle, an identity transform) instead of
// returning an error, so a single bad template value never blanks a canvas.
package resolve
