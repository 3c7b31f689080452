// Package compositor produces the masked, filtered and transformed tile an
// image slot displays.
//
// A tile is computed in four steps: the source is filtered, fitted into
// the slot, moved by the user's pan, scale, rotation and flips about the
// slot centre, and finally cut by the slot's mask stencil with the slot
// opacity folded in. Identical parameters always produce identical tiles,
// so tiles are cached by Params.Key.
//
// Queue runs compositing off the render path: each slot has at most one
// job in flight, a newer request supersedes an older one, and a slot whose
// tile is not ready renders a neutral placeholder instead of stale pixels.
package compositor
