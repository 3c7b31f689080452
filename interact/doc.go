// Package interact turns pointer gestures into document changes.
//
// While a gesture runs, the composite tile is moved as one unit by a
// preview transform. When the gesture ends its delta is folded into the
// slot adjustment and the preview resets to identity, so the compositor
// stays the only source of slot pixels.
package interact
