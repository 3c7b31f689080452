// Package editor owns the document of one participant.
//
// An Editor applies local edits to its scene.Document, forwards them to an
// optional collaboration session and decides which remote edits reach the
// document. A local edit of a layer in a zone held by someone else is
// refused with collab.ErrZoneOwned and raises a conflict; the owner
// refuses the same edit arriving from a peer, so every participant keeps
// the same document. Conflicts never change the document.
package editor
