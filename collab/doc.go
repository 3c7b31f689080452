// Package collab keeps several editors of one document aware of each other.
//
// A Session tracks who is present, which editing zone each participant has
// claimed and whether the local user is working inside someone else's
// zone. Zone ownership is advisory: conflicts are reported, never
// enforced, and no edit is ever discarded silently.
//
// The transport is external and reached through Channel. Events may be
// delivered more than once and independent events may arrive out of
// order; events about the same zone are ordered last-write-wins by wall
// clock, then by Lamport clock, then by user id.
//
// A nil *Session is a valid solo session: every method is a no-op and
// editing works without collaboration.
package collab
