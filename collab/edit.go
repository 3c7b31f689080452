package collab

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/pairkit/compositor"
	"github.com/gogpu/pairkit/template"
)

// EditKind names a document mutation.
type EditKind string

const (
	EditText           EditKind = "text"
	EditSlotImage      EditKind = "slotImage"
	EditSlotAdjustment EditKind = "slotAdjustment"
	EditSticker        EditKind = "sticker"
	EditRemoveSticker  EditKind = "removeSticker"
)

// ErrRejected is returned by an EditSink that refuses an edit.
var ErrRejected = errors.New("collab: edit rejected")

// Edit is a proposed document change. Session fills in the identity and
// ordering fields when the edit is proposed.
type Edit struct {
	ID      string   `json:"id"`
	Kind    EditKind `json:"kind"`
	LayerID string   `json:"layerId"`
	Zone    string   `json:"zone,omitempty"`

	// Text is the new field value; nil clears it.
	Text *string `json:"text,omitempty"`

	// ImageRef is the new slot content; "" clears it.
	ImageRef   string                 `json:"imageRef,omitempty"`
	Adjustment *compositor.Adjustment `json:"adjustment,omitempty"`
	Sticker    *template.Sticker      `json:"sticker,omitempty"`

	User  string    `json:"user"`
	Clock uint64    `json:"clock"`
	Wall  time.Time `json:"wall"`
}

// Validate reports whether the edit carries what its kind needs.
func (e *Edit) Validate() error {
	if e.LayerID == "" {
		return errors.New("edit has no layer")
	}
	switch e.Kind {
	case EditText, EditSlotImage, EditRemoveSticker:
		return nil
	case EditSlotAdjustment:
		if e.Adjustment == nil {
			return errors.New("slot adjustment edit has no adjustment")
		}
		return nil
	case EditSticker:
		if e.Sticker == nil || e.Sticker.ID != e.LayerID {
			return errors.New("sticker edit has no matching sticker")
		}
		return nil
	}
	return fmt.Errorf("unknown edit kind %q", e.Kind)
}

func (e *Edit) stamp() stamp {
	return stamp{wall: e.Wall, clock: e.Clock, user: e.User}
}

// EditSink owns the document. It decides whether a remote edit is applied;
// a rejection is reported with ErrRejected.
type EditSink interface {
	ApplyRemoteEdit(e Edit) error
}

// EditSinkFunc adapts a function to EditSink.
type EditSinkFunc func(e Edit) error

// ApplyRemoteEdit calls f.
func (f EditSinkFunc) ApplyRemoteEdit(e Edit) error { return f(e) }

// zoneLog is the edit log of one zone. Edits of a layer are merged
// last-write-wins against the newest edit of the same layer.
type zoneLog struct {
	capacity int
	entries  []Edit
	latest   map[string]Edit
}

func newZoneLog(capacity int) *zoneLog {
	return &zoneLog{capacity: capacity, latest: make(map[string]Edit)}
}

// last returns the newest edit of a layer.
func (l *zoneLog) last(layerID string) (Edit, bool) {
	e, ok := l.latest[layerID]
	return e, ok
}

// append records e. It reports false, and records nothing, when a newer
// edit of the same layer is already known.
func (l *zoneLog) append(e Edit) bool {
	if prev, ok := l.latest[e.LayerID]; ok && !e.stamp().after(prev.stamp()) {
		return false
	}
	l.latest[e.LayerID] = e
	l.entries = append(l.entries, e)
	if n := len(l.entries) - l.capacity; n > 0 {
		l.entries = append(l.entries[:0], l.entries[n:]...)
	}
	return true
}
