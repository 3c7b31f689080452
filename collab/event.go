package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType names a collaboration event.
type EventType string

const (
	// EventJoin announces a participant.
	EventJoin EventType = "join"
	// EventAck is the channel acknowledging a participant's join.
	EventAck EventType = "ack"
	// EventPresence carries a participant's cursor and selection.
	EventPresence EventType = "presence"
	// EventClaim claims Zone for the sender and releases any zone the
	// sender held before. An empty Zone only releases.
	EventClaim EventType = "claim"
	// EventEdit carries one document edit.
	EventEdit EventType = "edit"
	// EventLeave announces that a participant is leaving.
	EventLeave EventType = "leave"
)

// ErrMalformedEvent is returned for events that cannot be applied.
var ErrMalformedEvent = errors.New("collab: malformed event")

// Cursor is a canvas-space pointer position.
type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is one message on a Channel. Events are identified by ID; a
// redelivered event is ignored.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	User      User      `json:"user"`

	// Wall and Clock order events about the same zone.
	Wall  time.Time `json:"wall"`
	Clock uint64    `json:"clock"`

	Zone    string  `json:"zone,omitempty"`
	LayerID string  `json:"layerId,omitempty"`
	Cursor  *Cursor `json:"cursor,omitempty"`
	Edit    *Edit   `json:"edit,omitempty"`
}

// stamp returns the ordering key of e.
func (e *Event) stamp() stamp {
	return stamp{wall: e.Wall, clock: e.Clock, user: e.User.ID}
}

// Validate reports whether e is well formed.
func (e *Event) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: missing id", ErrMalformedEvent)
	case e.User.ID == "":
		return fmt.Errorf("%w: %s event %s has no user", ErrMalformedEvent, e.Type, e.ID)
	}
	switch e.Type {
	case EventJoin, EventAck, EventPresence, EventClaim, EventLeave:
		return nil
	case EventEdit:
		if e.Edit == nil {
			return fmt.Errorf("%w: edit event %s has no edit", ErrMalformedEvent, e.ID)
		}
		if err := e.Edit.Validate(); err != nil {
			return fmt.Errorf("%w: event %s: %v", ErrMalformedEvent, e.ID, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, e.Type)
}

// EncodeEvent encodes e as JSON for byte-oriented channels.
func EncodeEvent(e Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// DecodeEvent decodes and validates a JSON event.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// stamp orders events about one zone: wall clock, then Lamport clock,
// then user id.
type stamp struct {
	wall  time.Time
	clock uint64
	user  string
}

func (a stamp) after(b stamp) bool {
	if !a.wall.Equal(b.wall) {
		return a.wall.After(b.wall)
	}
	if a.clock != b.clock {
		return a.clock > b.clock
	}
	return a.user > b.user
}

// near reports whether a and b are within d of each other.
func (a stamp) near(b stamp, d time.Duration) bool {
	diff := a.wall.Sub(b.wall)
	return diff <= d && diff >= -d
}
