package collab

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Channel is the realtime transport of a session. Delivery is
// at-least-once and ordered per sender. Events closes when the transport
// goes away.
type Channel interface {
	Join(ctx context.Context, sessionID string, u User) error
	Publish(ctx context.Context, e Event) error
	Events() <-chan Event
	Close() error
}

// ErrChannelClosed is returned when publishing on a closed channel.
var ErrChannelClosed = errors.New("collab: channel closed")

// Hub is an in-process transport connecting sessions of one process. It
// acknowledges every join and delivers each event to every other member
// of the same session, in publish order and without blocking the sender.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*HubChannel]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*HubChannel]bool)}
}

// Channel returns a new, not yet joined, member channel.
func (h *Hub) Channel() *HubChannel {
	c := &HubChannel{
		hub:    h,
		events: make(chan Event),
		done:   make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	go c.pump()
	return c
}

// Members returns the number of joined channels of a session.
func (h *Hub) Members(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) broadcast(sessionID string, from *HubChannel, e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		if c != from {
			c.deliver(e)
		}
	}
}

// HubChannel is one member of a Hub.
type HubChannel struct {
	hub    *Hub
	events chan Event
	done   chan struct{}

	mu        sync.Mutex
	cond      *sync.Cond
	inbox     []Event
	sessionID string
	joined    bool
	closed    bool
}

// Join implements Channel.
func (c *HubChannel) Join(ctx context.Context, sessionID string, u User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.sessionID = sessionID
	c.joined = true
	c.mu.Unlock()

	c.hub.mu.Lock()
	members := c.hub.sessions[sessionID]
	if members == nil {
		members = make(map[*HubChannel]bool)
		c.hub.sessions[sessionID] = members
	}
	members[c] = true
	c.hub.mu.Unlock()

	c.deliver(Event{ID: uuid.NewString(), Type: EventAck, SessionID: sessionID, User: u})
	return nil
}

// Publish implements Channel.
func (c *HubChannel) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	closed, joined, sessionID := c.closed, c.joined, c.sessionID
	c.mu.Unlock()
	if closed || !joined {
		return ErrChannelClosed
	}
	c.hub.broadcast(sessionID, c, e)
	return nil
}

// Events implements Channel.
func (c *HubChannel) Events() <-chan Event { return c.events }

// Close leaves the hub and closes Events. Undelivered events are dropped.
func (c *HubChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sessionID := c.sessionID
	c.cond.Broadcast()
	c.mu.Unlock()
	close(c.done)

	c.hub.mu.Lock()
	if members := c.hub.sessions[sessionID]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(c.hub.sessions, sessionID)
		}
	}
	c.hub.mu.Unlock()
	return nil
}

func (c *HubChannel) deliver(e Event) {
	c.mu.Lock()
	if !c.closed {
		c.inbox = append(c.inbox, e)
		c.cond.Signal()
	}
	c.mu.Unlock()
}

// pump moves queued events to the events channel so that deliver never
// blocks on a slow reader.
func (c *HubChannel) pump() {
	defer close(c.events)
	for {
		c.mu.Lock()
		for len(c.inbox) == 0 && !c.closed {
			c.cond.Wait()
		}
		if c.closed {
			c.mu.Unlock()
			return
		}
		batch := c.inbox
		c.inbox = nil
		c.mu.Unlock()

		for _, e := range batch {
			select {
			case c.events <- e:
			case <-c.done:
				return
			}
		}
	}
}
