package chat

import (
	"context"
	"sync"
)

// Broadcaster maintains group membership and fans events out to every
// session currently joined to a group. Implementations must be safe for
// concurrent join/leave/send from independent sessions.
type Broadcaster interface {
	// Join adds a session to a group. Joining twice is a no-op.
	Join(group string, s *Session)

	// Leave removes a session from a group. A no-op if not a member.
	Leave(group string, s *Session)

	// Send delivers an event to every session in the group at the time
	// of the call. No buffering for late joiners, no redelivery to
	// members who already left.
	Send(ctx context.Context, group string, ev Event) error
}

// Hub is the in-process Broadcaster. One instance is created per
// process and shared by every session.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Session]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		groups: make(map[string]map[*Session]struct{}),
	}
}

// Join adds a session to a group.
func (h *Hub) Join(group string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Session]struct{})
		h.groups[group] = members
	}
	members[s] = struct{}{}
}

// Leave removes a session from a group.
func (h *Hub) Leave(group string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Send delivers an event to all current members of a group.
func (h *Hub) Send(_ context.Context, group string, ev Event) error {
	h.deliver(group, ev)
	return nil
}

// deliver pushes an event onto each member's channel. Slow consumers
// are dropped rather than blocking the sender.
func (h *Hub) deliver(group string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.groups[group] {
		select {
		case s.Events <- ev:
		default:
			// Drop if slow consumer.
		}
	}
}

// MemberCount reports how many sessions are joined to a group.
func (h *Hub) MemberCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
