// Package runtime hosts the live side of the system: room membership,
// the message pipeline, and the presence relay. No storage formats or
// transport details belong here.
package runtime

import (
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
)

type set map[string]struct{}

// Registry tracks which live sessions are members of which conversation
// rooms. Membership is mutated only by join/leave/disconnect and read by
// broadcast; a plain RWMutex suffices since no read-modify-write hazard
// exists here.
type Registry struct {
	mu           sync.RWMutex
	sinks        map[string]contract.EventSink      // session id -> delivery sink
	roomMembers  map[domain.ConversationID]set      // room -> session ids
	sessionRooms map[string]map[domain.ConversationID]struct{} // session id -> joined rooms
}

func NewRegistry() *Registry {
	return &Registry{
		sinks:        make(map[string]contract.EventSink),
		roomMembers:  make(map[domain.ConversationID]set),
		sessionRooms: make(map[string]map[domain.ConversationID]struct{}),
	}
}

// Subscribe registers a session's sink and adds it to a room. Re-joining is
// a no-op, so the operation is idempotent.
func (r *Registry) Subscribe(sessionID string, roomID domain.ConversationID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[sessionID] = sink

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(set)
	}
	r.roomMembers[roomID][sessionID] = struct{}{}

	if _, ok := r.sessionRooms[sessionID]; !ok {
		r.sessionRooms[sessionID] = make(map[domain.ConversationID]struct{})
	}
	r.sessionRooms[sessionID][roomID] = struct{}{}
}

// Unsubscribe removes a session from one room. It always succeeds,
// regardless of prior membership, and keeps the session's sink alive for
// its other rooms. Empty sets are pruned to avoid leaking room entries.
func (r *Registry) Unsubscribe(sessionID string, roomID domain.ConversationID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeMembership(sessionID, roomID)
}

// Disconnect removes the session from every room it belongs to and drops
// its sink. It does not cancel any in-flight pipeline run already using the
// session's identity.
func (r *Registry) Disconnect(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.sessionRooms[sessionID] {
		r.removeMembership(sessionID, roomID)
	}
	delete(r.sinks, sessionID)
}

func (r *Registry) removeMembership(sessionID string, roomID domain.ConversationID) {
	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, sessionID)
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	if rooms, ok := r.sessionRooms[sessionID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.sessionRooms, sessionID)
		}
	}
}

func (r *Registry) IsMember(sessionID string, roomID domain.ConversationID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return false
	}
	_, ok = members[sessionID]
	return ok
}

// SinksForRoom resolves the current members of a room into their delivery
// sinks, skipping any session listed in exclude. Returns nil for an empty
// or unknown room.
func (r *Registry) SinksForRoom(roomID domain.ConversationID, exclude ...string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}

	excluded := make(set, len(exclude))
	for _, sessionID := range exclude {
		excluded[sessionID] = struct{}{}
	}

	var sinks []contract.EventSink
	for sessionID := range members {
		if _, skip := excluded[sessionID]; skip {
			continue
		}
		if sink, exists := r.sinks[sessionID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}
