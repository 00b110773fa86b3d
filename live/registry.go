// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import "sync"

// RoomKey identifies one survey's broadcast group.
type RoomKey struct {
	EventID  string
	SurveyID string
}

func (k RoomKey) String() string {
	return k.EventID + "/" + k.SurveyID
}

// Conn is one live client. Send must not block for long; the WebSocket
// client queues onto a buffered channel.
type Conn interface {
	ID() string
	Send(msg []byte) error
}

// Registry tracks which connections are in which rooms.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[RoomKey]map[string]Conn
	byConn map[string]map[RoomKey]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[RoomKey]map[string]Conn),
		byConn: make(map[string]map[RoomKey]struct{}),
	}
}

// Join adds c to the room. Returns false if it was already a member.
func (r *Registry) Join(key RoomKey, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[key]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[key] = members
	}
	if _, exists := members[c.ID()]; exists {
		return false
	}
	members[c.ID()] = c

	keys, ok := r.byConn[c.ID()]
	if !ok {
		keys = make(map[RoomKey]struct{})
		r.byConn[c.ID()] = keys
	}
	keys[key] = struct{}{}
	return true
}

// Leave removes c from the room. Returns false if it was not a member.
func (r *Registry) Leave(key RoomKey, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(key, c.ID())
}

func (r *Registry) leaveLocked(key RoomKey, id string) bool {
	members, ok := r.rooms[key]
	if !ok {
		return false
	}
	if _, ok := members[id]; !ok {
		return false
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, key)
	}

	if keys, ok := r.byConn[id]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.byConn, id)
		}
	}
	return true
}

// RemoveConn drops c from every room and returns the rooms it was in.
func (r *Registry) RemoveConn(c Conn) []RoomKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.byConn[c.ID()]
	removed := make([]RoomKey, 0, len(keys))
	for key := range keys {
		removed = append(removed, key)
	}
	for _, key := range removed {
		r.leaveLocked(key, c.ID())
	}
	return removed
}

// Members returns a copy of the room's connections.
func (r *Registry) Members(key RoomKey) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[key]
	out := make([]Conn, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

func (r *Registry) RoomsOf(c Conn) []RoomKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.byConn[c.ID()]
	out := make([]RoomKey, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	return out
}

// Clear empties the registry. Called on shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = make(map[RoomKey]map[string]Conn)
	r.byConn = make(map[string]map[RoomKey]struct{})
}

// Stats reports the number of non-empty rooms and total memberships.
func (r *Registry) Stats() (rooms, memberships int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, members := range r.rooms {
		memberships += len(members)
	}
	return len(r.rooms), memberships
}
