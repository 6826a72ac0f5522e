package ws

import (
	"sync"

	"social-service/internal/observability"
)

// Registry maps rooms to the clients inside them. A reverse index keeps
// LeaveAll proportional to the rooms a client joined.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	index map[*Client]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[*Client]struct{}),
		index: make(map[*Client]map[string]struct{}),
	}
}

func userRoom(userID string) string { return "user:" + userID }

func chatRoom(chatID string) string { return "chat:" + chatID }

// Join adds c to room and reports whether it was not already there.
func (r *Registry) Join(c *Client, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	if _, exists := members[c]; exists {
		return false
	}
	members[c] = struct{}{}

	joined, ok := r.index[c]
	if !ok {
		joined = make(map[string]struct{})
		r.index[c] = joined
	}
	joined[room] = struct{}{}
	observability.SetRegistryRooms(len(r.rooms))
	return true
}

func (r *Registry) Leave(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(c, room)
	observability.SetRegistryRooms(len(r.rooms))
}

// LeaveAll removes c from every room and returns the rooms it was in.
func (r *Registry) LeaveAll(c *Client) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.index[c]
	left := make([]string, 0, len(joined))
	for room := range joined {
		left = append(left, room)
	}
	for _, room := range left {
		r.leaveLocked(c, room)
	}
	delete(r.index, c)
	observability.SetRegistryRooms(len(r.rooms))
	return left
}

func (r *Registry) leaveLocked(c *Client, room string) {
	if members, ok := r.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	if joined, ok := r.index[c]; ok {
		delete(joined, room)
		if len(joined) == 0 {
			delete(r.index, c)
		}
	}
}

// MembersOf returns a snapshot of the clients in room.
func (r *Registry) MembersOf(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

func (r *Registry) RoomsOf(c *Client) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	joined := r.index[c]
	out := make([]string, 0, len(joined))
	for room := range joined {
		out = append(out, room)
	}
	return out
}

func (r *Registry) InRoom(c *Client, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][c]
	return ok
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
