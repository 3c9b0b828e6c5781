package hub

import (
	"sort"

	"github.com/devaloi/safecast/internal/domain"
)

// Member is one connection's presence in a room.
type Member struct {
	ConnectionID string
	Role         domain.Role
}

// Membership stores which connections are in which room. A room exists only
// while it has at least one member. The hub goroutine is the only caller, so
// implementations backed by process memory need no locking; a shared backing
// store for several relay processes would plug in here.
type Membership interface {
	// Add inserts m into room and reports whether it was newly added.
	Add(room string, m Member) bool
	// Remove deletes connID from room and reports whether it was present.
	Remove(room, connID string) bool
	// Members returns the members of room ordered by connection id.
	Members(room string) []Member
	// Count returns the number of members in room.
	Count(room string) int
	// RoomIDs returns every live room, sorted.
	RoomIDs() []string
	// Len returns the number of live rooms.
	Len() int
}

type memoryMembership struct {
	rooms map[string]map[string]domain.Role
}

// NewMemoryMembership returns a Membership held in process memory.
func NewMemoryMembership() Membership {
	return &memoryMembership{rooms: make(map[string]map[string]domain.Role)}
}

func (m *memoryMembership) Add(room string, member Member) bool {
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[string]domain.Role)
		m.rooms[room] = members
	}
	if _, exists := members[member.ConnectionID]; exists {
		return false
	}
	members[member.ConnectionID] = member.Role
	return true
}

func (m *memoryMembership) Remove(room, connID string) bool {
	members, ok := m.rooms[room]
	if !ok {
		return false
	}
	if _, exists := members[connID]; !exists {
		return false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(m.rooms, room)
	}
	return true
}

func (m *memoryMembership) Members(room string) []Member {
	members := m.rooms[room]
	out := make([]Member, 0, len(members))
	for id, role := range members {
		out = append(out, Member{ConnectionID: id, Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectionID < out[j].ConnectionID })
	return out
}

func (m *memoryMembership) Count(room string) int {
	return len(m.rooms[room])
}

func (m *memoryMembership) RoomIDs() []string {
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *memoryMembership) Len() int {
	return len(m.rooms)
}
