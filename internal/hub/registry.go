package hub

import "sort"

// Peer is the interface the hub expects from one live transport connection.
type Peer interface {
	ID() string
	// Send enqueues a frame without blocking and reports whether it was accepted.
	Send(data []byte) bool
}

type registryEntry struct {
	peer  Peer
	rooms map[string]struct{}
}

// Registry tracks live connections and the rooms each one has joined.
// It is owned by the hub goroutine and is not safe for concurrent use.
type Registry struct {
	conns map[string]*registryEntry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*registryEntry)}
}

// Add registers a peer. It returns false if the identifier is already taken.
func (r *Registry) Add(p Peer) bool {
	if _, ok := r.conns[p.ID()]; ok {
		return false
	}
	r.conns[p.ID()] = &registryEntry{peer: p, rooms: make(map[string]struct{})}
	return true
}

// Get returns the live peer for id.
func (r *Registry) Get(id string) (Peer, bool) {
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.peer, true
}

// Remove unregisters id and returns the rooms it was a member of.
// Removing an unknown or already removed id returns nil.
func (r *Registry) Remove(id string) []string {
	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	delete(r.conns, id)
	return sortedKeys(e.rooms)
}

// Track records that id joined room.
func (r *Registry) Track(id, room string) {
	if e, ok := r.conns[id]; ok {
		e.rooms[room] = struct{}{}
	}
}

// Untrack records that id left room.
func (r *Registry) Untrack(id, room string) {
	if e, ok := r.conns[id]; ok {
		delete(e.rooms, room)
	}
}

// Rooms returns the rooms id has joined, sorted.
func (r *Registry) Rooms(id string) []string {
	e, ok := r.conns[id]
	if !ok {
		return nil
	}
	return sortedKeys(e.rooms)
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	return len(r.conns)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
