package hub

import (
	"encoding/json"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/devaloi/safecast/internal/domain"
)

// Options configures a Hub.
type Options struct {
	// MaxRooms caps the number of live rooms. Zero means unlimited.
	MaxRooms int
	// PeerLeftEvents makes the hub tell remaining room members when a
	// connection leaves or disconnects.
	PeerLeftEvents bool
	// Membership backs the room table. Nil selects process memory.
	Membership Membership
	// QueueSize is the depth of the inbound event queue.
	QueueSize int
}

type connectRequest struct {
	peer Peer
}

type disconnectRequest struct {
	id string
}

type joinRequest struct {
	id   string
	room string
	role domain.Role
}

type leaveRequest struct {
	id   string
	room string
}

type relayRequest struct {
	from    string
	room    string
	kind    string
	payload json.RawMessage
}

type queryRequest struct {
	fn   func()
	done chan struct{}
}

// Hub owns the connection registry and the room table. Every event is
// handled on the goroutine running Run, in the order it was submitted.
type Hub struct {
	inbox    chan any
	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	peers    *Registry
	rooms    Membership
	maxRooms int
	peerLeft bool
}

// New creates a new Hub.
func New(opts Options) *Hub {
	if opts.Membership == nil {
		opts.Membership = NewMemoryMembership()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	return &Hub{
		inbox:    make(chan any, opts.QueueSize),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		peers:    NewRegistry(),
		rooms:    opts.Membership,
		maxRooms: opts.MaxRooms,
		peerLeft: opts.PeerLeftEvents,
	}
}

// Run starts the hub's event loop. Should be called as a goroutine. Queries
// wait for Run to process them.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case req := <-h.inbox:
			h.dispatch(req)
		case <-h.quit:
			return
		}
	}
}

// Stop signals the hub's event loop to exit. Events submitted afterwards are
// discarded.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) dispatch(req any) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).Error("hub event handler panicked")
		}
	}()

	switch req := req.(type) {
	case connectRequest:
		h.handleConnect(req)
	case disconnectRequest:
		h.handleDisconnect(req)
	case joinRequest:
		h.handleJoin(req)
	case leaveRequest:
		h.handleLeave(req)
	case relayRequest:
		h.handleRelay(req)
	case queryRequest:
		req.fn()
		close(req.done)
	}
}

func (h *Hub) submit(req any) bool {
	select {
	case <-h.quit:
		return false
	default:
	}
	select {
	case h.inbox <- req:
		return true
	case <-h.quit:
		return false
	}
}

// query runs fn on the hub goroutine and waits for it to finish. Because it
// shares the inbox with every other event, it observes all events submitted
// before it. Once accepted, query returns only after fn has completed or Run
// has exited, so fn never runs concurrently with the caller.
func (h *Hub) query(fn func()) bool {
	done := make(chan struct{})
	if !h.submit(queryRequest{fn: fn, done: done}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-h.stopped:
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

// Connect registers a new connection.
func (h *Hub) Connect(p Peer) {
	h.submit(connectRequest{peer: p})
}

// Disconnect removes a connection and scrubs its room memberships.
func (h *Hub) Disconnect(id string) {
	h.submit(disconnectRequest{id: id})
}

// Join adds a connection to a room.
func (h *Hub) Join(id, room string, role domain.Role) {
	h.submit(joinRequest{id: id, room: room, role: role})
}

// Leave removes a connection from a room.
func (h *Hub) Leave(id, room string) {
	h.submit(leaveRequest{id: id, room: room})
}

// Relay forwards an opaque negotiation payload to every other member of room.
func (h *Hub) Relay(from, room, kind string, payload json.RawMessage) {
	h.submit(relayRequest{from: from, room: room, kind: kind, payload: payload})
}

// MembersOf returns the connection ids currently in room.
func (h *Hub) MembersOf(room string) []string {
	var ids []string
	h.query(func() {
		for _, m := range h.rooms.Members(room) {
			ids = append(ids, m.ConnectionID)
		}
	})
	return ids
}

// RoomsOf returns the rooms a connection has joined.
func (h *Hub) RoomsOf(id string) []string {
	var rooms []string
	h.query(func() {
		rooms = h.peers.Rooms(id)
	})
	return rooms
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	var n int
	h.query(func() {
		n = h.peers.Len()
	})
	return n
}

// ListRooms returns info about all live rooms.
func (h *Hub) ListRooms() []domain.RoomInfo {
	rooms := []domain.RoomInfo{}
	h.query(func() {
		for _, id := range h.rooms.RoomIDs() {
			rooms = append(rooms, h.roomInfo(id))
		}
	})
	return rooms
}

// RoomInfo returns details about a specific room, or nil if it is not live.
func (h *Hub) RoomInfo(room string) *domain.RoomInfo {
	var info *domain.RoomInfo
	h.query(func() {
		if h.rooms.Count(room) == 0 {
			return
		}
		ri := h.roomInfo(room)
		info = &ri
	})
	return info
}
