package hub

import (
	log "github.com/sirupsen/logrus"

	"github.com/devaloi/safecast/internal/domain"
	"github.com/devaloi/safecast/internal/metrics"
)

func (h *Hub) handleJoin(req joinRequest) {
	fields := log.Fields{"connection": req.id, "room": req.room}

	peer, ok := h.peers.Get(req.id)
	if !ok {
		log.WithFields(fields).Debug("join from unregistered connection")
		return
	}

	newRoom := h.rooms.Count(req.room) == 0
	if newRoom && h.maxRooms > 0 && h.rooms.Len() >= h.maxRooms {
		log.WithFields(fields).Warn("join rejected: max rooms reached")
		metrics.DroppedCounter.WithLabelValues(metrics.ReasonMaxRooms).Inc()
		sendError(peer, "max rooms reached")
		return
	}

	if !h.rooms.Add(req.room, Member{ConnectionID: req.id, Role: req.role}) {
		log.WithFields(fields).Debug("duplicate join ignored")
		return
	}
	h.peers.Track(req.id, req.room)
	metrics.JoinsCounter.Inc()
	if newRoom {
		metrics.RoomsGauge.Inc()
		log.WithFields(fields).Info("room opened")
	}
	log.WithFields(fields).WithField("role", req.role).Info("joined room")

	h.announce(req.room, req.id, domain.PresenceEvent{
		Type:         domain.MsgUserJoined,
		RoomID:       req.room,
		ConnectionID: req.id,
		Role:         req.role,
	})
}

func (h *Hub) handleLeave(req leaveRequest) {
	if h.removeMember(req.room, req.id, false) {
		h.peers.Untrack(req.id, req.room)
		log.WithFields(log.Fields{"connection": req.id, "room": req.room}).Info("left room")
	}
}

// removeMember drops id from room and closes the room when it empties. The
// departure is announced only when announce is set and peer-left events are
// enabled; an explicit leave is silent.
func (h *Hub) removeMember(room, id string, announce bool) bool {
	if !h.rooms.Remove(room, id) {
		return false
	}
	if h.rooms.Count(room) == 0 {
		metrics.RoomsGauge.Dec()
		log.WithField("room", room).Info("room closed")
		return true
	}
	if announce && h.peerLeft {
		h.announce(room, id, domain.PresenceEvent{
			Type:         domain.MsgPeerLeft,
			RoomID:       room,
			ConnectionID: id,
		})
	}
	return true
}

func (h *Hub) roomInfo(room string) domain.RoomInfo {
	info := domain.RoomInfo{ID: room}
	for _, m := range h.rooms.Members(room) {
		info.Members++
		switch m.Role {
		case domain.RoleBroadcaster:
			info.Broadcasters++
		case domain.RoleViewer:
			info.Viewers++
		}
	}
	return info
}
