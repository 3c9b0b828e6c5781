package hub

import (
	log "github.com/sirupsen/logrus"

	"github.com/devaloi/safecast/internal/domain"
	"github.com/devaloi/safecast/internal/metrics"
)

func (h *Hub) handleConnect(req connectRequest) {
	fields := log.Fields{"connection": req.peer.ID()}
	if !h.peers.Add(req.peer) {
		log.WithFields(fields).Warn("duplicate connection id rejected")
		return
	}
	metrics.ConnectionsGauge.Inc()
	log.WithFields(fields).Info("connection registered")

	if data, err := domain.Encode(domain.PresenceEvent{Type: domain.MsgWelcome, ConnectionID: req.peer.ID()}); err == nil {
		req.peer.Send(data)
	}
}

// handleDisconnect unregisters a connection and removes it from every room it
// had joined. Repeated disconnects for the same id are no-ops.
func (h *Hub) handleDisconnect(req disconnectRequest) {
	if _, ok := h.peers.Get(req.id); !ok {
		return
	}
	rooms := h.peers.Remove(req.id)
	for _, room := range rooms {
		h.removeMember(room, req.id, true)
	}
	metrics.ConnectionsGauge.Dec()
	log.WithFields(log.Fields{"connection": req.id, "rooms": rooms}).Info("connection gone")
}
