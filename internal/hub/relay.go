package hub

import (
	log "github.com/sirupsen/logrus"

	"github.com/devaloi/safecast/internal/domain"
	"github.com/devaloi/safecast/internal/metrics"
)

// handleRelay forwards an offer, answer or ICE candidate to every member of
// the room except the sender. The payload is never inspected. A room with no
// other members makes this a no-op.
func (h *Hub) handleRelay(req relayRequest) {
	fields := log.Fields{"connection": req.from, "room": req.room, "type": req.kind}

	if !domain.IsSignal(req.kind) {
		log.WithFields(fields).Debug("relay of non-signal type ignored")
		return
	}
	if _, ok := h.peers.Get(req.from); !ok {
		log.WithFields(fields).Debug("relay from unregistered connection")
		return
	}

	data, err := domain.EncodeSignal(req.kind, req.room, req.from, req.payload)
	if err != nil {
		metrics.DroppedCounter.WithLabelValues(metrics.ReasonInvalid).Inc()
		log.WithFields(fields).WithError(err).Warn("unrelayable signal")
		return
	}

	delivered := h.broadcast(req.room, req.from, data)
	if delivered == 0 {
		metrics.DroppedCounter.WithLabelValues(metrics.ReasonNoRecipients).Inc()
		log.WithFields(fields).Debug("no recipients for signal")
		return
	}
	metrics.RelayedCounter.WithLabelValues(req.kind).Add(float64(delivered))
	log.WithFields(fields).WithField("recipients", delivered).Debug("relayed signal")
}

// announce encodes a presence event once and broadcasts it.
func (h *Hub) announce(room, skip string, ev domain.PresenceEvent) {
	data, err := domain.Encode(ev)
	if err != nil {
		log.WithField("room", room).WithError(err).Error("encode presence event")
		return
	}
	h.broadcast(room, skip, data)
}

// broadcast enqueues data to every member of room except skip. It returns the
// number of peers that accepted the frame.
func (h *Hub) broadcast(room, skip string, data []byte) int {
	delivered := 0
	for _, m := range h.rooms.Members(room) {
		if m.ConnectionID == skip {
			continue
		}
		peer, ok := h.peers.Get(m.ConnectionID)
		if !ok {
			continue
		}
		if !peer.Send(data) {
			metrics.DroppedCounter.WithLabelValues(metrics.ReasonBufferFull).Inc()
			continue
		}
		delivered++
	}
	return delivered
}

func sendError(p Peer, message string) {
	if data, err := domain.Encode(domain.ErrorMessage{Type: domain.MsgError, Message: message}); err == nil {
		p.Send(data)
	}
}
