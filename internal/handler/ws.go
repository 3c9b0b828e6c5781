package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/devaloi/safecast/internal/client"
	"github.com/devaloi/safecast/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Mobile clients connect from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS handles WebSocket upgrade requests for the signaling channel.
func ServeWS(h *hub.Hub, opts client.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithField("remote", r.RemoteAddr).WithError(err).Warn("ws upgrade error")
			return
		}

		c := client.New(h, conn, opts)
		h.Connect(c)
		log.WithFields(log.Fields{"connection": c.ID(), "remote": r.RemoteAddr}).Debug("ws connected")
		go c.WritePump()
		go c.ReadPump()
	}
}
