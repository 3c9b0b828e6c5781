package client

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/devaloi/safecast/internal/domain"
	"github.com/devaloi/safecast/internal/hub"
	"github.com/devaloi/safecast/internal/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Options bounds what one connection may send and buffer.
type Options struct {
	SendBuffer        int
	MaxMessageBytes   int64
	MessagesPerSecond int
}

// DefaultOptions returns limits sized for SDP offers and trickled candidates.
func DefaultOptions() Options {
	return Options{
		SendBuffer:        256,
		MaxMessageBytes:   64 * 1024,
		MessagesPerSecond: 50,
	}
}

// Client is one signaling WebSocket connection registered with the hub.
type Client struct {
	hub     *hub.Hub
	conn    *websocket.Conn
	send    chan []byte
	id      string
	opts    Options
	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new Client with a random connection id.
func New(h *hub.Hub, conn *websocket.Conn, opts Options) *Client {
	def := DefaultOptions()
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = def.SendBuffer
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = def.MaxMessageBytes
	}
	limit := rate.Inf
	if opts.MessagesPerSecond > 0 {
		limit = rate.Limit(opts.MessagesPerSecond)
	}
	return &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, opts.SendBuffer),
		id:      uuid.NewString(),
		opts:    opts,
		limiter: rate.NewLimiter(limit, max(opts.MessagesPerSecond, 1)),
		done:    make(chan struct{}),
	}
}

// ID returns the client's connection id.
func (c *Client) ID() string {
	return c.id
}

// Send queues a frame to be written to the WebSocket client.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		log.WithField("connection", c.id).Warn("send buffer full, dropping frame")
		return false
	}
}

// ReadPump reads frames from the WebSocket connection and hands them to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c.id)
		c.closeOnce.Do(func() { close(c.done) })
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithField("connection", c.id).WithError(err).Warn("read error")
			}
			return
		}
		if !c.limiter.Allow() {
			metrics.DroppedCounter.WithLabelValues(metrics.ReasonRateLimited).Inc()
			c.sendError("rate limit exceeded")
			continue
		}
		c.handleMessage(data)
	}
}

// WritePump writes frames from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	env, err := domain.DecodeEnvelope(data)
	if err != nil {
		metrics.DroppedCounter.WithLabelValues(metrics.ReasonInvalid).Inc()
		c.sendError("invalid JSON")
		return
	}
	if err := env.Validate(); err != nil {
		metrics.DroppedCounter.WithLabelValues(metrics.ReasonInvalid).Inc()
		log.WithFields(log.Fields{"connection": c.id, "type": env.Type}).WithError(err).Debug("rejected frame")
		c.sendError(err.Error())
		return
	}

	switch env.Type {
	case domain.MsgJoinRoom:
		c.hub.Join(c.id, env.RoomID, env.Role)
	case domain.MsgLeaveRoom:
		c.hub.Leave(c.id, env.RoomID)
	case domain.MsgOffer, domain.MsgAnswer, domain.MsgIceCandidate:
		c.hub.Relay(c.id, env.RoomID, env.Type, env.Payload())
	}
}

func (c *Client) sendError(message string) {
	errMsg := domain.ErrorMessage{Type: domain.MsgError, Message: message}
	if data, err := domain.Encode(errMsg); err == nil {
		c.Send(data)
	}
}
