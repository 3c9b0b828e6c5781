package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Message types.
const (
	MsgJoinRoom     = "join_room"
	MsgLeaveRoom    = "leave_room"
	MsgOffer        = "offer"
	MsgAnswer       = "answer"
	MsgIceCandidate = "ice_candidate"
	MsgWelcome      = "welcome"
	MsgUserJoined   = "user_joined"
	MsgPeerLeft     = "peer_left"
	MsgError        = "error"
)

// MaxRoomIDLength bounds the room identifier accepted from clients.
const MaxRoomIDLength = 128

// Validation errors for inbound envelopes.
var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrMissingRoom    = errors.New("roomId required")
	ErrRoomTooLong    = errors.New("roomId too long")
	ErrMissingPayload = errors.New("payload required")
	ErrUnknownRole    = errors.New("unknown role")
)

// Role is the conventional part a peer plays in a room. The relay records it
// but never enforces it.
type Role string

const (
	RoleUnspecified Role = ""
	RoleBroadcaster Role = "broadcaster"
	RoleViewer      Role = "viewer"
)

// Valid reports whether r is a known role or left unspecified.
func (r Role) Valid() bool {
	switch r {
	case RoleUnspecified, RoleBroadcaster, RoleViewer:
		return true
	}
	return false
}

// Envelope is the single frame shape exchanged over the signaling socket.
// Offer, Answer and Candidate are opaque; the relay only reads Type and RoomID.
type Envelope struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Role      Role            `json:"role,omitempty"`
	From      string          `json:"from,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// PresenceEvent announces a connection to the rest of a room, or tells a
// freshly connected client its own identifier.
type PresenceEvent struct {
	Type         string `json:"type"`
	RoomID       string `json:"roomId,omitempty"`
	ConnectionID string `json:"connectionId"`
	Role         Role   `json:"role,omitempty"`
}

// ErrorMessage reports a rejected frame to the client.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// IsSignal reports whether t is one of the relayed negotiation messages.
func IsSignal(t string) bool {
	switch t {
	case MsgOffer, MsgAnswer, MsgIceCandidate:
		return true
	}
	return false
}

// Payload returns the opaque body carried under the key matching e.Type.
// The bytes are exactly those the client sent.
func (e Envelope) Payload() json.RawMessage {
	switch e.Type {
	case MsgOffer:
		return e.Offer
	case MsgAnswer:
		return e.Answer
	case MsgIceCandidate:
		return e.Candidate
	}
	return nil
}

// Validate checks the envelope fields the relay depends on.
func (e Envelope) Validate() error {
	switch e.Type {
	case MsgJoinRoom, MsgLeaveRoom, MsgOffer, MsgAnswer, MsgIceCandidate:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
	if e.RoomID == "" {
		return ErrMissingRoom
	}
	if len(e.RoomID) > MaxRoomIDLength {
		return ErrRoomTooLong
	}
	if !e.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, e.Role)
	}
	if IsSignal(e.Type) && isEmptyPayload(e.Payload()) {
		return fmt.Errorf("%w for %s", ErrMissingPayload, e.Type)
	}
	return nil
}

// PayloadKey returns the JSON key that carries the payload of a signal kind,
// or "" if kind is not a signal.
func PayloadKey(kind string) string {
	switch kind {
	case MsgOffer:
		return "offer"
	case MsgAnswer:
		return "answer"
	case MsgIceCandidate:
		return "candidate"
	}
	return ""
}

type signalHeader struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	From   string `json:"from"`
}

// EncodeSignal builds the outbound frame for a relayed negotiation message.
// The payload bytes are copied into the frame exactly as received, under the
// key they arrived with; json.Marshal would compact and re-escape them.
func EncodeSignal(kind, roomID, from string, payload json.RawMessage) ([]byte, error) {
	key := PayloadKey(kind)
	if key == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	if isEmptyPayload(payload) {
		return nil, fmt.Errorf("%w for %s", ErrMissingPayload, kind)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("invalid %s payload", kind)
	}

	head, err := json.Marshal(signalHeader{Type: kind, RoomID: roomID, From: from})
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(head)+len(key)+len(payload)+4)
	frame = append(frame, head[:len(head)-1]...)
	frame = append(frame, ',', '"')
	frame = append(frame, key...)
	frame = append(frame, '"', ':')
	frame = append(frame, payload...)
	frame = append(frame, '}')
	return frame, nil
}

func isEmptyPayload(p json.RawMessage) bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Encode serializes a value to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeEnvelope deserializes JSON bytes into an Envelope.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}
