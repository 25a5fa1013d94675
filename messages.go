package server

import (
	"stealth-guard/server/internal/world"
)

// ProtocolVersion tracks the wire-protocol revision expected by clients.
const ProtocolVersion = 1

// Message type identifiers.
const (
	TypeState     = "state"
	TypeInput     = "input"
	TypeBounce    = "bounce"
	TypeHeartbeat = "heartbeat"
	TypeError     = "error"
)

// stateMessage is broadcast after every tick. Layout is only attached to the
// first frame a subscriber receives.
type stateMessage struct {
	Ver          int            `json:"ver"`
	Type         string         `json:"type"`
	SubscriberID string         `json:"subscriberId,omitempty"`
	ServerTime   int64          `json:"serverTime"`
	World        world.Snapshot `json:"world"`
	Layout       *world.Layout  `json:"layout,omitempty"`
}

// ClientMessage is the union of every frame a subscriber may send.
type ClientMessage struct {
	Ver    int     `json:"ver,omitempty"`
	Type   string  `json:"type"`
	DX     float64 `json:"dx"`
	DZ     float64 `json:"dz"`
	Crouch bool    `json:"crouch,omitempty"`
	Sprint bool    `json:"sprint,omitempty"`
	Guard  string  `json:"guard,omitempty"`
	SentAt int64   `json:"sentAt,omitempty"`
}

// HeartbeatMessage acknowledges a client heartbeat.
type HeartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

// ErrorMessage reports a rejected client frame.
type ErrorMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Input converts an input frame into the world's movement intent.
func (m ClientMessage) Input() world.Input {
	return world.Input{DX: m.DX, DZ: m.DZ, Crouch: m.Crouch, Sprint: m.Sprint}
}
