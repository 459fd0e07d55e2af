// Package netlink implements the surface-link wire protocol and its
// WebSocket transport: a tagged-union Packet carried one per binary frame.
package netlink

import "time"

// PacketKind tags which variant of the tagged union a Packet carries.
type PacketKind string

const (
	PacketRobotState  PacketKind = "robot_state"
	PacketKVUpdate    PacketKind = "kv_update"
	PacketRequestSync PacketKind = "request_sync"
	PacketLog         PacketKind = "log"
	PacketPing        PacketKind = "ping"
	PacketPong        PacketKind = "pong"
)

// StateUpdate is one entry of a legacy full-state diff.
type StateUpdate struct {
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

// LogLevel mirrors the local logging levels for a forwarded remote log line.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// Packet is the single wire message type: exactly one of its variant
// fields is populated, selected by Kind.
type Packet struct {
	Kind PacketKind `json:"kind"`

	RobotState []StateUpdate `json:"robot_state,omitempty"`

	Key   string `json:"key,omitempty"`
	Value []byte `json:"value,omitempty"` // nil means removal, for KVUpdate

	LogLevel LogLevel `json:"log_level,omitempty"`
	LogText  string   `json:"log_text,omitempty"`

	// Ping/Pong times are serialized as wallclock nanoseconds, since the
	// sender's monotonic clock is meaningless to the receiver.
	T0 int64 `json:"t0,omitempty"`
	T1 int64 `json:"t1,omitempty"`
}

// NewPing builds a Ping packet stamped with the current wallclock time.
func NewPing() Packet {
	return Packet{Kind: PacketPing, T0: time.Now().UnixNano()}
}

// NewPong replies to a Ping, stamping the receive time.
func NewPong(ping Packet) Packet {
	return Packet{Kind: PacketPong, T0: ping.T0, T1: time.Now().UnixNano()}
}

// RTT computes the round-trip time carried by a Pong packet, using the
// wallclock send time and the local arrival time.
func (p Packet) RTT(arrivedAt time.Time) time.Duration {
	sentAt := time.Unix(0, p.T0)
	return arrivedAt.Sub(sentAt)
}
