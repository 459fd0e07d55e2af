package types

import "time"

// EventKind tags the variant carried by an Event. Event is a tagged union
// rather than an interface hierarchy so the bus can fan it out as a single
// concrete pointer type without per-variant wrapping.
type EventKind uint8

const (
	EventPeerConnected EventKind = iota
	EventPeerDisconnected
	EventPacketRx
	EventPacketTx
	EventStoreUpdate
	EventSyncStore
	EventResetSharedStore
	EventSensorFrame
	EventError
	EventExit
)

// ErrorKind classifies a published EventError for logging and for any peer
// that needs to react differently to a transient hiccup than to a fatal one.
type ErrorKind string

const (
	ErrTransient ErrorKind = "transient"
	ErrProtocol  ErrorKind = "protocol"
	ErrPeer      ErrorKind = "peer"
	ErrConfig    ErrorKind = "config"
	ErrFatal     ErrorKind = "fatal"
)

// Event is the single message type every Handle sends and receives. Only
// the fields relevant to Kind are populated; the rest are the zero value.
type Event struct {
	Kind EventKind
	At   time.Time

	PeerAddr string // PeerConnected, PeerDisconnected

	Packet any // PacketRx, PacketTx — a *netlink.Packet, kept as any to avoid an import cycle

	Update any // StoreUpdate — a store.Update, kept as any to avoid an import cycle

	Frame any // SensorFrame — one of ImuFrame, MagFrame, DepthFrame, bool (leak)

	Err     error
	ErrKind ErrorKind
}

// NewErrorEvent builds an EventError with the current time stamped in.
func NewErrorEvent(kind ErrorKind, err error) *Event {
	return &Event{Kind: EventError, At: time.Now(), Err: err, ErrKind: kind}
}
