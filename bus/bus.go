// Package bus implements the event fan-out used to connect every worker in
// the system. A bus is created with a fixed number of symmetric handles;
// each handle can send to every other handle and can be drained by its
// owner exactly once. Delivery is non-blocking: a peer whose queue is full
// has the event dropped rather than stalling the sender.
package bus

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rov-go/types"
)

const defaultQueueLen = 50

// Bus owns the set of peer handles and the log used to report drops.
type Bus struct {
	mu    sync.Mutex
	peers map[uuid.UUID]*Handle
	qLen  int
	log   *logrus.Logger
}

// Create builds a bus with n symmetric handles, each with its own queue of
// length qLen (defaultQueueLen if qLen <= 0). Every handle can Send to every
// other handle returned alongside it.
func Create(n int, qLen int, log *logrus.Logger) []*Handle {
	if qLen <= 0 {
		qLen = defaultQueueLen
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &Bus{peers: make(map[uuid.UUID]*Handle, n), qLen: qLen, log: log}

	handles := make([]*Handle, 0, n)
	for i := 0; i < n; i++ {
		h := &Handle{
			id:  uuid.New(),
			bus: b,
			ch:  make(chan *types.Event, qLen),
		}
		b.peers[h.id] = h
		handles = append(handles, h)
	}
	return handles
}

// Handle is one endpoint on the bus: a named worker's send/receive surface.
type Handle struct {
	id  uuid.UUID
	bus *Bus

	ch       chan *types.Event
	taken    bool
	takenMu  sync.Mutex
	closed   bool
	closedMu sync.Mutex
}

// ID identifies this handle for logging and peer-connected/disconnected
// events.
func (h *Handle) ID() uuid.UUID { return h.id }

// Send fans ev out to every other live handle on the bus. Delivery to each
// peer is a non-blocking try-send: a peer whose queue is full has the event
// dropped and logged (with the peer id and event kind) rather than blocking
// the sender. No running count of drops is kept.
func (h *Handle) Send(ev *types.Event) {
	h.bus.mu.Lock()
	peers := make([]*Handle, 0, len(h.bus.peers))
	for id, p := range h.bus.peers {
		if id == h.id {
			continue
		}
		peers = append(peers, p)
	}
	h.bus.mu.Unlock()

	for _, p := range peers {
		p.deliver(ev, h.bus.log)
	}
}

func (h *Handle) deliver(ev *types.Event, log *logrus.Logger) {
	h.closedMu.Lock()
	closed := h.closed
	h.closedMu.Unlock()
	if closed {
		return
	}

	select {
	case h.ch <- ev:
	default:
		log.WithFields(logrus.Fields{
			"peer": h.id,
			"kind": ev.Kind,
		}).Warn("bus: dropping event, peer queue full")
	}
}

// Listener returns the receive-only channel for this handle. It may be
// called any number of times; it never consumes the one-shot semantics
// TakeListener enforces.
func (h *Handle) Listener() <-chan *types.Event { return h.ch }

// TakeListener returns the receive-only channel for this handle exactly
// once; subsequent calls return nil. This lets a handle be constructed by
// one goroutine and handed to its eventual owner without risking two
// readers on the same channel.
func (h *Handle) TakeListener() <-chan *types.Event {
	h.takenMu.Lock()
	defer h.takenMu.Unlock()
	if h.taken {
		return nil
	}
	h.taken = true
	return h.ch
}

// Close removes this handle from the bus. Pending sends from other peers
// already in flight may still be dropped silently; the bus prunes the
// handle from future fan-out immediately.
func (h *Handle) Close() {
	h.bus.mu.Lock()
	delete(h.bus.peers, h.id)
	h.bus.mu.Unlock()

	h.closedMu.Lock()
	h.closed = true
	h.closedMu.Unlock()
}
