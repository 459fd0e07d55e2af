package netlink

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rov-go/bus"
	"rov-go/errcode"
	"rov-go/store"
	"rov-go/types"
)

// Config is the deployment-time configuration for the surface link: either
// dial a peer (robot acting as client) or accept one (robot as server).
type Config struct {
	ListenAddr      string        `json:"listen_addr,omitempty"`
	DialURL         string        `json:"dial_url,omitempty"`
	ReconnectBackoff time.Duration `json:"reconnect_backoff"`
}

// Adapter bridges the bus and the one live WebSocket connection to the
// surface console. It owns reconnection; only one peer is supported at a
// time, matching the Non-goal excluding multi-peer federation.
type Adapter struct {
	handle *bus.Handle
	store  *store.Store
	cfg    Config
	log    *logrus.Logger

	upgrader websocket.Upgrader

	// writeMu serializes every write to the live connection: dispatch's
	// replies (pong, sync) and the bus-forwarded outbound updates run on
	// different goroutines but share one websocket.Conn, which only
	// tolerates one writer at a time.
	writeMu sync.Mutex
}

// NewAdapter builds the network adapter.
func NewAdapter(h *bus.Handle, s *store.Store, cfg Config, log *logrus.Logger) *Adapter {
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Adapter{handle: h, store: s, cfg: cfg, log: log, upgrader: websocket.Upgrader{}}
}

// Run supervises the link for the configured role (dial or listen) until
// ctx is cancelled or an Exit event arrives, reconnecting with a fixed
// backoff on I/O error. A single goroutine drains the bus handle for the
// adapter's entire lifetime; serve only ever reads the websocket, so the
// two never race over the same channel.
func (a *Adapter) Run(ctx context.Context) {
	listener := a.handle.Listener()

	var connMu sync.Mutex
	var conn *websocket.Conn

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-listener:
				if ev.Kind == types.EventExit {
					return
				}
				store.ApplyEvent(a.store, ev)

				connMu.Lock()
				c := conn
				connMu.Unlock()
				if c != nil {
					a.forward(c, ev)
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		default:
		}

		c, err := a.connect(ctx)
		if err != nil {
			a.log.WithError(err).Warn("netlink: connect failed, retrying")
			if !sleepCtx(ctx, a.cfg.ReconnectBackoff) {
				return
			}
			continue
		}

		connMu.Lock()
		conn = c
		connMu.Unlock()

		a.handle.Send(&types.Event{Kind: types.EventPeerConnected, PeerAddr: a.peerAddr()})
		a.sendRequestSync(c)

		if err := a.serve(ctx, c); err != nil {
			a.log.WithError(err).Warn("netlink: link lost, reconnecting")
		}

		connMu.Lock()
		conn = nil
		connMu.Unlock()
		_ = c.Close()

		a.handle.Send(&types.Event{Kind: types.EventResetSharedStore})
		a.handle.Send(&types.Event{Kind: types.EventPeerDisconnected, PeerAddr: a.peerAddr()})

		if !sleepCtx(ctx, a.cfg.ReconnectBackoff) {
			return
		}
	}
}

func (a *Adapter) peerAddr() string {
	if a.cfg.DialURL != "" {
		return a.cfg.DialURL
	}
	return a.cfg.ListenAddr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (a *Adapter) sendRequestSync(conn *websocket.Conn) {
	if err := a.writePacket(conn, Packet{Kind: PacketRequestSync}); err != nil {
		a.log.WithError(err).Warn("netlink: failed to send request_sync")
	}
}

// serve owns one live connection's read side: decodes inbound frames and
// dispatches them until the connection errors or ctx is cancelled. Outbound
// forwarding of bus events runs on Run's listener goroutine instead, so
// serve never touches the bus handle.
func (a *Adapter) serve(ctx context.Context, conn *websocket.Conn) error {
	rx := make(chan Packet, 16)
	errCh := make(chan error, 1)

	go func() {
		for {
			p, err := readPacket(conn)
			if err != nil {
				errCh <- err
				return
			}
			select {
			case rx <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case p := <-rx:
			a.dispatch(p, conn)
		}
	}
}

// writePacket serializes the write so dispatch's replies (on serve's
// goroutine) and forward's outbound updates (on Run's listener goroutine)
// never race over the same connection.
func (a *Adapter) writePacket(conn *websocket.Conn, p Packet) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return writePacket(conn, p)
}

func (a *Adapter) dispatch(p Packet, conn *websocket.Conn) {
	now := time.Now()
	switch p.Kind {
	case PacketRobotState:
		for _, su := range p.RobotState {
			a.applyShared(su.Key, su.Value)
		}
	case PacketKVUpdate:
		a.applyShared(p.Key, p.Value)
	case PacketRequestSync:
		a.handle.Send(&types.Event{Kind: types.EventSyncStore})
		for _, u := range a.store.AllEntries() {
			a.sendUpdate(conn, u)
		}
	case PacketPing:
		_ = a.writePacket(conn, NewPong(p))
	case PacketPong:
		rtt := p.RTT(now)
		a.log.WithField("rtt", rtt).Debug("netlink: pong received")
	case PacketLog:
		a.log.WithFields(logrus.Fields{"level": p.LogLevel, "peer": true}).Info(p.LogText)
	}
}

// applyShared decodes an inbound key/value pair through the key's
// registered wire codec and mirrors the result into the local store as a
// shared entry. A nil value is a removal and skips decoding. A key with no
// registered codec, or one whose bytes fail to decode, is dropped with a
// MissingCodec error rather than stored raw — an undecoded []byte would
// fail every typed consumer's Get.
func (a *Adapter) applyShared(key string, value []byte) {
	var v any
	if value != nil {
		dv, found, err := store.DecodeValue(key, value)
		if !found {
			a.log.WithField("key", key).Warn("netlink: dropping inbound update, no codec registered for key")
			a.handle.Send(types.NewErrorEvent(types.ErrProtocol, &errcode.E{C: errcode.MissingCodec, Op: "netlink.apply_shared", Msg: key}))
			return
		}
		if err != nil {
			a.log.WithError(err).WithField("key", key).Warn("netlink: dropping inbound update, decode failed")
			a.handle.Send(types.NewErrorEvent(types.ErrProtocol, &errcode.E{C: errcode.MissingCodec, Op: "netlink.apply_shared", Msg: key, Err: err}))
			return
		}
		v = dv
	}
	u := store.Update{Key: key, Value: v, At: time.Now()}
	a.store.HandleUpdateShared(u)
	a.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: u})
}

// forward turns a locally-owned StoreUpdate event into an outbound
// KVUpdate packet.
func (a *Adapter) forward(conn *websocket.Conn, ev *types.Event) {
	if ev.Kind != types.EventStoreUpdate {
		return
	}
	u, ok := ev.Update.(store.Update)
	if !ok {
		return
	}
	a.sendUpdate(conn, u)
}

func (a *Adapter) sendUpdate(conn *websocket.Conn, u store.Update) {
	var payload []byte
	if u.Value != nil {
		b, found, err := store.EncodeValue(u.Key, u.Value)
		if !found {
			a.log.WithField("key", u.Key).Warn("netlink: dropping outbound update, no codec registered for key")
			return
		}
		if err != nil {
			a.log.WithError(err).Warn("netlink: failed to encode outbound update")
			return
		}
		payload = b
	}
	if err := a.writePacket(conn, Packet{Kind: PacketKVUpdate, Key: u.Key, Value: payload}); err != nil {
		a.log.WithError(err).Warn("netlink: write failed")
	}
}
