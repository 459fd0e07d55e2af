package netlink

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"rov-go/errcode"
)

// connect dials or accepts the one peer connection, depending on which of
// DialURL/ListenAddr is configured.
func (a *Adapter) connect(ctx context.Context) (*websocket.Conn, error) {
	if a.cfg.DialURL != "" {
		dialer := websocket.Dialer{}
		conn, _, err := dialer.DialContext(ctx, a.cfg.DialURL, nil)
		return conn, err
	}
	if a.cfg.ListenAddr != "" {
		return a.accept(ctx)
	}
	return nil, &errcode.E{C: errcode.NoAdapter, Op: "netlink.connect", Msg: "neither dial_url nor listen_addr configured"}
}

// accept blocks until one inbound connection is upgraded, or ctx is done.
func (a *Adapter) accept(ctx context.Context) (*websocket.Conn, error) {
	connCh := make(chan *websocket.Conn, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := a.upgrader.Upgrade(w, r, nil)
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
			return
		}
		select {
		case connCh <- conn:
		default:
			_ = conn.Close()
		}
	})

	srv := &http.Server{Addr: a.cfg.ListenAddr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	defer srv.Close()

	select {
	case conn := <-connCh:
		return conn, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// writePacket encodes p and writes it as one binary WebSocket frame.
func writePacket(conn *websocket.Conn, p Packet) error {
	b, err := Encode(p)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, b)
}

// readPacket blocks for the next binary WebSocket frame and decodes it.
func readPacket(conn *websocket.Conn) (Packet, error) {
	_, b, err := conn.ReadMessage()
	if err != nil {
		return Packet{}, err
	}
	return Decode(b)
}
