package store

import (
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec serializes a dynamic store value to and from the byte buffer
// carried on the wire. Missing a codec for an inbound key is a protocol
// error the network adapter drops with a log line, per the error taxonomy.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(b []byte) (V, error)
}

// Plain round-trips the value unchanged.
type Plain[V any] struct{}

func (Plain[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (Plain[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// Timestamped wraps a value with an instant. Encoding serializes the
// wrapped value only; decoding re-stamps the instant to the local
// receiver's now() rather than trusting the sender's clock, so every peer
// reasons about staleness in its own monotonic time.
type Timestamped[V any] struct{}

type timestampedWire[V any] struct {
	Value V `json:"value"`
}

func (Timestamped[V]) Encode(v V) ([]byte, error) {
	return json.Marshal(timestampedWire[V]{Value: v})
}

func (Timestamped[V]) Decode(b []byte) (TimestampedValue[V], error) {
	var w timestampedWire[V]
	if err := json.Unmarshal(b, &w); err != nil {
		return TimestampedValue[V]{}, err
	}
	return TimestampedValue[V]{Value: w.Value, At: time.Now()}, nil
}

// TimestampedValue pairs a decoded value with the local re-stamped time.
type TimestampedValue[V any] struct {
	Value V
	At    time.Time
}

// wireCodec is the type-erased form of a registered Codec, keyed by store
// key rather than by V, so the network adapter can encode/decode an inbound
// or outbound byte buffer without knowing the token's concrete type.
type wireCodec struct {
	encode func(v any) ([]byte, error)
	decode func(b []byte) (any, error)
}

var (
	codecMu sync.Mutex
	codecs  = map[string]wireCodec{}
)

// RegisterPlain wires tok's key to a Plain[V] codec, for tokens whose
// staleness is judged purely from the receiving Store's own arrival time.
func RegisterPlain[V any](tok Token[V]) {
	var c Plain[V]
	registerCodec(tok.key, func(v any) ([]byte, error) {
		vv, ok := v.(V)
		if !ok {
			return nil, fmt.Errorf("store: plain codec type mismatch for key %q", tok.key)
		}
		return c.Encode(vv)
	}, func(b []byte) (any, error) {
		return c.Decode(b)
	})
}

// RegisterTimestamped wires tok's key to a Timestamped[V] codec. The
// decoded value alone is returned; HandleUpdateShared's caller still stamps
// the local arrival time on the resulting Update, so the wrapper's own
// re-stamped instant is discarded here rather than threaded through twice.
func RegisterTimestamped[V any](tok Token[V]) {
	var c Timestamped[V]
	registerCodec(tok.key, func(v any) ([]byte, error) {
		vv, ok := v.(V)
		if !ok {
			return nil, fmt.Errorf("store: timestamped codec type mismatch for key %q", tok.key)
		}
		return c.Encode(vv)
	}, func(b []byte) (any, error) {
		tv, err := c.Decode(b)
		if err != nil {
			return nil, err
		}
		return tv.Value, nil
	})
}

func registerCodec(key string, encode func(v any) ([]byte, error), decode func(b []byte) (any, error)) {
	codecMu.Lock()
	defer codecMu.Unlock()
	codecs[key] = wireCodec{encode: encode, decode: decode}
}

// EncodeValue looks up the codec registered for key and encodes v for an
// outbound wire write. found is false if no codec was ever registered for
// key.
func EncodeValue(key string, v any) (b []byte, found bool, err error) {
	codecMu.Lock()
	c, ok := codecs[key]
	codecMu.Unlock()
	if !ok {
		return nil, false, nil
	}
	b, err = c.encode(v)
	return b, true, err
}

// DecodeValue looks up the codec registered for key and decodes b into the
// token's concrete value type for an inbound wire read. found is false if
// no codec was ever registered for key — the adapter's §4.3 contract is to
// drop the update with an error in that case, rather than guess a shape.
func DecodeValue(key string, b []byte) (v any, found bool, err error) {
	codecMu.Lock()
	c, ok := codecs[key]
	codecMu.Unlock()
	if !ok {
		return nil, false, nil
	}
	v, err = c.decode(b)
	return v, true, err
}
