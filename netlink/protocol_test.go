package netlink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := Packet{Kind: PacketKVUpdate, Key: "robot.status", Value: []byte(`{"kind":"armed"}`)}
	b, err := Encode(p)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, p.Kind, got.Kind)
	require.Equal(t, p.Key, got.Key)
	require.Equal(t, p.Value, got.Value)
}

func TestPongRTT(t *testing.T) {
	ping := NewPing()
	time.Sleep(time.Millisecond)
	pong := NewPong(ping)

	rtt := pong.RTT(time.Unix(0, pong.T1))
	require.Greater(t, rtt, time.Duration(0))
}

func TestKVUpdateRemovalHasNilValue(t *testing.T) {
	p := Packet{Kind: PacketKVUpdate, Key: "robot.movement.depth", Value: nil}
	b, err := Encode(p)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	require.Nil(t, got.Value)
}
