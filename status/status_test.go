package status

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rov-go/store"
	"rov-go/types"
)

func TestComputeNoPeer(t *testing.T) {
	s := store.New()
	a := &Aggregator{store: s}
	require.Equal(t, types.StatusNoPeer, a.compute().Kind)
}

func TestComputeReadyWhenNoArmedEntry(t *testing.T) {
	s := store.New()
	a := &Aggregator{store: s, peerCount: 1}
	require.Equal(t, types.StatusReady, a.compute().Kind)
}

func TestComputeArmedWithNoMotion(t *testing.T) {
	s := store.New()
	store.Insert(s, store.MotorsArmed, types.ArmedState)
	a := &Aggregator{store: s, peerCount: 1}
	require.Equal(t, types.StatusArmed, a.compute().Kind)
}

func TestComputeMovingPicksMaxAbsSpeed(t *testing.T) {
	s := store.New()
	store.Insert(s, store.MotorsArmed, types.ArmedState)
	store.Insert(s, store.MotorsSpeed, map[types.MotorID]types.MotorFrame{
		types.MotorUpF: {Speed: 0.2},
		types.MotorUpB: {Speed: -0.9},
	})
	a := &Aggregator{store: s, peerCount: 1}
	got := a.compute()
	require.Equal(t, types.StatusMoving, got.Kind)
	require.InDelta(t, 0.9, float64(got.MaxSpeed), 1e-9)
}
