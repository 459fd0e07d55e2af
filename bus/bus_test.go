package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rov-go/types"
)

func TestCreateFanOut(t *testing.T) {
	handles := Create(3, 4, nil)
	require.Len(t, handles, 3)

	listeners := make([]<-chan *types.Event, len(handles))
	for i, h := range handles {
		listeners[i] = h.TakeListener()
	}

	handles[0].Send(&types.Event{Kind: types.EventExit})

	select {
	case ev := <-listeners[1]:
		require.Equal(t, types.EventExit, ev.Kind)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("peer 1 did not receive event")
	}

	select {
	case ev := <-listeners[2]:
		require.Equal(t, types.EventExit, ev.Kind)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("peer 2 did not receive event")
	}

	select {
	case <-listeners[0]:
		t.Fatal("sender should not receive its own event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTakeListenerOneShot(t *testing.T) {
	handles := Create(2, 4, nil)
	first := handles[0].TakeListener()
	require.NotNil(t, first)

	second := handles[0].TakeListener()
	require.Nil(t, second)

	// Listener() remains available regardless of TakeListener.
	require.NotNil(t, handles[0].Listener())
}

func TestSendDropsOnFullQueue(t *testing.T) {
	handles := Create(2, 1, nil)
	_ = handles[1].TakeListener()

	handles[0].Send(&types.Event{Kind: types.EventExit})
	handles[0].Send(&types.Event{Kind: types.EventExit}) // queue already full, dropped

	ch := handles[1].Listener()
	select {
	case <-ch:
	case <-time.After(50 * time.Millisecond):
		t.Fatal("expected the first buffered event")
	}
	select {
	case <-ch:
		t.Fatal("second send should have been dropped, not queued")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestClosePrunesPeer(t *testing.T) {
	handles := Create(2, 4, nil)
	listener := handles[1].TakeListener()

	handles[1].Close()

	handles[0].Send(&types.Event{Kind: types.EventExit})

	select {
	case <-listener:
		t.Fatal("closed peer should not receive further events")
	case <-time.After(30 * time.Millisecond):
	}
}
