// Package status aggregates peer count, armed state, and motor activity
// into a single STATUS token, republished only when it changes.
package status

import (
	"context"
	"time"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
	"rov-go/x/mathx"
)

// Aggregator recomputes STATUS on every relevant bus event.
type Aggregator struct {
	handle *bus.Handle
	store  *store.Store

	peerCount int
	last      types.Status
	haveLast  bool
}

// NewAggregator builds the status worker.
func NewAggregator(h *bus.Handle, s *store.Store) *Aggregator {
	return &Aggregator{handle: h, store: s}
}

// Run recomputes and republishes STATUS on every event that could change
// it, until ctx is cancelled or an Exit event arrives.
func (a *Aggregator) Run(ctx context.Context) {
	listener := a.handle.Listener()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-listener:
			switch ev.Kind {
			case types.EventExit:
				return
			case types.EventPeerConnected:
				a.peerCount++
				a.recompute()
			case types.EventPeerDisconnected:
				if a.peerCount > 0 {
					a.peerCount--
				}
				a.recompute()
			case types.EventStoreUpdate:
				store.ApplyEvent(a.store, ev)
				a.recompute()
			case types.EventResetSharedStore:
				store.ApplyEvent(a.store, ev)
				a.recompute()
			}
		}
	}
}

func (a *Aggregator) recompute() {
	next := a.compute()
	if a.haveLast && next == a.last {
		return
	}
	a.last = next
	a.haveLast = true

	upd := store.Insert(a.store, store.Status, next)
	a.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
}

func (a *Aggregator) compute() types.Status {
	if a.peerCount == 0 {
		return types.Status{Kind: types.StatusNoPeer}
	}

	armed, at, ok := store.GetWithTime(a.store, store.MotorsArmed)
	if !ok {
		// A peer is connected but ARMED has never been published to this
		// store yet — distinct from having heard Disarmed explicitly.
		return types.Status{Kind: types.StatusReady}
	}

	now := time.Now()
	isArmed := armed == types.ArmedState && now.Sub(at) <= 200*time.Millisecond
	if !isArmed {
		return types.Status{Kind: types.StatusDisarmed}
	}

	if maxSpeed, moving := a.maxMotorSpeed(now); moving {
		return types.Status{Kind: types.StatusMoving, MaxSpeed: maxSpeed}
	}

	return types.Status{Kind: types.StatusArmed}
}

func (a *Aggregator) maxMotorSpeed(now time.Time) (types.Speed, bool) {
	frames, at, ok := store.GetWithTime(a.store, store.MotorsSpeed)
	if !ok || now.Sub(at) > 200*time.Millisecond {
		return 0, false
	}
	var max float64
	for _, f := range frames {
		abs := float64(f.Speed)
		if abs < 0 {
			abs = -abs
		}
		max = mathx.Max(max, abs)
	}
	if max == 0 {
		return 0, false
	}
	return types.Speed(max), true
}
