package control

import (
	"context"
	"time"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
	"rov-go/x/mathx"
)

const (
	depthPeriod      = 20 * time.Millisecond
	depthCorrectionBound = 0.30
)

// Depth runs the depth-hold PID loop: while DEPTH_CONTROL_MODE is enabled
// it drives MOVEMENT_DEPTH.z toward the configured target depth; disabled
// or with an absent input, it resets the controller and removes the
// published Movement.
type Depth struct {
	handle *bus.Handle
	store  *store.Store
	pid    *PID
}

// NewDepth builds the depth controller with the default gains; they may be
// overridden at runtime via the DEPTH_PID_OVERRIDE token.
func NewDepth(h *bus.Handle, s *store.Store, gains store.PIDGains) *Depth {
	return &Depth{handle: h, store: s, pid: NewPID(gains, depthPeriod.Seconds())}
}

// Run drives the loop on a fixed 20ms ticker until ctx is cancelled or an
// Exit event arrives on the bus.
func (d *Depth) Run(ctx context.Context) {
	ticker := time.NewTicker(depthPeriod)
	defer ticker.Stop()

	listener := d.handle.Listener()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-listener:
			if ev.Kind == types.EventExit {
				return
			}
			store.ApplyEvent(d.store, ev)
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Depth) tick() {
	if gains, ok := store.Get(d.store, store.DepthPIDOverride); ok {
		d.pid.SetGains(gains)
	}

	mode, modeOK := store.Get(d.store, store.AIDepthTarget)
	depth, depthOK := store.Get(d.store, store.SensorsDepth)

	if !modeOK || !depthOK || !mode.Enabled {
		d.pid.Reset()
		upd := store.Remove(d.store, store.MovementDepth)
		d.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
		return
	}

	errVal := float64(mode.Target) - float64(depth.Depth)
	correction := d.pid.Update(errVal)
	correction = mathx.Clamp(correction, -depthCorrectionBound, depthCorrectionBound)

	movement := types.Movement{Z: types.Speed(-correction).Clamp()}
	upd := store.Insert(d.store, store.MovementDepth, movement)
	d.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
}
