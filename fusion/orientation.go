package fusion

import (
	"context"
	"time"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
)

const (
	tickPeriod     = time.Millisecond // 1kHz
	republishEvery = 20               // 1kHz / 20 = 50Hz
)

// Orientation merges incoming IMU/magnetometer frames from the bus with a
// 1kHz tick stream: every tick drives the Madgwick filter with the latest
// latched frames, and every 20th tick republishes ORIENTATION plus the raw
// frames that fed it.
type Orientation struct {
	handle *bus.Handle
	store  *store.Store
	filter *Madgwick

	lastImu types.ImuFrame
	lastMag types.MagFrame
	haveImu bool
}

// NewOrientation builds the fusion worker with the reference sample
// period and beta (1ms, 0.041).
func NewOrientation(h *bus.Handle, s *store.Store) *Orientation {
	return &Orientation{
		handle: h,
		store:  s,
		filter: NewMadgwick(tickPeriod.Seconds(), 0.041),
	}
}

// Run drives the merge loop until ctx is cancelled or an Exit event
// arrives. The filter is reset to identity on entry, matching the "no
// warmup guarantee" design note: a restarted fusion worker starts cold.
func (o *Orientation) Run(ctx context.Context) {
	o.filter.Reset()

	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	listener := o.handle.Listener()
	tickCount := 0

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-listener:
			o.handleEvent(ev)
			if ev.Kind == types.EventExit {
				return
			}
		case <-ticker.C:
			tickCount++
			o.tick()
			if tickCount%republishEvery == 0 {
				o.publish()
			}
		}
	}
}

func (o *Orientation) handleEvent(ev *types.Event) {
	store.ApplyEvent(o.store, ev)

	if ev.Kind != types.EventSensorFrame {
		return
	}
	switch f := ev.Frame.(type) {
	case types.ImuFrame:
		o.lastImu = f
		o.haveImu = true
	case types.MagFrame:
		o.lastMag = f
	}
}

func (o *Orientation) tick() {
	if !o.haveImu {
		return
	}
	f := o.lastImu
	o.filter.UpdateIMU(
		DegToRad(float64(f.GyroX)), DegToRad(float64(f.GyroY)), DegToRad(float64(f.GyroZ)),
		float64(f.AccelX), float64(f.AccelY), float64(f.AccelZ),
	)
}

func (o *Orientation) publish() {
	upd := store.Insert(o.store, store.SensorsFusion, o.filter.Orientation())
	o.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})

	if o.haveImu {
		upd := store.Insert(o.store, store.SensorsInertial, o.lastImu)
		o.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
	}
	updMag := store.Insert(o.store, store.SensorsMag, o.lastMag)
	o.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: updMag})
}
