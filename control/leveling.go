package control

import (
	"context"
	"math"
	"time"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
)

const levelingPeriod = 20 * time.Millisecond

// Leveling runs the attitude-hold PID loops: it drives roll and pitch
// error against an upright target (identity orientation) into
// MOVEMENT_LEVELING's y_rot/x_rot axes, per the thruster convention (+XR
// pitch up, +YR roll counterclockwise).
type Leveling struct {
	handle   *bus.Handle
	store    *store.Store
	rollPID  *PID
	pitchPID *PID
}

// NewLeveling builds the leveling controller with the default gains for
// both axes; they may be overridden at runtime via LEVELING_PID_OVERRIDE.
func NewLeveling(h *bus.Handle, s *store.Store, gains store.PIDGains) *Leveling {
	return &Leveling{
		handle:   h,
		store:    s,
		rollPID:  NewPID(gains, levelingPeriod.Seconds()),
		pitchPID: NewPID(gains, levelingPeriod.Seconds()),
	}
}

// Run drives the loop on a fixed 20ms ticker until ctx is cancelled or an
// Exit event arrives on the bus.
func (l *Leveling) Run(ctx context.Context) {
	ticker := time.NewTicker(levelingPeriod)
	defer ticker.Stop()

	listener := l.handle.Listener()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-listener:
			if ev.Kind == types.EventExit {
				return
			}
			store.ApplyEvent(l.store, ev)
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Leveling) tick() {
	if gains, ok := store.Get(l.store, store.LevelingPIDOverride); ok {
		l.rollPID.SetGains(gains)
		l.pitchPID.SetGains(gains)
	}

	orient, ok := store.Get(l.store, store.SensorsFusion)
	if !ok {
		l.rollPID.Reset()
		l.pitchPID.Reset()
		upd := store.Remove(l.store, store.MovementLeveling)
		l.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
		return
	}

	roll, pitch := rollPitch(orient)

	rollCorrection := l.rollPID.Update(-roll)
	pitchCorrection := l.pitchPID.Update(-pitch)

	movement := types.Movement{
		YRot: types.Speed(rollCorrection).Clamp(),
		XRot: types.Speed(pitchCorrection).Clamp(),
	}
	upd := store.Insert(l.store, store.MovementLeveling, movement)
	l.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
}

// rollPitch extracts roll (rotation about the forward axis, positive
// counterclockwise) and pitch (rotation about the right axis, positive
// nose-up) from a unit quaternion.
func rollPitch(q types.Orientation) (roll, pitch float64) {
	sinRollCos := 2 * (q.W*q.X + q.Y*q.Z)
	cosRollCos := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll = math.Atan2(sinRollCos, cosRollCos)

	sinPitch := 2 * (q.W*q.Y - q.Z*q.X)
	switch {
	case sinPitch >= 1:
		pitch = math.Pi / 2
	case sinPitch <= -1:
		pitch = -math.Pi / 2
	default:
		pitch = math.Asin(sinPitch)
	}
	return roll, pitch
}
