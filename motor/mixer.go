// Package motor implements the movement mixer (summing Movement sources
// into per-thruster speeds) and the motor driver (converting a speed into
// a PWM pulse width).
package motor

import (
	"context"
	"time"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
)

const (
	mixerPeriod = 20 * time.Millisecond
	maxUpdateAge = 200 * time.Millisecond
)

// Mixer sums MOVEMENT_JOYSTICK, MOVEMENT_DEPTH, MOVEMENT_LEVELING, and
// MOVEMENT_AI into MOVEMENT_CALCULATED, then applies the fixed 8-thruster
// affine mix to produce MOTOR_SPEED, gated by ARMED.
type Mixer struct {
	handle *bus.Handle
	store  *store.Store
}

// NewMixer builds the mixer.
func NewMixer(h *bus.Handle, s *store.Store) *Mixer {
	return &Mixer{handle: h, store: s}
}

// Run drives the mixer on a fixed 20ms tick until ctx is cancelled or an
// Exit event arrives.
func (m *Mixer) Run(ctx context.Context) {
	ticker := time.NewTicker(mixerPeriod)
	defer ticker.Stop()

	listener := m.handle.Listener()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-listener:
			if ev.Kind == types.EventExit {
				return
			}
			store.ApplyEvent(m.store, ev)
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Mixer) tick() {
	now := time.Now()
	combined := types.SumMovements(
		m.freshMovement(store.MovementJoystick, now),
		m.freshMovement(store.MovementDepth, now),
		m.freshMovement(store.MovementLeveling, now),
		m.freshMovement(store.MovementAI, now),
	)

	upd := store.Insert(m.store, store.MovementCalculated, combined)
	m.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})

	speeds := Mix(combined)

	if !m.armed(now) {
		speeds = ZeroSpeeds()
	}

	frames := make(map[types.MotorID]types.MotorFrame, len(speeds))
	for id, s := range speeds {
		frames[id] = types.MotorFrame{Speed: s}
	}
	updMotor := store.Insert(m.store, store.MotorsSpeed, frames)
	m.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: updMotor})
}

func (m *Mixer) freshMovement(tok store.Token[types.Movement], now time.Time) types.Movement {
	v, at, ok := store.GetWithTime(m.store, tok)
	if !ok || now.Sub(at) > maxUpdateAge {
		return types.ZeroMovement
	}
	return v
}

func (m *Mixer) armed(now time.Time) bool {
	armed, at, ok := store.GetWithTime(m.store, store.MotorsArmed)
	if !ok || armed != types.ArmedState {
		return false
	}
	return now.Sub(at) <= maxUpdateAge
}

// Mix applies the fixed affine 8-thruster mix to a combined Movement,
// saturating each motor's speed to [-1, 1].
func Mix(mv types.Movement) map[types.MotorID]types.Speed {
	x, y, z := float64(mv.X), float64(mv.Y), float64(mv.Z)
	xRot, zRot := float64(mv.XRot), float64(mv.ZRot)
	yRot := float64(mv.YRot)

	return map[types.MotorID]types.Speed{
		types.MotorUpF:    types.Speed(z + xRot).Clamp(),
		types.MotorUpB:    types.Speed(z - xRot).Clamp(),
		types.MotorUpR:    types.Speed(z + yRot).Clamp(),
		types.MotorUpL:    types.Speed(z - yRot).Clamp(),
		types.MotorFrontL: types.Speed(y + x + zRot).Clamp(),
		types.MotorFrontR: types.Speed(y - x - zRot).Clamp(),
		types.MotorRearL:  types.Speed(-y + x - zRot).Clamp(),
		types.MotorRearR:  types.Speed(-y - x + zRot).Clamp(),
	}
}

// ZeroSpeeds returns all eight motors at exactly zero, for the disarm gate.
func ZeroSpeeds() map[types.MotorID]types.Speed {
	out := make(map[types.MotorID]types.Speed, len(types.AllMotors))
	for _, id := range types.AllMotors {
		out[id] = types.SpeedZero
	}
	return out
}
