package motor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rov-go/bus"
	"rov-go/errcode"
	"rov-go/hal"
	"rov-go/store"
	"rov-go/types"
	"rov-go/x/mathx"
	"rov-go/x/ramp"
)

// maxConsecutiveFailures is the sustained-write-failure threshold past
// which the driver raises an Event::Error instead of silently retrying.
const maxConsecutiveFailures = 5

// Pulse converts a signed fractional speed in [-1, 1] to a PWM pulse
// width, per the motor config's calibration.
func Pulse(speed types.Speed, cfg types.MotorConfig) time.Duration {
	scaled := float64(speed) * float64(cfg.MaxSpeed)

	bound := cfg.Forward
	if scaled < 0 {
		bound = cfg.Reverse
	}
	absPct := mathx.Clamp(absFloat(scaled)*100, 0, 100)

	pulseUs := (float64(bound.Microseconds())*absPct + float64(cfg.Center.Microseconds())*(100-absPct)) / 100
	return time.Duration(pulseUs) * time.Microsecond
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Driver writes each motor's commanded speed to its PWM channel, retrying
// on write failure and escalating to an Event::Error after
// maxConsecutiveFailures in a row.
type Driver struct {
	handle *bus.Handle
	store  *store.Store
	pins   map[types.MotorID]hal.PWMPin
	cfgs   map[types.MotorID]types.MotorConfig
	log    *logrus.Logger

	mu       sync.Mutex
	failures map[types.MotorID]int
	current  map[types.MotorID]types.Speed

	rampMu     sync.Mutex
	rampCancel map[types.MotorID]chan struct{}
}

// NewDriver builds the motor driver for the given PWM pins and their
// calibration.
func NewDriver(h *bus.Handle, s *store.Store, pins map[types.MotorID]hal.PWMPin, cfgs map[types.MotorID]types.MotorConfig, log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Driver{
		handle:     h,
		store:      s,
		pins:       pins,
		cfgs:       cfgs,
		log:        log,
		failures:   make(map[types.MotorID]int),
		current:    make(map[types.MotorID]types.Speed),
		rampCancel: make(map[types.MotorID]chan struct{}),
	}
	for id, cfg := range cfgs {
		if pin, ok := pins[id]; ok {
			_ = pin.Configure(cfg.Period)
		}
		d.current[id] = types.SpeedZero
	}
	return d
}

// Run watches MOTOR_SPEED on the store via bus StoreUpdate events and
// writes each change to its PWM channel.
func (d *Driver) Run(ctx context.Context) {
	listener := d.handle.Listener()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-listener:
			switch ev.Kind {
			case types.EventExit:
				return
			case types.EventStoreUpdate:
				store.ApplyEvent(d.store, ev)
				d.onUpdate(ev)
			}
		}
	}
}

func (d *Driver) onUpdate(ev *types.Event) {
	u, ok := ev.Update.(store.Update)
	if !ok || u.Key != store.MotorsSpeed.Key() {
		return
	}
	frames, ok := u.Value.(map[types.MotorID]types.MotorFrame)
	if !ok {
		return
	}
	for id, frame := range frames {
		d.write(id, frame.Speed)
	}
}

func (d *Driver) write(id types.MotorID, speed types.Speed) {
	cfg, ok := d.cfgs[id]
	if !ok {
		return
	}
	pin, ok := d.pins[id]
	if !ok {
		return
	}

	target := speed
	if cfg.Ramp.Steps > 0 {
		d.rampTo(id, cfg, pin, target)
	} else {
		d.cancelRamp(id)
		d.writePulse(id, pin, cfg, target)
	}
}

// rampTo soft-starts id towards target over cfg.Ramp.Steps increments,
// cancelling any ramp already in flight for id first so two overlapping
// ramps never fight over the same PWM channel. The ramp itself runs on its
// own goroutine, ticked by a real timer, so it never blocks Run's event
// loop — mirroring the teacher's rp2PWM.Ramp cancel-and-replace pattern.
func (d *Driver) rampTo(id types.MotorID, cfg types.MotorConfig, pin hal.PWMPin, target types.Speed) {
	const top = 2000 // fixed-point: speed in [-1,1] mapped to [0,2000], 1000 == zero

	d.mu.Lock()
	cur := speedToFixed(d.current[id], top)
	d.mu.Unlock()
	to := speedToFixed(target, top)

	d.rampMu.Lock()
	if prev, ok := d.rampCancel[id]; ok {
		close(prev)
	}
	cancel := make(chan struct{})
	d.rampCancel[id] = cancel
	d.rampMu.Unlock()

	tick := func(dur time.Duration) bool {
		select {
		case <-cancel:
			return false
		case <-time.After(dur):
			return true
		}
	}

	go ramp.StartLinear(cur, to, top, uint32(cfg.Ramp.Duration.Milliseconds()), cfg.Ramp.Steps, tick,
		func(level uint16) {
			d.writePulse(id, pin, cfg, fixedToSpeed(level, top))
		},
	)
}

// cancelRamp stops any in-flight ramp for id so a direct (non-ramped) write
// isn't immediately overwritten by a stale ramp step still in flight.
func (d *Driver) cancelRamp(id types.MotorID) {
	d.rampMu.Lock()
	defer d.rampMu.Unlock()
	if prev, ok := d.rampCancel[id]; ok {
		close(prev)
		delete(d.rampCancel, id)
	}
}

func speedToFixed(s types.Speed, top uint16) uint16 {
	v := (float64(s) + 1) / 2 * float64(top)
	return uint16(mathx.Clamp(v, 0, float64(top)))
}

func fixedToSpeed(level, top uint16) types.Speed {
	v := float64(level)/float64(top)*2 - 1
	return types.Speed(v).Clamp()
}

func (d *Driver) writePulse(id types.MotorID, pin hal.PWMPin, cfg types.MotorConfig, speed types.Speed) {
	pulse := Pulse(speed, cfg)
	if err := pin.SetPulse(pulse); err != nil {
		d.mu.Lock()
		d.failures[id]++
		n := d.failures[id]
		d.mu.Unlock()

		d.log.WithFields(logrus.Fields{"motor": id, "err": err}).Warn("motor: pwm write failed, retrying next tick")
		if n >= maxConsecutiveFailures {
			wrapped := &errcode.E{C: errcode.Timeout, Op: "motor.write_pulse", Msg: string(id), Err: err}
			d.handle.Send(types.NewErrorEvent(types.ErrTransient, wrapped))
		}
		return
	}

	d.mu.Lock()
	d.failures[id] = 0
	d.current[id] = speed
	d.mu.Unlock()
}
