// Package control implements the fixed-period PID loops that turn a store
// observation into a Movement contribution: depth hold and leveling.
package control

import (
	"rov-go/store"
	"rov-go/x/mathx"
)

// PID is a clamped-integral proportional-integral-derivative controller,
// evaluated at a fixed period.
type PID struct {
	Gains  store.PIDGains
	Period float64 // seconds

	integral  float64
	lastError float64
}

// NewPID builds a PID with the given gains and fixed evaluation period in
// seconds.
func NewPID(gains store.PIDGains, periodSeconds float64) *PID {
	return &PID{Gains: gains, Period: periodSeconds}
}

// SetGains replaces the compiled-in gains with a runtime override, without
// touching the controller's integral/derivative state.
func (p *PID) SetGains(g store.PIDGains) { p.Gains = g }

// Update advances the controller by one period given the current error and
// returns the correction.
func (p *PID) Update(errVal float64) float64 {
	p.integral += errVal * p.Period
	p.integral = mathx.Clamp(p.integral, -p.Gains.MaxIntegral, p.Gains.MaxIntegral)

	derivative := (errVal - p.lastError) / p.Period
	p.lastError = errVal

	return p.Gains.Kp*errVal + p.Gains.Ki*p.integral + p.Gains.Kd*derivative
}

// Reset zeroes the integral and last-error terms, so the next Update
// starts as if the controller had just been constructed. Used whenever a
// loop is disabled, per the PID-reset invariant.
func (p *PID) Reset() {
	p.integral = 0
	p.lastError = 0
}
