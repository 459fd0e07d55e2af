// Package hal defines the minimal device interfaces sensor and motor
// workers program against. Register-bitfield/peripheral scaffolding is out
// of scope; each trait here is the smallest surface a worker needs to
// read or write its one piece of hardware.
package hal

import (
	"context"
	"time"
)

// I2C is the subset of bus access every I2C sensor driver needs: a single
// combined write-then-read transaction, addressed by 7-bit device address.
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

// Pull selects a GPIO input's internal pull resistor.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIOPin is a single digital pin, configurable as input or output.
type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
}

// Edge selects which transition an IRQPin's handler fires on.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// IRQPin is a GPIOPin that can additionally fire a handler on an edge,
// used for the leak sensor: the hardware debounces, this just dispatches.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// PWMPin is a single PWM channel: a fixed period and a pulse width set on
// every motor driver tick.
type PWMPin interface {
	Configure(period time.Duration) error
	SetPulse(width time.Duration) error
}

// Register is the minimal device trait peripheral drivers are built
// against: addressed byte reads and writes, nothing more. Field-enum
// register composition lives in the caller, not in this interface.
type Register interface {
	Read(ctx context.Context, addr byte, buf []byte) error
	Write(ctx context.Context, addr byte, buf []byte) error
}
