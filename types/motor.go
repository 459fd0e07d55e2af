package types

import "time"

// MotorID names one of the vehicle's eight logical thrusters.
type MotorID string

const (
	MotorUpF    MotorID = "up_f"
	MotorUpB    MotorID = "up_b"
	MotorUpL    MotorID = "up_l"
	MotorUpR    MotorID = "up_r"
	MotorFrontL MotorID = "front_l"
	MotorFrontR MotorID = "front_r"
	MotorRearL  MotorID = "rear_l"
	MotorRearR  MotorID = "rear_r"
)

// AllMotors is the fixed motor set, in a stable iteration order.
var AllMotors = []MotorID{
	MotorUpF, MotorUpB, MotorUpL, MotorUpR,
	MotorFrontL, MotorFrontR, MotorRearL, MotorRearR,
}

// MotorFrame is one motor's commanded speed.
type MotorFrame struct {
	Speed Speed `json:"speed"`
}

// MotorConfig maps a logical thruster to a physical PWM channel, a
// max-speed scalar (full [-1,1] input rarely maps to full ESC travel), and
// the PWM pulse bounds/period for that channel.
type MotorConfig struct {
	Channel  int           `json:"channel"`
	MaxSpeed Speed         `json:"max_speed"`
	Reverse  time.Duration `json:"reverse_us"`
	Center   time.Duration `json:"center_us"`
	Forward  time.Duration `json:"forward_us"`
	Period   time.Duration `json:"period_us"`

	// Ramp, if non-zero Steps, soft-starts a speed change across Steps
	// increments spread over Duration instead of snapping to it.
	Ramp RampConfig `json:"ramp,omitempty"`
}

// RampConfig configures an optional linear speed ramp for one motor.
type RampConfig struct {
	Duration time.Duration `json:"duration"`
	Steps    uint16        `json:"steps"`
}

// DefaultMotorConfig matches the reference ESC timing used throughout the
// original vehicle firmware: a 400Hz period, centre at 1500us, and a
// max-speed scalar of 0.5 so full joystick deflection never demands more
// than half the ESC's rated travel.
func DefaultMotorConfig(channel int) MotorConfig {
	return MotorConfig{
		Channel:  channel,
		MaxSpeed: 0.5,
		Reverse:  1100 * time.Microsecond,
		Center:   1500 * time.Microsecond,
		Forward:  1900 * time.Microsecond,
		Period:   time.Second / 400,
	}
}
