// Package fusion accumulates inertial and magnetic sensor frames and
// produces a fused orientation estimate via a Madgwick AHRS filter.
package fusion

import (
	"math"

	"rov-go/types"
)

// Madgwick is a gradient-descent IMU orientation filter (Sebastian
// Madgwick, 2010). Only the IMU-only update path (gyro + accelerometer) is
// used; the magnetometer is latched and republished raw but never fused,
// per the current vehicle firmware's actual behavior.
type Madgwick struct {
	SamplePeriod float64 // seconds
	Beta         float64

	q0, q1, q2, q3 float64
}

// NewMadgwick builds a filter at the identity orientation.
func NewMadgwick(samplePeriod, beta float64) *Madgwick {
	return &Madgwick{SamplePeriod: samplePeriod, Beta: beta, q0: 1}
}

// Reset returns the filter to the identity orientation, for use when the
// fusion worker restarts.
func (m *Madgwick) Reset() {
	m.q0, m.q1, m.q2, m.q3 = 1, 0, 0, 0
}

// Orientation returns the current estimate as a unit quaternion.
func (m *Madgwick) Orientation() types.Orientation {
	return types.Orientation{W: m.q0, X: m.q1, Y: m.q2, Z: m.q3}
}

// UpdateIMU advances the filter by one sample given gyro rates in
// radians/second and accelerometer readings in g (any consistent unit,
// since the accelerometer vector is normalized internally).
func (m *Madgwick) UpdateIMU(gx, gy, gz, ax, ay, az float64) {
	q0, q1, q2, q3 := m.q0, m.q1, m.q2, m.q3

	// Rate of change of quaternion from gyroscope.
	qDot1 := 0.5 * (-q1*gx - q2*gy - q3*gz)
	qDot2 := 0.5 * (q0*gx + q2*gz - q3*gy)
	qDot3 := 0.5 * (q0*gy - q1*gz + q3*gx)
	qDot4 := 0.5 * (q0*gz + q1*gy - q2*gx)

	// Normalize accelerometer measurement; skip the correction step if
	// degenerate (free fall / zero reading).
	if !(ax == 0 && ay == 0 && az == 0) {
		recipNorm := 1.0 / math.Sqrt(ax*ax+ay*ay+az*az)
		ax *= recipNorm
		ay *= recipNorm
		az *= recipNorm

		// Auxiliary variables to avoid repeated arithmetic.
		_2q0 := 2.0 * q0
		_2q1 := 2.0 * q1
		_2q2 := 2.0 * q2
		_2q3 := 2.0 * q3
		_4q0 := 4.0 * q0
		_4q1 := 4.0 * q1
		_4q2 := 4.0 * q2
		_8q1 := 8.0 * q1
		_8q2 := 8.0 * q2
		q0q0 := q0 * q0
		q1q1 := q1 * q1
		q2q2 := q2 * q2
		q3q3 := q3 * q3

		s0 := _4q0*q2q2 + _2q2*ax + _4q0*q1q1 - _2q1*ay
		s1 := _4q1*q3q3 - _2q3*ax + 4.0*q0q0*q1 - _2q0*ay - _4q1 + _8q1*q1q1 + _8q1*q2q2 + _4q1*az
		s2 := 4.0*q0q0*q2 + _2q0*ax + _4q2*q3q3 - _2q3*ay - _4q2 + _8q2*q1q1 + _8q2*q2q2 + _4q2*az
		s3 := 4.0*q1q1*q3 - _2q1*ax + 4.0*q2q2*q3 - _2q2*ay
		// A zero gradient means the estimate already agrees with the
		// accelerometer; skip the correction rather than divide by zero.
		if normS := math.Sqrt(s0*s0 + s1*s1 + s2*s2 + s3*s3); normS > 0 {
			recipNormS := 1.0 / normS
			s0 *= recipNormS
			s1 *= recipNormS
			s2 *= recipNormS
			s3 *= recipNormS

			qDot1 -= m.Beta * s0
			qDot2 -= m.Beta * s1
			qDot3 -= m.Beta * s2
			qDot4 -= m.Beta * s3
		}
	}

	q0 += qDot1 * m.SamplePeriod
	q1 += qDot2 * m.SamplePeriod
	q2 += qDot3 * m.SamplePeriod
	q3 += qDot4 * m.SamplePeriod

	recipNorm := 1.0 / math.Sqrt(q0*q0+q1*q1+q2*q2+q3*q3)
	m.q0 = q0 * recipNorm
	m.q1 = q1 * recipNorm
	m.q2 = q2 * recipNorm
	m.q3 = q3 * recipNorm
}

// DegToRad converts a per-axis gyro reading from degrees/second to
// radians/second.
func DegToRad(d float64) float64 { return d * math.Pi / 180 }
