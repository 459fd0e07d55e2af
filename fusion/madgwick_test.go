package fusion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMadgwickStaysUnitQuaternion(t *testing.T) {
	m := NewMadgwick(0.001, 0.041)
	for i := 0; i < 1000; i++ {
		m.UpdateIMU(0.01, -0.02, 0.005, 0, 0, 1)
	}
	o := m.Orientation()
	norm := math.Sqrt(o.W*o.W + o.X*o.X + o.Y*o.Y + o.Z*o.Z)
	require.InDelta(t, 1.0, norm, 1e-6)
}

func TestMadgwickConvergesToLevelFromRest(t *testing.T) {
	m := NewMadgwick(0.001, 0.041)
	// Gravity straight down the body Z axis, no rotation: filter should
	// settle near the identity orientation (level, no tilt).
	for i := 0; i < 5000; i++ {
		m.UpdateIMU(0, 0, 0, 0, 0, 1)
	}
	o := m.Orientation()
	require.InDelta(t, 1.0, o.W, 0.05)
	require.InDelta(t, 0.0, o.X, 0.05)
	require.InDelta(t, 0.0, o.Y, 0.05)
}

func TestResetReturnsIdentity(t *testing.T) {
	m := NewMadgwick(0.001, 0.041)
	m.UpdateIMU(1, 1, 1, 0.1, 0.1, 0.9)
	m.Reset()
	o := m.Orientation()
	require.Equal(t, 1.0, o.W)
	require.Equal(t, 0.0, o.X)
	require.Equal(t, 0.0, o.Y)
	require.Equal(t, 0.0, o.Z)
}

func TestDegToRad(t *testing.T) {
	require.InDelta(t, math.Pi, DegToRad(180), 1e-9)
}
