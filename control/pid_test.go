package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"rov-go/store"
)

func TestDepthHoldStepResponse(t *testing.T) {
	gains := store.PIDGains{Kp: 1.2, Ki: 0.1, Kd: 0.3, MaxIntegral: 2.0}
	pid := NewPID(gains, 0.020)

	errVal := 1.00 - 1.20 // target - observed
	correction := pid.Update(errVal)
	correction = clampForTest(correction, -0.30, 0.30)

	require.InDelta(t, -0.30, correction, 1e-9)
}

func TestPIDResetZeroesState(t *testing.T) {
	pid := NewPID(store.PIDGains{Kp: 1, Ki: 1, Kd: 1, MaxIntegral: 10}, 0.020)
	pid.Update(5)
	pid.Update(3)

	pid.Reset()
	require.Equal(t, 0.0, pid.integral)
	require.Equal(t, 0.0, pid.lastError)
}

func TestPIDIntegralClampsToMaxIntegral(t *testing.T) {
	pid := NewPID(store.PIDGains{Kp: 0, Ki: 1, Kd: 0, MaxIntegral: 1}, 1.0)
	for i := 0; i < 10; i++ {
		pid.Update(10)
	}
	require.InDelta(t, 1.0, pid.integral, 1e-9)
}

func clampForTest(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
