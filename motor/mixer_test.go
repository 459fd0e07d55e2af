package motor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rov-go/types"
)

func TestMixSymmetryOnX(t *testing.T) {
	speeds := Mix(types.Movement{X: 0.4})
	require.Equal(t, speeds[types.MotorFrontL], speeds[types.MotorRearL])
	require.Equal(t, speeds[types.MotorFrontR], speeds[types.MotorRearR])
	require.Equal(t, -float64(speeds[types.MotorFrontR]), float64(speeds[types.MotorFrontL]))
}

func TestMixSymmetryOnY(t *testing.T) {
	speeds := Mix(types.Movement{Y: 0.5})
	require.Equal(t, speeds[types.MotorFrontL], speeds[types.MotorFrontR])
	require.Equal(t, speeds[types.MotorRearL], speeds[types.MotorRearR])
	require.Equal(t, -float64(speeds[types.MotorRearL]), float64(speeds[types.MotorFrontL]))
}

func TestMixSymmetryOnZ(t *testing.T) {
	speeds := Mix(types.Movement{Z: 0.6})
	for _, id := range []types.MotorID{types.MotorUpF, types.MotorUpB, types.MotorUpL, types.MotorUpR} {
		require.InDelta(t, 0.6, float64(speeds[id]), 1e-9)
	}
}

func TestMixSymmetryOnXRot(t *testing.T) {
	speeds := Mix(types.Movement{XRot: 0.3})
	require.InDelta(t, 0.3, float64(speeds[types.MotorUpF]), 1e-9)
	require.InDelta(t, -0.3, float64(speeds[types.MotorUpB]), 1e-9)
}

func TestMixSymmetryOnYRot(t *testing.T) {
	speeds := Mix(types.Movement{YRot: 0.3})
	require.InDelta(t, 0.3, float64(speeds[types.MotorUpR]), 1e-9)
	require.InDelta(t, -0.3, float64(speeds[types.MotorUpL]), 1e-9)
}

func TestMixSymmetryOnZRot(t *testing.T) {
	speeds := Mix(types.Movement{ZRot: 0.2})
	require.InDelta(t, 0.2, float64(speeds[types.MotorFrontL]), 1e-9)
	require.InDelta(t, -0.2, float64(speeds[types.MotorFrontR]), 1e-9)
	require.InDelta(t, -0.2, float64(speeds[types.MotorRearL]), 1e-9)
	require.InDelta(t, 0.2, float64(speeds[types.MotorRearR]), 1e-9)
}

func TestZeroSpeedsAllEightExactlyZero(t *testing.T) {
	speeds := ZeroSpeeds()
	require.Len(t, speeds, 8)
	for _, s := range speeds {
		require.Equal(t, types.SpeedZero, s)
	}
}
