package motor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rov-go/types"
)

func defaultCfg() types.MotorConfig {
	return types.MotorConfig{
		MaxSpeed: 0.5,
		Reverse:  1100 * time.Microsecond,
		Center:   1500 * time.Microsecond,
		Forward:  1900 * time.Microsecond,
		Period:   2500 * time.Microsecond,
	}
}

func TestPWMBoundaries(t *testing.T) {
	cfg := defaultCfg()

	require.Equal(t, 1700*time.Microsecond, Pulse(1.0, cfg))
	require.Equal(t, 1300*time.Microsecond, Pulse(-1.0, cfg))
	require.Equal(t, 1500*time.Microsecond, Pulse(0, cfg))
}

func TestPulseMonotonicInSpeed(t *testing.T) {
	cfg := defaultCfg()
	prev := Pulse(-1.0, cfg)
	for s := -0.9; s <= 1.0; s += 0.1 {
		cur := Pulse(types.Speed(s), cfg)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}
