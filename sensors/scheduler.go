// Package sensors implements the deadline-paced sampling loops for the
// IMU, magnetometer, and depth sensors, and the event-driven leak sensor
// task.
package sensors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RunDeadline drives sample at a fixed period using absolute deadlines: a
// stall is absorbed as a single "behind schedule" warning and the next
// deadline is re-based to one period after the current time, never
// compensated with a catch-up burst.
// sample returns an error to be logged as a transient read failure without
// stopping the loop.
func RunDeadline(ctx context.Context, period time.Duration, log *logrus.Logger, name string, sample func() error) {
	deadline := time.Now().Add(period)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := sample(); err != nil {
			log.WithFields(logrus.Fields{"sensor": name, "err": err}).Warn("sensors: read failed, continuing")
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.WithField("sensor", name).Warn("sensors: behind schedule")
			deadline = time.Now()
		} else if !sleepOrDone(ctx, remaining) {
			return
		}
		deadline = deadline.Add(period)
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
