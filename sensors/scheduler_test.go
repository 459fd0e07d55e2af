package sensors

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestRunDeadlineInvokesSampleRoughlyOnPeriod(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	var calls atomic.Int32
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	RunDeadline(ctx, 10*time.Millisecond, log, "test", func() error {
		calls.Add(1)
		return nil
	})

	// Roughly 5 calls over 50ms at a 10ms period; allow slack for scheduler jitter.
	require.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestRunDeadlineStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	done := make(chan struct{})
	go func() {
		RunDeadline(ctx, time.Millisecond, log, "test", func() error { return nil })
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("RunDeadline did not stop promptly after cancel")
	}
}
