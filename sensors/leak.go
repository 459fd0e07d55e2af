package sensors

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"rov-go/bus"
	"rov-go/errcode"
	"rov-go/hal"
	"rov-go/store"
	"rov-go/types"
)

// LeakTask is event-driven rather than deadline-paced: it arms a GPIO edge
// interrupt on the leak sensor pin (the hardware debounces) and publishes
// on every transition.
type LeakTask struct {
	handle *bus.Handle
	store  *store.Store
	pin    hal.IRQPin
	log    *logrus.Logger

	events chan bool
	drops  atomic.Uint32
}

// NewLeakTask builds the leak sensor task.
func NewLeakTask(h *bus.Handle, s *store.Store, pin hal.IRQPin, log *logrus.Logger) *LeakTask {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LeakTask{handle: h, store: s, pin: pin, log: log, events: make(chan bool, 8)}
}

// Run arms the interrupt and republishes every transition until ctx is
// cancelled.
func (t *LeakTask) Run(ctx context.Context) {
	if err := t.pin.ConfigureInput(hal.PullUp); err != nil {
		t.handle.Send(types.NewErrorEvent(types.ErrFatal, &errcode.E{C: errcode.HALNotReady, Op: "leak.configure", Err: err}))
		return
	}

	handler := func() {
		level := t.pin.Get()
		select {
		case t.events <- level:
		default:
			t.drops.Add(1)
		}
	}
	if err := t.pin.SetIRQ(hal.EdgeBoth, handler); err != nil {
		t.handle.Send(types.NewErrorEvent(types.ErrFatal, &errcode.E{C: errcode.HALNotReady, Op: "leak.set_irq", Err: err}))
		return
	}
	defer func() { _ = t.pin.ClearIRQ() }()

	for {
		select {
		case <-ctx.Done():
			return
		case level := <-t.events:
			upd := store.Insert(t.store, store.Leak, level)
			t.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
			t.handle.Send(&types.Event{Kind: types.EventSensorFrame, Frame: level, At: time.Now()})
		}
	}
}
