package sensors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
)

const magPeriod = 10 * time.Millisecond

// MagReader reads one magnetometer frame.
type MagReader interface {
	ReadMag() (types.MagFrame, error)
}

// MagTask samples the magnetometer at a 10ms deadline-paced period.
type MagTask struct {
	handle *bus.Handle
	store  *store.Store
	reader MagReader
	log    *logrus.Logger
}

// NewMagTask builds the magnetometer sampling task.
func NewMagTask(h *bus.Handle, s *store.Store, reader MagReader, log *logrus.Logger) *MagTask {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MagTask{handle: h, store: s, reader: reader, log: log}
}

// Run starts the deadline-paced sampling loop.
func (t *MagTask) Run(ctx context.Context) {
	RunDeadline(ctx, magPeriod, t.log, "mag", t.sample)
}

func (t *MagTask) sample() error {
	frame, err := t.reader.ReadMag()
	if err != nil {
		t.handle.Send(types.NewErrorEvent(types.ErrTransient, err))
		return err
	}

	upd := store.Insert(t.store, store.SensorsMag, frame)
	t.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
	t.handle.Send(&types.Event{Kind: types.EventSensorFrame, Frame: frame})
	return nil
}
