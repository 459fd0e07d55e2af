package sensors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
)

const imuPeriod = time.Millisecond

// IMUReader reads one gyro/accelerometer frame from the sensor.
type IMUReader interface {
	ReadIMU() (types.ImuFrame, error)
}

// IMUTask samples the IMU at a 1ms deadline-paced period, publishing
// RAW_INERTIAL and a SensorFrame event for the fusion worker.
type IMUTask struct {
	handle *bus.Handle
	store  *store.Store
	reader IMUReader
	log    *logrus.Logger
}

// NewIMUTask builds the IMU sampling task.
func NewIMUTask(h *bus.Handle, s *store.Store, reader IMUReader, log *logrus.Logger) *IMUTask {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &IMUTask{handle: h, store: s, reader: reader, log: log}
}

// Run starts the deadline-paced sampling loop.
func (t *IMUTask) Run(ctx context.Context) {
	RunDeadline(ctx, imuPeriod, t.log, "imu", t.sample)
}

func (t *IMUTask) sample() error {
	frame, err := t.reader.ReadIMU()
	if err != nil {
		t.handle.Send(types.NewErrorEvent(types.ErrTransient, err))
		return err
	}

	upd := store.Insert(t.store, store.SensorsInertial, frame)
	t.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
	t.handle.Send(&types.Event{Kind: types.EventSensorFrame, Frame: frame})
	return nil
}
