package sensors

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"rov-go/bus"
	"rov-go/store"
	"rov-go/types"
)

const (
	depthPeriod         = 10 * time.Millisecond
	gravity             = 9.80665 // m/s^2
)

// DepthConfig carries the conversion constants from raw pressure to
// depth. FluidDensity defaults to 1029.0 kg/m^3 (seawater) matching the
// reference vehicle's configured density.
type DepthConfig struct {
	FluidDensity          float64
	AtmosphericPressurePa float64
}

// DefaultDepthConfig returns the reference seawater density and standard
// atmospheric pressure.
func DefaultDepthConfig() DepthConfig {
	return DepthConfig{FluidDensity: 1029.0, AtmosphericPressurePa: 101325.0}
}

// PressureReading is one raw pressure-sensor sample before conversion.
type PressureReading struct {
	PressurePa  float64
	Temperature types.Celsius
}

// DepthReader reads one raw pressure-sensor sample.
type DepthReader interface {
	ReadPressure() (PressureReading, error)
}

// DepthTask samples the depth/pressure sensor at a 10ms deadline-paced
// period, converting raw pressure to depth via the configured fluid
// density.
type DepthTask struct {
	handle *bus.Handle
	store  *store.Store
	reader DepthReader
	cfg    DepthConfig
	log    *logrus.Logger
}

// NewDepthTask builds the depth sampling task.
func NewDepthTask(h *bus.Handle, s *store.Store, reader DepthReader, cfg DepthConfig, log *logrus.Logger) *DepthTask {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DepthTask{handle: h, store: s, reader: reader, cfg: cfg, log: log}
}

// Run starts the deadline-paced sampling loop.
func (t *DepthTask) Run(ctx context.Context) {
	RunDeadline(ctx, depthPeriod, t.log, "depth", t.sample)
}

func (t *DepthTask) sample() error {
	reading, err := t.reader.ReadPressure()
	if err != nil {
		t.handle.Send(types.NewErrorEvent(types.ErrTransient, err))
		return err
	}

	frame := types.DepthFrame{
		Depth:       t.toDepth(reading.PressurePa),
		Temperature: reading.Temperature,
	}

	upd := store.Insert(t.store, store.SensorsDepth, frame)
	t.handle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: upd})
	return nil
}

func (t *DepthTask) toDepth(pressurePa float64) types.Meters {
	gauge := pressurePa - t.cfg.AtmosphericPressurePa
	return types.Meters(gauge / (t.cfg.FluidDensity * gravity))
}
