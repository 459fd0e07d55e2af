// Command rovd is the onboard control process: it wires the event bus, the
// per-worker stores, and every sensor/control/motor/network worker
// together and blocks until shutdown.
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"rov-go/bus"
	"rov-go/config"
	"rov-go/control"
	"rov-go/fusion"
	"rov-go/hal"
	"rov-go/motor"
	"rov-go/netlink"
	"rov-go/sensors"
	"rov-go/status"
	"rov-go/store"
	"rov-go/system"
	"rov-go/types"
)

// workerCount is the number of bus handles to create: one per worker
// spawned below, all on the same bus so every worker's StoreUpdate and
// control events reach every other worker.
const workerCount = 11

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})

	path, err := config.FindConfig(os.Getenv("ROV_CONFIG"))
	if err != nil {
		log.WithError(err).Fatal("rovd: no configuration file found")
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).Fatal("rovd: failed to load configuration")
	}

	devices, err := openDevices(cfg)
	if err != nil {
		log.WithError(err).Fatal("rovd: peripheral init failed")
	}

	handles := bus.Create(workerCount, 50, log)
	stores := make([]*store.Store, workerCount)
	for i := range stores {
		stores[i] = store.New()
	}

	mgr := system.New(log)

	mgr.Spawn("orientation", func(ctx context.Context) error {
		fusion.NewOrientation(handles[0], stores[0]).Run(ctx)
		return nil
	})
	mgr.Spawn("imu", func(ctx context.Context) error {
		sensors.NewIMUTask(handles[1], stores[1], devices.IMU, log).Run(ctx)
		return nil
	})
	mgr.Spawn("mag", func(ctx context.Context) error {
		sensors.NewMagTask(handles[2], stores[2], devices.Mag, log).Run(ctx)
		return nil
	})
	mgr.Spawn("depth-sensor", func(ctx context.Context) error {
		sensors.NewDepthTask(handles[3], stores[3], devices.Depth, cfg.Depth, log).Run(ctx)
		return nil
	})
	mgr.Spawn("leak", func(ctx context.Context) error {
		sensors.NewLeakTask(handles[4], stores[4], devices.Leak, log).Run(ctx)
		return nil
	})
	mgr.Spawn("depth-control", func(ctx context.Context) error {
		control.NewDepth(handles[5], stores[5], cfg.DepthPID).Run(ctx)
		return nil
	})
	mgr.Spawn("leveling", func(ctx context.Context) error {
		control.NewLeveling(handles[6], stores[6], cfg.LevelingPID).Run(ctx)
		return nil
	})
	mgr.Spawn("mixer", func(ctx context.Context) error {
		motor.NewMixer(handles[7], stores[7]).Run(ctx)
		return nil
	})
	mgr.Spawn("status", func(ctx context.Context) error {
		status.NewAggregator(handles[8], stores[8]).Run(ctx)
		return nil
	})

	mgr.Spawn("netlink", func(ctx context.Context) error {
		netlink.NewAdapter(handles[9], stores[9], cfg.Network, log).Run(ctx)
		return nil
	})

	mgr.Spawn("motor-driver", func(ctx context.Context) error {
		motor.NewDriver(handles[10], stores[10], devices.Motors, devices.MotorConfigs, log).Run(ctx)
		return nil
	})

	bootstrap(handles[9], stores[9], handles[7], stores[7], cfg)

	if err := mgr.Run(); err != nil {
		log.WithError(err).Error("rovd: shutting down with error")
		os.Exit(1)
	}
	log.Info("rovd: clean shutdown")
}

// bootstrap writes the process's static, owned entries and fans each out
// over the bus so every worker's mirrored store sees them immediately:
// system info from the netlink worker (it's the one publishing it to the
// surface) and the initial disarmed state from the mixer (it's the one
// gating motor output on it).
func bootstrap(netHandle *bus.Handle, netStore *store.Store, mixerHandle *bus.Handle, mixerStore *store.Store, cfg *config.Config) {
	infoUpd := store.Insert(netStore, store.SystemInfo, types.SystemInfo{Hostname: cfg.Hostname, Version: cfg.Version})
	netHandle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: infoUpd})

	armedUpd := store.Insert(mixerStore, store.MotorsArmed, types.Disarmed)
	mixerHandle.Send(&types.Event{Kind: types.EventStoreUpdate, Update: armedUpd})
}

// devices collects the peripheral handles every worker needs; wiring them
// up is the one part of the system that is genuinely platform-specific.
type devices struct {
	IMU          sensors.IMUReader
	Mag          sensors.MagReader
	Depth        sensors.DepthReader
	Leak         hal.IRQPin
	Motors       map[types.MotorID]hal.PWMPin
	MotorConfigs map[types.MotorID]types.MotorConfig
}

func openDevices(cfg *config.Config) (*devices, error) {
	// Concrete peripheral wiring (I2C bus selection, GPIO pin numbers, PWM
	// channel assignment) is deployment-specific and supplied by the
	// platform build, which fills in devices.IMU/Mag/Depth/Leak/Motors
	// before handing this struct off to the workers above.
	motorConfigs := make(map[types.MotorID]types.MotorConfig, len(cfg.Motors))
	for name, m := range cfg.Motors {
		motorConfigs[types.MotorID(name)] = m.ToMotorConfig()
	}
	return &devices{MotorConfigs: motorConfigs}, nil
}
