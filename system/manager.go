// Package system spawns the worker set inside one structured scope and
// propagates shutdown, replacing the ad hoc sync.WaitGroup the embedded
// build used with golang.org/x/sync/errgroup.
package system

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var stopped atomic.Bool

// Stopped reports whether global shutdown has been requested: the flag is
// set when a Manager's process receives SIGINT/SIGTERM, when RequestStop
// or Manager.Shutdown is called, and when Manager.Run returns. An Exit
// event on the bus does not set it; workers handle Exit themselves.
// Workers poll this at the head of every loop iteration that doesn't
// already select on a context.
func Stopped() bool { return stopped.Load() }

// RequestStop flips the global shutdown flag.
func RequestStop() { stopped.Store(true) }

// Manager spawns named workers in a structured errgroup scope and blocks
// until either one exits with an error or the process receives an
// interrupt.
type Manager struct {
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	log    *logrus.Logger
}

// New builds a Manager whose context is cancelled on SIGINT/SIGTERM.
func New(log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stopped.Store(true)
	}()
	group, gctx := errgroup.WithContext(ctx)
	return &Manager{group: group, ctx: gctx, cancel: cancel, log: log}
}

// Context is the cancellation context every worker should select on.
func (m *Manager) Context() context.Context { return m.ctx }

// Spawn starts fn as a named worker in the manager's scope. fn should
// return promptly once its context is cancelled.
func (m *Manager) Spawn(name string, fn func(ctx context.Context) error) {
	m.group.Go(func() error {
		m.log.WithField("worker", name).Info("system: worker starting")
		err := fn(m.ctx)
		if err != nil {
			m.log.WithFields(logrus.Fields{"worker": name, "err": err}).Error("system: worker exited with error")
		} else {
			m.log.WithField("worker", name).Info("system: worker exited")
		}
		return err
	})
}

// Run blocks until every spawned worker has returned, then reports the
// first non-nil error, if any.
func (m *Manager) Run() error {
	err := m.group.Wait()
	stopped.Store(true)
	m.cancel()
	return err
}

// Shutdown cancels the manager's context, asking every worker to exit.
func (m *Manager) Shutdown() {
	stopped.Store(true)
	m.cancel()
}
