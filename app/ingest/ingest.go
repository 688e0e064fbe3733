// Package ingest runs one busy-polling worker per receive queue of every Ethernet port.
// Each worker inspects the first two octets of every received packet and releases it.
package ingest

import (
	"context"
	"sync"

	"github.com/rxqpoll/rxqpoll/app/pdump"
	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ealinit"
	"github.com/rxqpoll/rxqpoll/dpdk/ealthread"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var logger = logging.New("ingest")

var configurePort = ethdev.ConfigurePort

// Ingest is a running ingestion pipeline.
type Ingest struct {
	env         *ealinit.Env
	pool        *pktmbuf.Pool
	la          *ealthread.Allocator
	pdump       *pdump.Writer
	counter     CountInspector
	assignments []Assignment
	workers     []*Worker

	closeOnce sync.Once
	closeErr  error
}

// New initializes the runtime, configures every port, and launches workers.
// Errors are *StartupError naming the failing phase; nothing is left running on failure.
func New(cfg Config) (ing *Ingest, e error) {
	cfg.ApplyDefaults()
	if e := cfg.Validate(); e != nil {
		return nil, &StartupError{Phase: PhaseInit, Err: e}
	}

	ing = &Ingest{}
	if ing.env, e = ealinit.Init(cfg.Config, cfg.HwInfo); e != nil {
		return nil, &StartupError{Phase: PhaseInit, Err: e}
	}
	rt := ing.env.Runtime
	fail := func(phase string, e error) (*Ingest, error) {
		logger.Error("startup failed", zap.String("phase", phase), zap.Error(e))
		return nil, multierr.Append(&StartupError{Phase: phase, Err: e}, ing.Close())
	}

	if len(ing.env.Ports) == 0 {
		return fail(PhasePorts, ErrNoPorts)
	}
	if e := AssignCount(len(ing.env.Ports), cfg.QueuesPerPort, len(rt.All())); e != nil {
		return fail(PhaseAssign, e)
	}

	if cfg.Pool.Socket.IsAny() {
		cfg.Pool.Socket = rt.NumaSocketOf(rt.Main())
	}
	if ing.pool, e = pktmbuf.NewPool(cfg.Pool); e != nil {
		return fail(PhasePool, e)
	}

	for _, dev := range ing.env.Ports {
		if e := configurePort(dev, cfg.QueuesPerPort, ing.pool); e != nil {
			return fail(PhaseConfigure, e)
		}
	}

	if cfg.NumaAware {
		ing.la = ealthread.NewAllocator(rt)
		if e := cfg.Alloc.Validate(rt); e != nil {
			return fail(PhaseAssign, e)
		}
		ing.la.Config = cfg.Alloc
		ing.assignments, e = AssignNuma(ing.env.Ports, cfg.QueuesPerPort, ing.la)
	} else {
		portIDs := []int{}
		for _, dev := range ing.env.Ports {
			portIDs = append(portIDs, dev.ID())
		}
		ing.assignments, e = Assign(portIDs, cfg.QueuesPerPort, rt)
	}
	if e != nil {
		return fail(PhaseAssign, e)
	}

	inspector, e := ing.makeInspector(cfg.Inspect)
	if e != nil {
		return fail(PhaseLaunch, e)
	}
	for _, a := range ing.assignments {
		w := NewWorker(a, ing.env.Ports[a.Port].RxQueues()[a.Queue], inspector)
		if e := w.Launch(rt); e != nil {
			return fail(PhaseLaunch, e)
		}
		ing.workers = append(ing.workers, w)
	}

	logger.Info("ingest running",
		zap.Int("ports", len(ing.env.Ports)),
		zap.Int("queues-per-port", cfg.QueuesPerPort),
		zap.Stringer("pool", ing.pool),
		zap.Any("assignments", ing.assignments),
	)
	return ing, nil
}

func (ing *Ingest) makeInspector(cfg InspectConfig) (Inspector, error) {
	list := Inspectors{&ing.counter}
	if cfg.Log {
		list = append(list, NewLogInspector(nil, cfg.LogSampling))
	}
	if cfg.Pdump != nil {
		w, e := pdump.NewWriter(*cfg.Pdump)
		if e != nil {
			return nil, e
		}
		ing.pdump = w
		list = append(list, w)
	}
	if len(list) == 1 {
		return list[0], nil
	}
	return list, nil
}

// Runtime returns the runtime handle.
func (ing *Ingest) Runtime() *eal.Runtime {
	return ing.env.Runtime
}

// Ports returns Ethernet ports in ID order.
func (ing *Ingest) Ports() []ethdev.EthDev {
	return ing.env.Ports
}

// Pool returns the packet buffer pool.
func (ing *Ingest) Pool() *pktmbuf.Pool {
	return ing.pool
}

// Assignments returns queue-to-lcore assignments.
func (ing *Ingest) Assignments() []Assignment {
	return ing.assignments
}

// Workers returns workers, one per assignment.
func (ing *Ingest) Workers() []*Worker {
	return ing.workers
}

// Inspected returns the number of inspected packets across all workers.
func (ing *Ingest) Inspected() uint64 {
	return ing.counter.Count()
}

// Pdump returns the pcapng writer, or nil if disabled.
func (ing *Ingest) Pdump() *pdump.Writer {
	return ing.pdump
}

// RequestStop asks every worker to return without waiting.
// This may be invoked from any goroutine.
func (ing *Ingest) RequestStop() {
	for _, w := range ing.workers {
		w.RequestStop()
	}
}

// Wait blocks until every worker has returned or ctx is cancelled.
func (ing *Ingest) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, w := range ing.workers {
			w.Wait()
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested", zap.Error(context.Cause(ctx)))
	case <-done:
		logger.Info("all workers returned")
	}
}

// Close stops workers, stops ports, and releases the pool.
func (ing *Ingest) Close() error {
	ing.closeOnce.Do(func() {
		for _, w := range ing.workers {
			ing.closeErr = multierr.Append(ing.closeErr, w.Stop())
		}
		if ing.la != nil {
			ing.la.Clear()
		}
		if ing.env != nil {
			ing.closeErr = multierr.Append(ing.closeErr, ing.env.Close())
		}
		if ing.pdump != nil {
			ing.closeErr = multierr.Append(ing.closeErr, ing.pdump.Close())
		}
		if ing.pool != nil {
			ing.closeErr = multierr.Append(ing.closeErr, ing.pool.Close())
		}
		logger.Info("ingest closed", zap.Uint64("inspected", ing.counter.Count()), zap.Error(ing.closeErr))
	})
	return ing.closeErr
}

// Run starts the pipeline, blocks until ctx is cancelled or every worker has returned, and then shuts down.
func Run(ctx context.Context, cfg Config) error {
	ing, e := New(cfg)
	if e != nil {
		return e
	}
	ing.Wait(ctx)
	return ing.Close()
}
