package ethdev

import (
	"errors"
	"fmt"

	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Port configuration phases.
const (
	PhaseConfigure    = "configure"
	PhaseRxQueueSetup = "rxq-setup"
	PhaseStart        = "start"
	PhasePromisc      = "promisc"
)

// ConfigError indicates a port configuration failure.
type ConfigError struct {
	Port  int
	Phase string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("port %d %s: %v", e.Port, e.Phase, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Code returns the numeric error code of the underlying error, or 0 if it does not carry one.
func (e *ConfigError) Code() int {
	var errno eal.Errno
	if errors.As(e.Err, &errno) {
		return int(errno)
	}
	return 0
}

// ConfigurePort configures a port for receive-side scaling over queueCount RX queues, binds pool to every queue,
// starts the port, and enables promiscuous mode.
//
// On failure it returns *ConfigError naming the failing phase.
// If a phase after start fails, the port is stopped before returning.
func ConfigurePort(dev EthDev, queueCount int, pool *pktmbuf.Pool) error {
	logEntry := logger.With(zap.Int("port", dev.ID()), zap.String("name", dev.Name()), zap.Int("queues", queueCount))
	fail := func(phase string, e error) error {
		logEntry.Error("port configuration failed", zap.String("phase", phase), zap.Error(e))
		return &ConfigError{Port: dev.ID(), Phase: phase, Err: e}
	}

	info := dev.DevInfo()
	if queueCount <= 0 || (info.MaxRxQueues > 0 && queueCount > info.MaxRxQueues) {
		return fail(PhaseConfigure, fmt.Errorf("cannot configure %d RX queues, driver allows %d: %w",
			queueCount, info.MaxRxQueues, eal.Errno(unix.EINVAL)))
	}
	if !info.RSSOffloads.Has(DefaultRSS.HashFunctions) {
		return fail(PhaseConfigure, fmt.Errorf("driver RSS offloads %s do not cover %s: %w",
			info.RSSOffloads, DefaultRSS.HashFunctions, eal.Errno(unix.ENOTSUP)))
	}

	if e := dev.Configure(Config{RxQueues: queueCount, RSS: DefaultRSS}); e != nil {
		return fail(PhaseConfigure, e)
	}

	qcfg := RxQueueConfig{
		Capacity: info.RxDescLim.AdjustQueueCapacity(DefaultRxQueueCapacity),
		Socket:   dev.NumaSocket(),
		RxPool:   pool,
	}
	for q := 0; q < queueCount; q++ {
		if e := dev.SetupRxQueue(q, qcfg); e != nil {
			return fail(PhaseRxQueueSetup, fmt.Errorf("queue %d: %w", q, e))
		}
	}

	if e := dev.Start(); e != nil {
		return fail(PhaseStart, e)
	}

	if e := dev.SetPromisc(true); e != nil {
		if info.canIgnorePromiscError() {
			logEntry.Warn("promiscuous mode not supported", zap.Error(e))
		} else {
			return fail(PhasePromisc, multierr.Append(e, dev.Stop()))
		}
	}

	logEntry.Info("port started",
		zap.String("driver", info.DriverName),
		zap.Int("rxq-capacity", qcfg.Capacity),
		zap.Stringer("rss", DefaultRSS.HashFunctions),
		zap.Stringer("pool", pool),
	)
	return nil
}
