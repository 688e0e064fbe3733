package ingest

import (
	"errors"
	"fmt"

	"github.com/rxqpoll/rxqpoll/app/pdump"
	"github.com/rxqpoll/rxqpoll/core/hwinfo"
	"github.com/rxqpoll/rxqpoll/dpdk/ealinit"
	"github.com/rxqpoll/rxqpoll/dpdk/ealthread"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"go.uber.org/multierr"
)

// DefaultQueuesPerPort is the default number of RX queues on each port.
const DefaultQueuesPerPort = 2

// InspectConfig selects inspectors.
// The worker always counts inspected packets; these are additional inspectors.
type InspectConfig struct {
	// Log enables LogInspector.
	Log bool `json:"log,omitempty"`

	// LogSampling rate-limits LogInspector.
	LogSampling LogSamplingConfig `json:"logSampling,omitempty"`

	// Pdump enables writing inspected packets to a pcapng file.
	Pdump *pdump.WriterConfig `json:"pdump,omitempty"`
}

// Config contains ingest configuration.
type Config struct {
	ealinit.Config

	// QueuesPerPort is the number of RX queues on each port.
	// Default is DefaultQueuesPerPort.
	QueuesPerPort int `json:"queuesPerPort,omitempty"`

	// Pool configures the packet buffer pool shared by all RX queues.
	// It is created on the NUMA socket of the main lcore unless Pool.Socket is set.
	Pool pktmbuf.PoolConfig `json:"pool,omitempty"`

	// NumaAware assigns worker lcores through ealthread.Allocator on the NUMA socket of each port,
	// instead of ascending lcore order.
	NumaAware bool `json:"numaAware,omitempty"`

	// Alloc reserves lcores for roles when NumaAware is set.
	Alloc ealthread.AllocConfig `json:"alloc,omitempty"`

	Inspect InspectConfig `json:"inspect,omitempty"`

	// HwInfo provides CPU topology. Default is hwinfo.Default.
	HwInfo hwinfo.Provider `json:"-"`
}

// ApplyDefaults applies defaults to zero fields.
func (cfg *Config) ApplyDefaults() {
	if cfg.QueuesPerPort == 0 {
		cfg.QueuesPerPort = DefaultQueuesPerPort
	}
	if cfg.Pool.Capacity == 0 {
		cfg.Pool.Capacity = pktmbuf.DefaultCapacity
	}
	if cfg.HwInfo == nil {
		cfg.HwInfo = hwinfo.Default
	}
}

// Validate checks the configuration.
func (cfg Config) Validate() error {
	errs := []error{}
	if cfg.QueuesPerPort <= 0 {
		errs = append(errs, fmt.Errorf("queuesPerPort %d must be positive", cfg.QueuesPerPort))
	}
	if cfg.Pool.Capacity < 0 || cfg.Pool.Dataroom < 0 {
		errs = append(errs, errors.New("pool capacity and dataroom must not be negative"))
	}
	if len(cfg.Alloc) > 0 && !cfg.NumaAware {
		errs = append(errs, errors.New("alloc requires numaAware"))
	}
	if p := cfg.Inspect.Pdump; p != nil && p.Filename == "" {
		errs = append(errs, errors.New("inspect.pdump.filename is missing"))
	}
	return multierr.Combine(errs...)
}
