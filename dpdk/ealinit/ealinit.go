// Package ealinit initializes the execution context runtime and enumerates Ethernet ports.
package ealinit

import (
	"errors"
	"fmt"

	"github.com/rxqpoll/rxqpoll/core/hwinfo"
	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ealconfig"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev/ethnetif"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev/ethringdev"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var logger = logging.New("ealinit")

// PortConfig describes one Ethernet port.
// Exactly one field must be set.
type PortConfig struct {
	Ring  *ethringdev.Config `json:"ring,omitempty"`
	Netif *ethnetif.Config   `json:"netif,omitempty"`
}

func (pc PortConfig) create(id int) (ethdev.EthDev, error) {
	switch {
	case pc.Ring != nil && pc.Netif == nil:
		return ethringdev.New(id, *pc.Ring), nil
	case pc.Netif != nil && pc.Ring == nil:
		return ethnetif.New(id, *pc.Netif)
	}
	return nil, errors.New("exactly one of ring and netif must be specified")
}

// Config contains runtime initialization parameters.
type Config struct {
	EAL   ealconfig.Config `json:"eal"`
	Ports []PortConfig     `json:"ports"`
}

// Env is an initialized runtime with its Ethernet ports.
type Env struct {
	Runtime *eal.Runtime
	Ports   []ethdev.EthDev
}

// Init creates the Runtime and the Ethernet ports.
// Ports are numbered consecutively from 0 in the order they appear in cfg.Ports.
// hwInfo may be nil to use hwinfo.Default.
func Init(cfg Config, hwInfo hwinfo.Provider) (env *Env, e error) {
	rc, e := cfg.EAL.RuntimeConfig(hwInfo)
	if e != nil {
		return nil, fmt.Errorf("eal: %w", e)
	}

	env = &Env{}
	if env.Runtime, e = eal.NewRuntime(rc); e != nil {
		return nil, fmt.Errorf("eal: %w", e)
	}

	for id, pc := range cfg.Ports {
		dev, e := pc.create(id)
		if e != nil {
			return nil, multierr.Append(fmt.Errorf("port %d: %w", id, e), env.Close())
		}
		env.Ports = append(env.Ports, dev)
	}

	logger.Info("runtime ready",
		env.Runtime.Main().ZapField("main"),
		env.Runtime.Workers().ZapField("workers"),
		zap.Any("sockets", env.Runtime.Sockets()),
		zap.Int("ports", len(env.Ports)),
	)
	return env, nil
}

// Close closes all ports.
func (env *Env) Close() (e error) {
	for _, dev := range env.Ports {
		e = multierr.Append(e, dev.Close())
	}
	env.Ports = nil
	return e
}
