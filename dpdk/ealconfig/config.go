// Package ealconfig prepares Runtime parameters.
package ealconfig

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rxqpoll/rxqpoll/core/hwinfo"
	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"go.uber.org/zap"
)

var logger = logging.New("ealconfig")

// Config contains execution context configuration.
type Config struct {
	LCoreConfig

	// Pin binds each worker lcore thread to the processor with the same ID.
	Pin bool `json:"pin,omitempty"`

	// Flags is DPDK-style lcore flags, such as "-l 0-3 --main-lcore 0".
	// This replaces LCoreConfig.
	Flags string `json:"flags,omitempty"`
}

// RuntimeConfig validates the configuration and constructs eal.RuntimeConfig.
func (cfg Config) RuntimeConfig(hwInfo hwinfo.Provider) (rc eal.RuntimeConfig, e error) {
	if hwInfo == nil {
		hwInfo = hwinfo.Default
	}

	lcfg := cfg.LCoreConfig
	if cfg.Flags != "" {
		if lcfg, e = parseFlags(cfg.Flags); e != nil {
			return rc, e
		}
	}

	if rc, e = lcfg.runtimeConfig(hwInfo); e != nil {
		return rc, e
	}
	rc.Pin = cfg.Pin
	logger.Debug("runtime config",
		zap.Int("lcores", len(rc.LCoreSockets)),
		zap.Int("main", rc.Main),
		zap.Bool("pin", rc.Pin),
	)
	return rc, nil
}

func parseFlags(flags string) (lcfg LCoreConfig, e error) {
	args, e := shellSplit("flags", flags)
	if e != nil {
		return lcfg, e
	}

	fset := flag.NewFlagSet("eal", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	l := fset.String("l", "", "list of lcores")
	mainLCore := fset.Int("main-lcore", -1, "main lcore ID")
	if e := fset.Parse(args); e != nil {
		return lcfg, fmt.Errorf("flags: %w", e)
	}
	if fset.NArg() > 0 {
		return lcfg, fmt.Errorf("flags: unexpected argument %q", fset.Arg(0))
	}
	if *l == "" {
		return lcfg, errors.New("flags: -l is required")
	}

	if lcfg.Cores, e = parseCoreList(*l); e != nil {
		return lcfg, fmt.Errorf("flags: %w", e)
	}
	lcfg.Strict = true
	if *mainLCore >= 0 {
		lcfg.LCoreMain = mainLCore
	}
	return lcfg, nil
}
