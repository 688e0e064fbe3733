// Command rxqpoll receives packets on every receive queue of every configured Ethernet port, one worker lcore per
// queue, and inspects the first two octets of each packet.
package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxqpoll/rxqpoll/app/ingest"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
	"github.com/rxqpoll/rxqpoll/core/logging"
	_ "github.com/rxqpoll/rxqpoll/core/logging/logginggql"
	"github.com/rxqpoll/rxqpoll/core/version"
	"github.com/rxqpoll/rxqpoll/core/yamlflag"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var logger = logging.New("main")

var initCfg ingest.Config

var app = &cli.App{
	Name:    "rxqpoll",
	Version: version.V.String(),
	Usage:   "Poll receive queues of Ethernet ports on dedicated lcores.",
	Flags: []cli.Flag{
		&cli.GenericFlag{
			Name:     "initcfg",
			Usage:    "initialization config object, YAML inline, @file, or @- for stdin",
			Value:    yamlflag.New(&initCfg),
			Required: true,
		},
		&cli.StringFlag{
			Name:  "gqlserver",
			Usage: "GraphQL and metrics HTTP listen address, empty to disable",
			Value: "127.0.0.1:3030",
		},
	},
	After: func(*cli.Context) error {
		logging.Sync()
		return nil
	},
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(c.Context, unix.SIGINT, unix.SIGTERM)
		defer stop()

		ing, e := ingest.New(initCfg)
		if e != nil {
			return cli.Exit(e, ingest.ExitCode(e))
		}

		var srv *gqlserver.Server
		if listen := c.String("gqlserver"); listen != "" {
			if srv, e = startServer(ing, listen); e != nil {
				return cli.Exit(multierr.Append(e, ing.Close()), 1)
			}
		}

		go systemdNotify(ctx)
		ing.Wait(ctx)
		daemon.SdNotify(false, daemon.SdNotifyStopping)

		if srv != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			e = multierr.Append(e, srv.Close(closeCtx))
		}
		if e = multierr.Append(e, ing.Close()); e != nil {
			return cli.Exit(e, 1)
		}
		logger.Info("graceful shutdown complete")
		return nil
	},
}

func startServer(ing *ingest.Ingest, listen string) (*gqlserver.Server, error) {
	for _, f := range ing.GqlFields() {
		gqlserver.AddQuery(f)
	}
	srv, e := gqlserver.New(listen)
	if e != nil {
		return nil, e
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ing.Collector(),
	)
	srv.Mount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv.Start()
	return srv, nil
}

func systemdNotify(ctx context.Context) {
	daemon.SdNotify(false, daemon.SdNotifyReady)

	d, e := daemon.SdWatchdogEnabled(false)
	if d == 0 || e != nil {
		logger.Debug("systemd watchdog not configured", zap.Error(e))
		return
	}

	d /= 2
	logger.Debug("systemd watchdog enabled", zap.Duration("duration", d))
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}

func main() {
	var uname unix.Utsname
	unix.Uname(&uname)
	logger.Info("rxqpoll starting",
		zap.Any("version", version.V),
		zap.Int("uid", os.Getuid()),
		zap.ByteString("linux", bytes.TrimRight(uname.Release[:], string([]byte{0}))),
	)

	app.Run(os.Args)
}
