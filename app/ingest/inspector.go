package ingest

import (
	"fmt"
	"sync/atomic"

	"github.com/rxqpoll/rxqpoll/core/nnduration"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Inspector examines the first two octets of a received packet.
// It is invoked on the worker lcore; pkt is valid only until Inspect returns.
type Inspector interface {
	Inspect(pkt *pktmbuf.Packet, head [2]byte)
}

// CountInspector counts inspected packets.
type CountInspector struct {
	n atomic.Uint64
}

// Inspect implements Inspector interface.
func (ci *CountInspector) Inspect(pkt *pktmbuf.Packet, head [2]byte) {
	ci.n.Add(1)
}

// Count returns the number of inspected packets.
func (ci *CountInspector) Count() uint64 {
	return ci.n.Load()
}

// LogSamplingConfig contains rate limiting parameters of LogInspector.
type LogSamplingConfig struct {
	// Tick is the sampling interval.
	// Default is 1s.
	Tick nnduration.Milliseconds `json:"tick,omitempty"`

	// First is the number of entries logged in each tick.
	First int `json:"first,omitempty"`

	// Thereafter logs every Nth entry after First in each tick.
	Thereafter int `json:"thereafter,omitempty"`
}

func (cfg *LogSamplingConfig) applyDefaults() {
	if cfg.First <= 0 {
		cfg.First = 10
	}
	if cfg.Thereafter <= 0 {
		cfg.Thereafter = 1000
	}
}

// LogInspector logs the first two octets of each packet at debug level.
type LogInspector struct {
	logger *zap.Logger
}

// NewLogInspector creates a LogInspector that writes to l, rate-limited per cfg.
// If l is nil, the package logger is used.
func NewLogInspector(l *zap.Logger, cfg LogSamplingConfig) *LogInspector {
	if l == nil {
		l = logger
	}
	cfg.applyDefaults()
	return &LogInspector{
		logger: l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, cfg.Tick.DurationOr(1000), cfg.First, cfg.Thereafter)
		})),
	}
}

// Inspect implements Inspector interface.
func (li *LogInspector) Inspect(pkt *pktmbuf.Packet, head [2]byte) {
	if ce := li.logger.Check(zap.DebugLevel, "inspect"); ce != nil {
		ce.Write(
			zap.Uint16("port", pkt.Port()),
			zap.Uint16("queue", pkt.Queue()),
			zap.String("head", fmt.Sprintf("%x|%x", head[0], head[1])),
		)
	}
}

// Inspectors invokes several inspectors in order.
type Inspectors []Inspector

// Inspect implements Inspector interface.
func (list Inspectors) Inspect(pkt *pktmbuf.Packet, head [2]byte) {
	for _, ins := range list {
		ins.Inspect(pkt, head)
	}
}
