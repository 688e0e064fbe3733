// Package ethringdev provides an in-memory Ethernet port with software receive-side scaling.
// Frames are injected by the caller and distributed to RX queues by a flow hash of their network layer.
package ethringdev

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/core/macaddr"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var logger = logging.New("ethringdev")

// Default limits.
const (
	DefaultMaxRxQueues = 16
	MinRxDesc          = 32
	MaxRxDesc          = 4096
	RxDescAlign        = 32
)

// Config contains ring port configuration.
type Config struct {
	// Name is the port name.
	Name string `json:"name"`

	// MaxRxQueues is the maximum number of RX queues.
	// Default is DefaultMaxRxQueues.
	MaxRxQueues int `json:"maxRxQueues,omitempty"`

	// Socket is the NUMA socket of the port.
	Socket eal.NumaSocket `json:"socket"`

	// MacAddr is the port MAC address.
	// Default is a random unicast address.
	MacAddr macaddr.Flag `json:"macAddr"`
}

type portState int

const (
	stateInit portState = iota
	stateConfigured
	stateStarted
	stateClosed
)

// Port is an in-memory Ethernet port.
type Port struct {
	id     int
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	state    portState
	rss      ethdev.RSSConfig
	queues   []*rxQueue
	promisc  bool
	parser   *gopacket.DecodingLayerParser
	decoded  []gopacket.LayerType
	eth      layers.Ethernet
	dot1q    layers.Dot1Q
	ip4      layers.IPv4
	ip6      layers.IPv6
	started  atomic.Bool
	nMissed  atomic.Uint64
	nErrors  atomic.Uint64
	nNoMbuf  atomic.Uint64
	nPackets atomic.Uint64
	nBytes   atomic.Uint64
}

var _ ethdev.EthDev = (*Port)(nil)

// New creates a ring port.
func New(id int, cfg Config) *Port {
	if cfg.MaxRxQueues <= 0 {
		cfg.MaxRxQueues = DefaultMaxRxQueues
	}
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("ring%d", id)
	}
	if cfg.MacAddr.Empty() {
		cfg.MacAddr.HardwareAddr = macaddr.MakeRandomUnicast()
	}
	p := &Port{
		id:     id,
		cfg:    cfg,
		logger: logger.With(zap.Int("port", id), zap.String("name", cfg.Name)),
	}
	p.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &p.eth, &p.dot1q, &p.ip4, &p.ip6)
	p.parser.IgnoreUnsupported = true
	return p
}

// ID implements ethdev.EthDev interface.
func (p *Port) ID() int {
	return p.id
}

// Name implements ethdev.EthDev interface.
func (p *Port) Name() string {
	return p.cfg.Name
}

// NumaSocket implements ethdev.EthDev interface.
func (p *Port) NumaSocket() eal.NumaSocket {
	return p.cfg.Socket
}

// MacAddr implements ethdev.EthDev interface.
func (p *Port) MacAddr() net.HardwareAddr {
	return p.cfg.MacAddr.HardwareAddr
}

// DevInfo implements ethdev.EthDev interface.
func (p *Port) DevInfo() ethdev.DevInfo {
	return ethdev.DevInfo{
		DriverName:  ethdev.DriverRing,
		MaxRxQueues: p.cfg.MaxRxQueues,
		RxDescLim: ethdev.DescLim{
			Min:   MinRxDesc,
			Max:   MaxRxDesc,
			Align: RxDescAlign,
		},
		RSSOffloads: ethdev.RSSHashIPv4 | ethdev.RSSHashIPv6,
	}
}

// Configure implements ethdev.EthDev interface.
func (p *Port) Configure(cfg ethdev.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.state == stateStarted:
		return eal.Errno(unix.EBUSY)
	case p.state == stateClosed:
		return eal.Errno(unix.ENODEV)
	case cfg.RxQueues <= 0 || cfg.RxQueues > p.cfg.MaxRxQueues:
		return eal.Errno(unix.EINVAL)
	case cfg.RSS.Key != nil:
		return eal.Errno(unix.ENOTSUP)
	}

	p.rss = cfg.RSS
	p.queues = make([]*rxQueue, cfg.RxQueues)
	p.state = stateConfigured
	return nil
}

// SetupRxQueue implements ethdev.EthDev interface.
func (p *Port) SetupRxQueue(queue int, qcfg ethdev.RxQueueConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.state != stateConfigured:
		return eal.Errno(unix.EBUSY)
	case queue < 0 || queue >= len(p.queues):
		return eal.Errno(unix.EINVAL)
	case qcfg.RxPool == nil:
		return eal.Errno(unix.EINVAL)
	}

	capacity := p.DevInfo().RxDescLim.AdjustQueueCapacity(qcfg.Capacity)
	p.queues[queue] = &rxQueue{
		port:   p,
		queue:  uint16(queue),
		pool:   qcfg.RxPool,
		frames: make(chan []byte, capacity),
	}
	return nil
}

// Start implements ethdev.EthDev interface.
func (p *Port) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case stateStarted:
		return nil
	case stateConfigured:
	default:
		return eal.Errno(unix.EINVAL)
	}
	for i, q := range p.queues {
		if q == nil {
			p.logger.Warn("RX queue not set up", zap.Int("queue", i))
			return eal.Errno(unix.EINVAL)
		}
	}

	p.state = stateStarted
	p.started.Store(true)
	p.logger.Info("started", zap.Int("queues", len(p.queues)), zap.Stringer("rss", p.rss.HashFunctions))
	return nil
}

// Stop implements ethdev.EthDev interface.
// Frames waiting in RX queues are discarded.
func (p *Port) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != stateStarted {
		return nil
	}
	p.started.Store(false)
	p.state = stateConfigured
	for _, q := range p.queues {
		q.drain()
	}
	p.logger.Info("stopped")
	return nil
}

// IsStarted implements ethdev.EthDev interface.
func (p *Port) IsStarted() bool {
	return p.started.Load()
}

// SetPromisc implements ethdev.EthDev interface.
func (p *Port) SetPromisc(enable bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateClosed {
		return eal.Errno(unix.ENODEV)
	}
	p.promisc = enable
	return nil
}

// IsPromisc returns whether promiscuous mode is enabled.
func (p *Port) IsPromisc() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.promisc
}

// RxQueues implements ethdev.EthDev interface.
func (p *Port) RxQueues() (list []ethdev.RxQueue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, q := range p.queues {
		if q != nil {
			list = append(list, q)
		}
	}
	return list
}

// Stats implements ethdev.EthDev interface.
func (p *Port) Stats() ethdev.Stats {
	return ethdev.Stats{
		RxPackets: p.nPackets.Load(),
		RxBytes:   p.nBytes.Load(),
		RxMissed:  p.nMissed.Load(),
		RxErrors:  p.nErrors.Load(),
		RxNoMbuf:  p.nNoMbuf.Load(),
	}
}

// Close implements ethdev.EthDev interface.
func (p *Port) Close() error {
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = stateClosed
	p.queues = nil
	return nil
}
