package ethnetif

import (
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gopacket/gopacket/afpacket"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Port is an AF_PACKET Ethernet port.
type Port struct {
	id       int
	cfg      Config
	netif    *NetIntf
	fanoutID uint16
	logger   *zap.Logger

	mu         sync.Mutex
	configured bool
	nQueues    int
	queues     []*rxQueue
	started    atomic.Bool
}

var _ ethdev.EthDev = (*Port)(nil)

// New creates an AF_PACKET port on a network interface.
func New(id int, cfg Config) (*Port, error) {
	cfg.applyDefaults()
	if e := cfg.validate(); e != nil {
		return nil, e
	}

	netif, e := NetIntfByName(cfg.Netif)
	if e != nil {
		return nil, e
	}

	p := &Port{
		id:       id,
		cfg:      cfg,
		netif:    netif,
		fanoutID: uint16(os.Getpid()) ^ uint16(id<<8),
	}
	p.logger = netif.logger.With(zap.Int("port", id))
	p.logger.Info("port created",
		zap.String("kernel-driver", netif.DriverName()),
		zap.Int("rx-channels", netif.RxChannels()),
	)
	return p, nil
}

// ID implements ethdev.EthDev interface.
func (p *Port) ID() int {
	return p.id
}

// Name implements ethdev.EthDev interface.
func (p *Port) Name() string {
	return p.netif.Name
}

// NumaSocket implements ethdev.EthDev interface.
func (p *Port) NumaSocket() eal.NumaSocket {
	return p.netif.NumaSocket()
}

// NetIntf returns the network interface.
func (p *Port) NetIntf() *NetIntf {
	return p.netif
}

// MacAddr implements ethdev.EthDev interface.
func (p *Port) MacAddr() net.HardwareAddr {
	return p.netif.HardwareAddr
}

// DevInfo implements ethdev.EthDev interface.
func (p *Port) DevInfo() ethdev.DevInfo {
	return ethdev.DevInfo{
		DriverName:  ethdev.DriverAfPacket,
		IfName:      p.netif.Name,
		MaxRxQueues: MaxRxQueues,
		RxDescLim: ethdev.DescLim{
			Min:   MinRxDesc,
			Max:   MaxRxDesc,
			Align: p.cfg.framesPerBlock(),
		},
		RSSOffloads: ethdev.RSSHashIPv4 | ethdev.RSSHashIPv6,
	}
}

// Configure implements ethdev.EthDev interface.
// The kernel flow hash is used regardless of RSS.HashFunctions; a custom key is not supported.
func (p *Port) Configure(cfg ethdev.Config) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.started.Load():
		return eal.Errno(unix.EBUSY)
	case cfg.RxQueues <= 0 || cfg.RxQueues > MaxRxQueues:
		return eal.Errno(unix.EINVAL)
	case cfg.RSS.Key != nil:
		return eal.Errno(unix.ENOTSUP)
	}

	p.nQueues = cfg.RxQueues
	p.queues = make([]*rxQueue, cfg.RxQueues)
	p.configured = true
	return nil
}

// SetupRxQueue implements ethdev.EthDev interface.
func (p *Port) SetupRxQueue(queue int, qcfg ethdev.RxQueueConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case !p.configured || p.started.Load():
		return eal.Errno(unix.EBUSY)
	case queue < 0 || queue >= p.nQueues || qcfg.RxPool == nil:
		return eal.Errno(unix.EINVAL)
	}

	capacity := p.DevInfo().RxDescLim.AdjustQueueCapacity(qcfg.Capacity)
	p.queues[queue] = &rxQueue{
		port:      p,
		queue:     uint16(queue),
		pool:      qcfg.RxPool,
		numBlocks: max(1, capacity/p.cfg.framesPerBlock()),
	}
	return nil
}

// Start implements ethdev.EthDev interface.
// It opens one AF_PACKET socket per RX queue and joins them into the fanout group.
func (p *Port) Start() (e error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started.Load() {
		return nil
	}
	if !p.configured {
		return eal.Errno(unix.EINVAL)
	}
	for _, q := range p.queues {
		if q == nil {
			return eal.Errno(unix.EINVAL)
		}
	}

	if e := p.netif.EnsureLinkUp(p.cfg.SkipBringUp); e != nil {
		return e
	}

	for i, q := range p.queues {
		if e = q.open(); e != nil {
			for _, opened := range p.queues[:i] {
				opened.close()
			}
			return fmt.Errorf("queue %d: %w", i, e)
		}
	}

	p.started.Store(true)
	p.logger.Info("started", zap.Int("queues", len(p.queues)), zap.Uint16("fanout-id", p.fanoutID))
	return nil
}

// Stop implements ethdev.EthDev interface.
func (p *Port) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started.Load() {
		return nil
	}
	p.started.Store(false)
	for _, q := range p.queues {
		q.close()
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
	return p.netif.SetPromisc(enable)
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
func (p *Port) Stats() (stats ethdev.Stats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, q := range p.queues {
		if q != nil {
			q.addStats(&stats)
		}
	}
	return stats
}

// Close implements ethdev.EthDev interface.
func (p *Port) Close() error {
	e := p.Stop()
	if p.netif.Promisc != 0 {
		e = multierr.Append(e, p.netif.SetPromisc(false))
	}
	return e
}

func (p *Port) tpacketOptions(numBlocks int) []any {
	return []any{
		afpacket.OptInterface(p.netif.Name),
		afpacket.OptFrameSize(p.cfg.FrameSize),
		afpacket.OptBlockSize(p.cfg.BlockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptBlockTimeout(p.cfg.BlockTimeout.DurationOr(1)),
		afpacket.OptPollTimeout(0),
		afpacket.OptTPacketVersion(afpacket.TPacketVersion3),
	}
}
