package ethdev_test

import (
	"errors"
	"net"
	"testing"

	"github.com/rxqpoll/rxqpoll/core/testenv"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev/ethringdev"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"golang.org/x/sys/unix"
)

var makeAR = testenv.MakeAR

// fakeDev records calls and fails the requested phase.
type fakeDev struct {
	failPhase string
	driver    string
	noRSS     bool
	calls     []string
	cfg       ethdev.Config
	qcfgs     []ethdev.RxQueueConfig
	started   bool
	promisc   bool
}

func (d *fakeDev) fail(phase string) error {
	d.calls = append(d.calls, phase)
	if d.failPhase == phase {
		return eal.Errno(unix.EIO)
	}
	return nil
}

func (d *fakeDev) ID() int                    { return 7 }
func (d *fakeDev) Name() string               { return "fake" }
func (d *fakeDev) NumaSocket() eal.NumaSocket { return eal.NumaSocketFromID(1) }
func (d *fakeDev) MacAddr() net.HardwareAddr  { return net.HardwareAddr{0x02, 0, 0, 0, 0, 0x07} }
func (d *fakeDev) DevInfo() ethdev.DevInfo {
	info := ethdev.DevInfo{
		DriverName:  d.driver,
		MaxRxQueues: 8,
		RxDescLim:   ethdev.DescLim{Min: 64, Max: 512, Align: 64},
		RSSOffloads: ethdev.RSSHashIPv4 | ethdev.RSSHashIPv6,
	}
	if d.noRSS {
		info.RSSOffloads = ethdev.RSSHashIPv4
	}
	return info
}

func (d *fakeDev) Configure(cfg ethdev.Config) error {
	d.cfg = cfg
	return d.fail(ethdev.PhaseConfigure)
}

func (d *fakeDev) SetupRxQueue(queue int, qcfg ethdev.RxQueueConfig) error {
	d.qcfgs = append(d.qcfgs, qcfg)
	return d.fail(ethdev.PhaseRxQueueSetup)
}

func (d *fakeDev) Start() error {
	if e := d.fail(ethdev.PhaseStart); e != nil {
		return e
	}
	d.started = true
	return nil
}

func (d *fakeDev) Stop() error {
	d.calls = append(d.calls, "stop")
	d.started = false
	return nil
}

func (d *fakeDev) IsStarted() bool { return d.started }

func (d *fakeDev) SetPromisc(enable bool) error {
	if e := d.fail(ethdev.PhasePromisc); e != nil {
		return e
	}
	d.promisc = enable
	return nil
}

func (d *fakeDev) RxQueues() []ethdev.RxQueue { return nil }
func (d *fakeDev) Stats() ethdev.Stats        { return ethdev.Stats{} }
func (d *fakeDev) Close() error               { return nil }

func makePool(t testing.TB) *pktmbuf.Pool {
	pool, e := pktmbuf.NewPool(pktmbuf.PoolConfig{Capacity: 255})
	if e != nil {
		t.Fatal(e)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestConfigurePort(t *testing.T) {
	assert, require := makeAR(t)
	pool := makePool(t)

	dev := &fakeDev{}
	require.NoError(ethdev.ConfigurePort(dev, 2, pool))
	assert.Equal([]string{"configure", "rxq-setup", "rxq-setup", "start", "promisc"}, dev.calls)
	assert.Equal(2, dev.cfg.RxQueues)
	assert.Equal(ethdev.RSSHashIPv4|ethdev.RSSHashIPv6, dev.cfg.RSS.HashFunctions)
	assert.Nil(dev.cfg.RSS.Key)
	if assert.Len(dev.qcfgs, 2) {
		assert.Equal(512, dev.qcfgs[0].Capacity)
		assert.Equal(1, dev.qcfgs[0].Socket.ID())
		assert.Same(pool, dev.qcfgs[1].RxPool)
	}
	assert.True(dev.started)
	assert.True(dev.promisc)
}

func TestConfigurePortFailure(t *testing.T) {
	pool := makePool(t)

	for _, tt := range []struct {
		phase   string
		calls   []string
		started bool
	}{
		{ethdev.PhaseConfigure, []string{"configure"}, false},
		{ethdev.PhaseRxQueueSetup, []string{"configure", "rxq-setup"}, false},
		{ethdev.PhaseStart, []string{"configure", "rxq-setup", "rxq-setup", "start"}, false},
		{ethdev.PhasePromisc, []string{"configure", "rxq-setup", "rxq-setup", "start", "promisc", "stop"}, false},
	} {
		t.Run(tt.phase, func(t *testing.T) {
			assert, require := makeAR(t)

			dev := &fakeDev{failPhase: tt.phase}
			e := ethdev.ConfigurePort(dev, 2, pool)
			require.Error(e)

			var ce *ethdev.ConfigError
			require.True(errors.As(e, &ce))
			assert.Equal(7, ce.Port)
			assert.Equal(tt.phase, ce.Phase)
			assert.Equal(int(unix.EIO), ce.Code())
			assert.ErrorIs(e, unix.EIO)
			assert.Contains(e.Error(), "port 7 "+tt.phase)
			assert.Equal(tt.calls, dev.calls)
			assert.Equal(tt.started, dev.started)
		})
	}
}

func TestConfigurePortPromiscIgnored(t *testing.T) {
	assert, require := makeAR(t)
	pool := makePool(t)

	dev := &fakeDev{failPhase: ethdev.PhasePromisc, driver: ethdev.DriverRing}
	require.NoError(ethdev.ConfigurePort(dev, 1, pool))
	assert.True(dev.started)
}

func TestConfigurePortQueueCount(t *testing.T) {
	assert, _ := makeAR(t)
	pool := makePool(t)

	for _, n := range []int{0, 9} {
		dev := &fakeDev{}
		e := ethdev.ConfigurePort(dev, n, pool)
		var ce *ethdev.ConfigError
		if assert.ErrorAs(e, &ce) {
			assert.Equal(ethdev.PhaseConfigure, ce.Phase)
			assert.Equal(int(unix.EINVAL), ce.Code())
		}
		assert.Empty(dev.calls)
	}
}

func TestConfigurePortNoRSS(t *testing.T) {
	assert, require := makeAR(t)
	pool := makePool(t)

	dev := &fakeDev{noRSS: true}
	e := ethdev.ConfigurePort(dev, 2, pool)
	var ce *ethdev.ConfigError
	require.ErrorAs(e, &ce)
	assert.Equal(ethdev.PhaseConfigure, ce.Phase)
	assert.Equal(int(unix.ENOTSUP), ce.Code())
	assert.Empty(dev.calls)
	assert.False(dev.started)
	assert.False(dev.promisc)
}

func TestConfigureRingPort(t *testing.T) {
	assert, require := makeAR(t)
	pool := makePool(t)

	p := ethringdev.New(0, ethringdev.Config{})
	defer p.Close()
	require.NoError(ethdev.ConfigurePort(p, 2, pool))
	assert.True(p.IsStarted())
	assert.True(p.IsPromisc())
	assert.Len(p.RxQueues(), 2)
	assert.Contains(p.Stats().String(), "RX 0 pkts")
}

func TestDescLim(t *testing.T) {
	assert, _ := makeAR(t)

	lim := ethdev.DescLim{Min: 64, Max: 4096, Align: 32}
	assert.Equal(1024, lim.AdjustQueueCapacity(1024))
	assert.Equal(992, lim.AdjustQueueCapacity(1000))
	assert.Equal(64, lim.AdjustQueueCapacity(10))
	assert.Equal(4096, lim.AdjustQueueCapacity(9000))
}
