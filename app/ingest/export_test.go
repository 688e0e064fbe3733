package ingest

import (
	"testing"

	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
)

// PollOnce runs one worker iteration without launching the thread.
func (w *Worker) PollOnce() int {
	return w.poll(make(pktmbuf.Vector, BurstSize))
}

// TraceConfigurePort records the ID of every port passed to port configuration until the test ends.
func TraceConfigurePort(t testing.TB) *[]int {
	ids := &[]int{}
	orig := configurePort
	configurePort = func(dev ethdev.EthDev, queueCount int, pool *pktmbuf.Pool) error {
		*ids = append(*ids, dev.ID())
		return orig(dev, queueCount, pool)
	}
	t.Cleanup(func() { configurePort = orig })
	return ids
}
