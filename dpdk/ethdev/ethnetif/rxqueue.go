package ethnetif

import (
	"fmt"
	"sync/atomic"

	"github.com/gopacket/gopacket/afpacket"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"go.uber.org/zap"
)

type rxQueue struct {
	port      *Port
	queue     uint16
	pool      *pktmbuf.Pool
	numBlocks int

	tp       atomic.Pointer[afpacket.TPacket]
	nPackets atomic.Uint64
	nBytes   atomic.Uint64
	nErrors  atomic.Uint64
	nNoMbuf  atomic.Uint64
	nDrops   atomic.Uint64 // kernel drops of closed sockets
}

func (q *rxQueue) open() error {
	tp, e := afpacket.NewTPacket(q.port.tpacketOptions(q.numBlocks)...)
	if e != nil {
		return fmt.Errorf("afpacket.NewTPacket: %w", e)
	}
	if e := tp.SetFanout(afpacket.FanoutHash, q.port.fanoutID); e != nil {
		tp.Close()
		return fmt.Errorf("afpacket.SetFanout: %w", e)
	}
	q.tp.Store(tp)
	return nil
}

func (q *rxQueue) close() {
	tp := q.tp.Swap(nil)
	if tp == nil {
		return
	}
	q.nDrops.Add(q.kernelDrops(tp))
	tp.Close()
}

func (q *rxQueue) kernelDrops(tp *afpacket.TPacket) uint64 {
	_, statsV3, e := tp.SocketStats()
	if e != nil {
		q.port.logger.Debug("SocketStats error", zap.Uint16("queue", q.queue), zap.Error(e))
		return 0
	}
	return uint64(statsV3.Drops())
}

func (q *rxQueue) addStats(stats *ethdev.Stats) {
	stats.RxPackets += q.nPackets.Load()
	stats.RxBytes += q.nBytes.Load()
	stats.RxErrors += q.nErrors.Load()
	stats.RxNoMbuf += q.nNoMbuf.Load()
	stats.RxMissed += q.nDrops.Load()
	if tp := q.tp.Load(); tp != nil {
		stats.RxMissed += q.kernelDrops(tp)
	}
}

// RxBurst implements ethdev.RxQueue interface.
func (q *rxQueue) RxBurst(vec pktmbuf.Vector) (n int) {
	tp := q.tp.Load()
	if tp == nil {
		return 0
	}

	for n < len(vec) {
		data, _, e := tp.ZeroCopyReadPacketData()
		if e != nil {
			// afpacket.ErrTimeout when the ring is empty
			return n
		}

		if e := q.pool.AllocInto(vec[n : n+1]); e != nil {
			q.nNoMbuf.Add(1)
			return n
		}
		pkt := vec[n]
		if e := pkt.Append(data); e != nil {
			q.nErrors.Add(1)
			pkt.Close()
			vec[n] = nil
			continue
		}
		pkt.SetPort(uint16(q.port.id))
		pkt.SetQueue(q.queue)
		q.nPackets.Add(1)
		q.nBytes.Add(uint64(len(data)))
		n++
	}
	return n
}
