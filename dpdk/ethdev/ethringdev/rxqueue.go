package ethringdev

import (
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
)

type rxQueue struct {
	port   *Port
	queue  uint16
	pool   *pktmbuf.Pool
	frames chan []byte
}

// RxBurst implements ethdev.RxQueue interface.
func (q *rxQueue) RxBurst(vec pktmbuf.Vector) (n int) {
	if !q.port.started.Load() {
		return 0
	}

	for n < len(vec) {
		var frame []byte
		select {
		case frame = <-q.frames:
		default:
			return n
		}

		if e := q.pool.AllocInto(vec[n : n+1]); e != nil {
			q.port.nNoMbuf.Add(1)
			return n
		}
		pkt := vec[n]
		if e := pkt.Append(frame); e != nil {
			q.port.nErrors.Add(1)
			pkt.Close()
			vec[n] = nil
			continue
		}
		pkt.SetPort(uint16(q.port.id))
		pkt.SetQueue(q.queue)
		q.port.nPackets.Add(1)
		q.port.nBytes.Add(uint64(len(frame)))
		n++
	}
	return n
}

func (q *rxQueue) drain() {
	for {
		select {
		case <-q.frames:
		default:
			return
		}
	}
}
