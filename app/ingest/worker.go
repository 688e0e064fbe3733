package ingest

import (
	"sync/atomic"

	"github.com/rxqpoll/rxqpoll/core/runningstat"
	"github.com/rxqpoll/rxqpoll/dpdk/ealthread"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"go.uber.org/zap"
)

// Role is the worker thread role name.
const Role = "RX"

// BurstSize is the maximum number of packets received in one poll.
const BurstSize = 32

// WorkerCounters contains worker counters.
type WorkerCounters struct {
	Packets   uint64 `json:"packets" gqldesc:"Received packets."`
	Bytes     uint64 `json:"bytes" gqldesc:"Received octets."`
	Inspected uint64 `json:"inspected" gqldesc:"Packets longer than two octets, whose first two octets were inspected."`
	Skipped   uint64 `json:"skipped" gqldesc:"Packets too short to inspect."`
}

// Worker polls one receive queue on a dedicated lcore.
type Worker struct {
	ealthread.Thread
	ctrl      ealthread.Ctrl
	a         Assignment
	rxq       ethdev.RxQueue
	inspector Inspector

	nPackets   atomic.Uint64
	nBytes     atomic.Uint64
	nInspected atomic.Uint64
	nSkipped   atomic.Uint64

	burst     runningstat.IntStat // owned by the polling goroutine
	burstSnap atomic.Pointer[runningstat.Snapshot]
}

var (
	_ ealthread.ThreadWithRole     = (*Worker)(nil)
	_ ealthread.ThreadWithLoadStat = (*Worker)(nil)
)

// NewWorker creates a worker for an assignment.
func NewWorker(a Assignment, rxq ethdev.RxQueue, inspector Inspector) *Worker {
	w := &Worker{
		a:         a,
		rxq:       rxq,
		inspector: inspector,
	}
	w.burst.Init(1)
	w.Thread = ealthread.New(w.main, w.ctrl.Stopper())
	w.SetLCore(a.LCore)
	return w
}

// Assignment returns the worker assignment.
func (w *Worker) Assignment() Assignment {
	return w.a
}

// ThreadRole implements ealthread.ThreadWithRole interface.
func (*Worker) ThreadRole() string {
	return Role
}

// ThreadLoadStat implements ealthread.ThreadWithLoadStat interface.
func (w *Worker) ThreadLoadStat() ealthread.LoadStat {
	return w.ctrl.ThreadLoadStat()
}

// Counters returns worker counters.
func (w *Worker) Counters() WorkerCounters {
	return WorkerCounters{
		Packets:   w.nPackets.Load(),
		Bytes:     w.nBytes.Load(),
		Inspected: w.nInspected.Load(),
		Skipped:   w.nSkipped.Load(),
	}
}

// BurstSize returns statistics of non-empty burst sizes.
func (w *Worker) BurstSize() runningstat.Snapshot {
	if s := w.burstSnap.Load(); s != nil {
		return *s
	}
	return runningstat.Snapshot{}
}

// RequestStop asks the worker to return at the start of its next iteration, without waiting.
func (w *Worker) RequestStop() {
	w.ctrl.RequestStop()
}

func (w *Worker) main() int {
	logEntry := logger.With(w.a.LCore.ZapField("lc"), zap.Int("port", w.a.Port), zap.Int("queue", w.a.Queue))
	logEntry.Info("worker started")
	vec := make(pktmbuf.Vector, BurstSize)
	for w.ctrl.Continue() {
		w.poll(vec)
	}
	logEntry.Info("worker stopped", zap.Uint64("packets", w.nPackets.Load()))
	return 0
}

// poll receives and processes one burst.
func (w *Worker) poll(vec pktmbuf.Vector) int {
	n := w.rxq.RxBurst(vec)
	w.ctrl.AddPoll(n)
	if n > 0 {
		w.burst.Push(uint64(n))
		s := w.burst.Read()
		w.burstSnap.Store(&s)
	}
	for i, pkt := range vec[:n] {
		w.process(pkt)
		vec[i] = nil
	}
	return n
}

func (w *Worker) process(pkt *pktmbuf.Packet) {
	b := pkt.ZeroCopyBytes()
	w.nPackets.Add(1)
	w.nBytes.Add(uint64(len(b)))
	if len(b) > 2 {
		w.inspector.Inspect(pkt, [2]byte{b[0], b[1]})
		w.nInspected.Add(1)
	} else {
		w.nSkipped.Add(1)
	}
	pkt.Close()
}
