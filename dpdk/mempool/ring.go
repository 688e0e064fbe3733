package mempool

import (
	"sync/atomic"

	binutils "github.com/jfoster/binary-utilities"
)

const cacheLineSize = 64

type ringCell struct {
	seq atomic.Uint64
	val uint32
}

// ring is a bounded multi-producer multi-consumer lock-free queue of element indices.
// Each cell carries a sequence number that tells producers and consumers whose turn it is.
type ring struct {
	_     [cacheLineSize]byte
	head  atomic.Uint64
	_     [cacheLineSize - 8]byte
	tail  atomic.Uint64
	_     [cacheLineSize - 8]byte
	mask  uint64
	cells []ringCell
}

// newRing needs at least two cells to tell full from empty.
func newRing(capacity int) *ring {
	size := uint64(binutils.NextPowerOfTwo(int64(max(capacity, 2))))
	r := &ring{
		mask:  size - 1,
		cells: make([]ringCell, size),
	}
	for i := range r.cells {
		r.cells[i].seq.Store(uint64(i))
	}
	return r
}

// Enqueue adds an item.
// Returns false if the ring is full.
func (r *ring) Enqueue(v uint32) bool {
	pos := r.tail.Load()
	for {
		c := &r.cells[pos&r.mask]
		seq := c.seq.Load()
		switch dif := int64(seq) - int64(pos); {
		case dif == 0:
			if r.tail.CompareAndSwap(pos, pos+1) {
				c.val = v
				c.seq.Store(pos + 1)
				return true
			}
			pos = r.tail.Load()
		case dif < 0:
			return false
		default:
			pos = r.tail.Load()
		}
	}
}

// Dequeue removes an item.
// Returns false if the ring is empty.
func (r *ring) Dequeue() (v uint32, ok bool) {
	pos := r.head.Load()
	for {
		c := &r.cells[pos&r.mask]
		seq := c.seq.Load()
		switch dif := int64(seq) - int64(pos+1); {
		case dif == 0:
			if r.head.CompareAndSwap(pos, pos+1) {
				v = c.val
				c.seq.Store(pos + r.mask + 1)
				return v, true
			}
			pos = r.head.Load()
		case dif < 0:
			return 0, false
		default:
			pos = r.head.Load()
		}
	}
}

// Count returns the approximate number of items.
func (r *ring) Count() int {
	head, tail := r.head.Load(), r.tail.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}
