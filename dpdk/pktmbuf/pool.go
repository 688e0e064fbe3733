package pktmbuf

import (
	"fmt"

	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/mempool"
	"go.uber.org/zap"
)

// Default pool parameters.
const (
	DefaultCapacity = 10000
	DefaultHeadroom = 128
	DefaultDataroom = 2048
)

// ErrResourceExhausted indicates the pool cannot be created or has no free buffer.
var ErrResourceExhausted = mempool.ErrResourceExhausted

// PoolConfig contains Pool configuration.
type PoolConfig struct {
	// Capacity is the number of packet buffers.
	// Default is DefaultCapacity.
	Capacity int `json:"capacity,omitempty"`

	// Dataroom is the buffer size after headroom.
	// Default is DefaultDataroom.
	Dataroom int `json:"dataroom,omitempty"`

	// Socket is the preferred NUMA socket.
	Socket eal.NumaSocket `json:"socket"`
}

func (cfg *PoolConfig) applyDefaults() {
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Dataroom == 0 {
		cfg.Dataroom = DefaultDataroom
	}
}

// Pool is a fixed-capacity pool of packet buffers.
// Alloc and Packet.Close are safe to call from any goroutine.
type Pool struct {
	mp       *mempool.Mempool
	dataroom int
	slots    []slot
}

// NewPool creates a Pool.
func NewPool(cfg PoolConfig) (*Pool, error) {
	cfg.applyDefaults()
	if cfg.Capacity < 0 || cfg.Dataroom < 0 {
		return nil, fmt.Errorf("%w: capacity %d dataroom %d", ErrResourceExhausted, cfg.Capacity, cfg.Dataroom)
	}

	mp, e := mempool.New(mempool.Config{
		Capacity:    cfg.Capacity,
		ElementSize: DefaultHeadroom + cfg.Dataroom,
		Socket:      cfg.Socket,
	})
	if e != nil {
		return nil, e
	}

	pool := &Pool{
		mp:       mp,
		dataroom: cfg.Dataroom,
		slots:    make([]slot, mp.Capacity()),
	}
	for i := range pool.slots {
		s := &pool.slots[i]
		s.pool = pool
		s.index = uint32(i)
		s.buf = mp.Element(uint32(i))
	}
	return pool, nil
}

// Close releases the pool.
// It fails if any packet is still in use.
func (pool *Pool) Close() error {
	return pool.mp.Close()
}

func (pool *Pool) String() string {
	return fmt.Sprintf("pktmbuf.Pool(%d*%d)", pool.Capacity(), pool.dataroom)
}

// Capacity returns the number of packet buffers.
func (pool *Pool) Capacity() int {
	return pool.mp.Capacity()
}

// Dataroom returns dataroom setting.
func (pool *Pool) Dataroom() int {
	return pool.dataroom
}

// NumaSocket returns the preferred NUMA socket.
func (pool *Pool) NumaSocket() eal.NumaSocket {
	return pool.mp.NumaSocket()
}

// CountAvailable returns number of free packet buffers.
func (pool *Pool) CountAvailable() int {
	return pool.mp.CountAvailable()
}

// CountInUse returns number of packet buffers held by someone.
func (pool *Pool) CountInUse() int {
	return pool.mp.CountInUse()
}

// Alloc allocates a vector of empty packets.
// It either allocates count packets or returns an error wrapping ErrResourceExhausted.
func (pool *Pool) Alloc(count int) (vec Vector, e error) {
	vec = make(Vector, count)
	if e = pool.AllocInto(vec); e != nil {
		return nil, e
	}
	return vec, nil
}

// AllocInto fills every slot of vec with an empty packet, allocating all or none.
// Existing entries are overwritten without being released.
func (pool *Pool) AllocInto(vec Vector) error {
	var stackIndices [64]uint32
	indices := stackIndices[:0]
	if len(vec) > len(stackIndices) {
		indices = make([]uint32, 0, len(vec))
	}
	indices = indices[:len(vec)]

	if e := pool.mp.Alloc(indices); e != nil {
		return fmt.Errorf("alloc %d packets: %w", len(vec), e)
	}
	for i, index := range indices {
		vec[i] = pool.take(index)
	}
	return nil
}

func (pool *Pool) take(index uint32) *Packet {
	s := &pool.slots[index]
	gen := s.gen.Add(1)
	if gen%2 == 0 {
		logger.Panic("free list returned an owned packet", zap.Uint32("index", index))
	}
	s.off, s.length, s.port, s.queue = DefaultHeadroom, 0, 0, 0
	return &Packet{s: s, gen: gen}
}

func (pool *Pool) release(pkt *Packet) {
	s := pkt.s
	if !s.gen.CompareAndSwap(pkt.gen, pkt.gen+1) {
		logger.Panic("packet released twice", zap.Uint32("index", s.index), zap.Uint64("gen", pkt.gen))
	}
	pool.mp.FreeOne(s.index)
}
