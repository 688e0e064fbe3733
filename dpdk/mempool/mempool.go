// Package mempool provides a fixed-capacity memory pool of equally sized elements.
// Elements live in one contiguous anonymous memory mapping; free element indices are kept in a lock-free ring.
package mempool

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var logger = logging.New("mempool")

// CacheMaxSize is the maximum per-lcore cache size.
const CacheMaxSize = 512

// ErrResourceExhausted indicates memory cannot be reserved or no element is available.
var ErrResourceExhausted = errors.New("resource exhausted")

// ComputeOptimumCapacity adjusts mempool capacity to be a power of two minus one, if near.
// Capacity 1 is kept as is.
func ComputeOptimumCapacity(capacity int) int {
	if capacity > 1 && bits.OnesCount64(uint64(capacity)) == 1 {
		capacity--
	}
	return capacity
}

// ComputeCacheSize calculates the appropriate cache size for given mempool capacity.
func ComputeCacheSize(capacity int) int {
	if capacity/16 < CacheMaxSize {
		return capacity / 16
	}
	lower := CacheMaxSize / 4
	for i := CacheMaxSize; i >= lower; i-- {
		if capacity%i == 0 {
			return i
		}
	}
	return CacheMaxSize
}

// Config contains Mempool configuration.
type Config struct {
	Capacity    int
	ElementSize int
	Socket      eal.NumaSocket
}

// Mempool represents a memory pool for generic objects.
type Mempool struct {
	arena     []byte
	elemSize  int
	capacity  int
	cacheSize int
	socket    eal.NumaSocket
	free      *ring
}

// New creates a Mempool.
func New(cfg Config) (mp *Mempool, e error) {
	if cfg.Capacity <= 0 || cfg.ElementSize <= 0 {
		return nil, fmt.Errorf("%w: capacity %d element size %d", ErrResourceExhausted, cfg.Capacity, cfg.ElementSize)
	}

	capacity := ComputeOptimumCapacity(cfg.Capacity)
	size := capacity * cfg.ElementSize
	arena, e := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if e != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %w", ErrResourceExhausted, size, e)
	}

	mp = &Mempool{
		arena:     arena,
		elemSize:  cfg.ElementSize,
		capacity:  capacity,
		cacheSize: ComputeCacheSize(capacity),
		socket:    cfg.Socket,
		free:      newRing(capacity),
	}
	for i := 0; i < capacity; i++ {
		mp.free.Enqueue(uint32(i))
	}

	logger.Info("mempool created",
		zap.Int("capacity", capacity),
		zap.Int("element-size", cfg.ElementSize),
		zap.Int("cache-size", mp.cacheSize),
		cfg.Socket.ZapField("socket"),
	)
	return mp, nil
}

// Close releases the mempool.
// It fails if any element is still in use.
func (mp *Mempool) Close() error {
	if n := mp.CountInUse(); n > 0 {
		return fmt.Errorf("mempool has %d elements in use", n)
	}
	if mp.arena == nil {
		return nil
	}
	e := unix.Munmap(mp.arena)
	mp.arena = nil
	return e
}

func (mp *Mempool) String() string {
	return fmt.Sprintf("mempool(%d*%d)", mp.capacity, mp.elemSize)
}

// SizeofElement returns element size.
func (mp *Mempool) SizeofElement() int {
	return mp.elemSize
}

// Capacity returns the number of elements.
func (mp *Mempool) Capacity() int {
	return mp.capacity
}

// CacheSize returns the per-lcore cache size hint.
func (mp *Mempool) CacheSize() int {
	return mp.cacheSize
}

// NumaSocket returns the NUMA socket that the mempool was requested on.
func (mp *Mempool) NumaSocket() eal.NumaSocket {
	return mp.socket
}

// CountAvailable returns number of available objects.
func (mp *Mempool) CountAvailable() int {
	return mp.free.Count()
}

// CountInUse returns number of allocated objects.
func (mp *Mempool) CountInUse() int {
	return mp.capacity - mp.CountAvailable()
}

// Element returns the memory of an element.
func (mp *Mempool) Element(index uint32) []byte {
	start := int(index) * mp.elemSize
	end := start + mp.elemSize
	return mp.arena[start:end:end]
}

// Alloc allocates several objects, writing their indices into objs.
// It either allocates len(objs) objects or none.
func (mp *Mempool) Alloc(objs []uint32) error {
	for i := range objs {
		index, ok := mp.free.Dequeue()
		if !ok {
			mp.Free(objs[:i])
			return ErrResourceExhausted
		}
		objs[i] = index
	}
	return nil
}

// Free releases several objects.
func (mp *Mempool) Free(objs []uint32) {
	for _, index := range objs {
		mp.FreeOne(index)
	}
}

// FreeOne releases one object.
func (mp *Mempool) FreeOne(index uint32) {
	if !mp.free.Enqueue(index) {
		logger.Panic("mempool overflow", zap.Uint32("index", index))
	}
}
