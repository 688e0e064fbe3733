package mempool_test

import (
	"sync"
	"testing"

	"github.com/rxqpoll/rxqpoll/core/testenv"
	"github.com/rxqpoll/rxqpoll/dpdk/mempool"
)

var makeAR = testenv.MakeAR

func TestCompute(t *testing.T) {
	assert, _ := makeAR(t)

	assert.Equal(1023, mempool.ComputeOptimumCapacity(1024))
	assert.Equal(10000, mempool.ComputeOptimumCapacity(10000))
	assert.Equal(1, mempool.ComputeOptimumCapacity(1))
	assert.Equal(1, mempool.ComputeOptimumCapacity(2))
	assert.Equal(62, mempool.ComputeCacheSize(1000))
	assert.Equal(500, mempool.ComputeCacheSize(10000))
	assert.Equal(mempool.CacheMaxSize, mempool.ComputeCacheSize(1<<20))
}

func TestMempoolSingle(t *testing.T) {
	assert, require := makeAR(t)

	mp, e := mempool.New(mempool.Config{Capacity: 1, ElementSize: 64})
	require.NoError(e)
	assert.Equal(1, mp.Capacity())

	objs := make([]uint32, 1)
	require.NoError(mp.Alloc(objs))
	assert.ErrorIs(mp.Alloc(objs), mempool.ErrResourceExhausted)
	mp.Free(objs)
	assert.NoError(mp.Close())
}

func TestMempool(t *testing.T) {
	assert, require := makeAR(t)

	mp, e := mempool.New(mempool.Config{Capacity: 64, ElementSize: 100})
	require.NoError(e)
	assert.Equal(63, mp.Capacity())
	assert.Equal(63, mp.CountAvailable())
	assert.Equal(100, mp.SizeofElement())

	objs := make([]uint32, 40)
	require.NoError(mp.Alloc(objs))
	assert.Equal(23, mp.CountAvailable())
	assert.Equal(40, mp.CountInUse())

	elem := mp.Element(objs[0])
	assert.Len(elem, 100)
	assert.Equal(100, cap(elem))
	elem[99] = 0xAA
	assert.Equal(uint8(0xAA), mp.Element(objs[0])[99])

	more := make([]uint32, 30)
	assert.ErrorIs(mp.Alloc(more), mempool.ErrResourceExhausted)
	assert.Equal(23, mp.CountAvailable())

	assert.Error(mp.Close())
	mp.Free(objs)
	assert.Equal(63, mp.CountAvailable())
	assert.NoError(mp.Close())

	_, e = mempool.New(mempool.Config{Capacity: 0, ElementSize: 100})
	assert.ErrorIs(e, mempool.ErrResourceExhausted)
}

func TestRingConcurrent(t *testing.T) {
	assert, _ := makeAR(t)

	const nItems = 4000
	r := mempool.NewRingForTest(nItems)
	for i := 0; i < nItems; i++ {
		assert.True(r.Enqueue(uint32(i)))
	}
	assert.Equal(nItems, r.Count())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				if v, ok := r.Dequeue(); ok {
					r.Enqueue(v)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(nItems, r.Count())
	seen := make([]bool, nItems)
	for {
		v, ok := r.Dequeue()
		if !ok {
			break
		}
		assert.False(seen[v])
		seen[v] = true
	}
	assert.NotContains(seen, false)
}
