package ingest_test

import (
	"testing"

	"github.com/rxqpoll/rxqpoll/app/ingest"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ealthread"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev/ethringdev"
)

func TestAssignCount(t *testing.T) {
	assert, _ := makeAR(t)

	assert.NoError(ingest.AssignCount(2, 2, 5))
	assert.ErrorIs(ingest.AssignCount(2, 2, 4), ingest.ErrInsufficientContexts)
	assert.NoError(ingest.AssignCount(1, 1, 2))
	assert.ErrorIs(ingest.AssignCount(1, 1, 1), ingest.ErrInsufficientContexts)
	assert.NoError(ingest.AssignCount(0, 2, 1))
}

func TestAssign(t *testing.T) {
	assert, require := makeAR(t)
	rt := makeRuntime(t, 5)

	list, e := ingest.Assign([]int{0, 1}, 2, rt)
	require.NoError(e)
	assert.Equal([]ingest.Assignment{
		{Port: 0, Queue: 0, LCore: eal.LCoreFromID(1)},
		{Port: 0, Queue: 1, LCore: eal.LCoreFromID(2)},
		{Port: 1, Queue: 0, LCore: eal.LCoreFromID(3)},
		{Port: 1, Queue: 1, LCore: eal.LCoreFromID(4)},
	}, list)
	for _, a := range list {
		assert.NotEqual(rt.Main(), a.LCore)
	}

	list, e = ingest.Assign([]int{0, 1}, 1, rt)
	require.NoError(e)
	assert.Len(list, 2)
	assert.Equal(1, list[1].Port)
	assert.Equal(eal.LCoreFromID(2), list[1].LCore)
}

func TestAssignInsufficient(t *testing.T) {
	assert, _ := makeAR(t)
	rt := makeRuntime(t, 4)

	list, e := ingest.Assign([]int{0, 1}, 2, rt)
	assert.ErrorIs(e, ingest.ErrInsufficientContexts)
	assert.Nil(list)
}

func TestAssignNuma(t *testing.T) {
	assert, require := makeAR(t)
	rt := makeRuntime(t, 7) // lcores 1-3 on socket 0, lcores 4-6 on socket 1

	ports := []ethdev.EthDev{
		ethringdev.New(0, ethringdev.Config{Socket: eal.NumaSocketFromID(1)}),
		ethringdev.New(1, ethringdev.Config{Socket: eal.NumaSocketFromID(0)}),
	}
	la := ealthread.NewAllocator(rt)
	list, e := ingest.AssignNuma(ports, 2, la)
	require.NoError(e)
	require.Len(list, 4)
	for _, a := range list {
		assert.Equal(ports[a.Port].NumaSocket(), rt.NumaSocketOf(a.LCore), a)
		assert.Equal(ingest.Role, la.RoleOf(a.LCore))
	}

	la.Clear()
	_, e = ingest.AssignNuma(ports, 4, la)
	assert.ErrorIs(e, ingest.ErrInsufficientContexts)
	assert.ErrorIs(e, ealthread.ErrNoLCore)
	for _, lc := range rt.Workers() {
		assert.Equal("", la.RoleOf(lc))
	}
}
