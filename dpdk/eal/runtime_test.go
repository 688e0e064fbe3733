package eal_test

import (
	"errors"
	"testing"

	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"golang.org/x/sys/unix"
)

func makeRuntime(t *testing.T) *eal.Runtime {
	rt, e := eal.NewRuntime(eal.RuntimeConfig{
		LCoreSockets: map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 5: 1},
		Main:         0,
	})
	if e != nil {
		t.Fatal(e)
	}
	return rt
}

func TestRuntimeTopology(t *testing.T) {
	assert, _ := makeAR(t)
	rt := makeRuntime(t)

	assert.Equal(0, rt.Main().ID())
	assert.Equal([]int{1, 2, 3, 5}, rt.Workers().IDs())
	assert.Equal([]int{0, 1, 2, 3, 5}, rt.All().IDs())
	assert.False(rt.Workers().Contains(rt.Main()))
	if sockets := rt.Sockets(); assert.Len(sockets, 2) {
		assert.Equal(0, sockets[0].ID())
		assert.Equal(1, sockets[1].ID())
	}
	assert.Equal(1, rt.NumaSocketOf(eal.LCoreFromID(5)).ID())
	assert.True(rt.NumaSocketOf(eal.LCoreFromID(4)).IsAny())

	_, e := eal.NewRuntime(eal.RuntimeConfig{LCoreSockets: map[int]int{1: 0}, Main: 0})
	assert.Error(e)
}

func TestRemoteLaunch(t *testing.T) {
	assert, require := makeAR(t)
	rt := makeRuntime(t)
	lc := eal.LCoreFromID(2)

	assert.Equal(0, rt.Wait(lc))
	assert.False(rt.IsBusy(lc))

	release := make(chan struct{})
	require.NoError(rt.RemoteLaunch(lc, func() int {
		<-release
		return 7
	}))
	assert.True(rt.IsBusy(lc))

	e := rt.RemoteLaunch(lc, func() int { return 0 })
	assert.True(errors.Is(e, unix.EBUSY))

	close(release)
	assert.Equal(7, rt.Wait(lc))
	assert.False(rt.IsBusy(lc))

	assert.ErrorIs(rt.RemoteLaunch(rt.Main(), func() int { return 0 }), eal.ErrMainLCore)
	assert.ErrorIs(rt.RemoteLaunch(eal.LCoreFromID(4), func() int { return 0 }), eal.ErrUnknownLCore)
}

func TestWaitAll(t *testing.T) {
	assert, require := makeAR(t)
	rt := makeRuntime(t)

	for _, lc := range rt.Workers() {
		id := lc.ID()
		require.NoError(rt.RemoteLaunch(lc, func() int { return id * 10 }))
	}
	ret := rt.WaitAll()
	assert.Len(ret, 4)
	assert.Equal(50, ret[eal.LCoreFromID(5)])
}
