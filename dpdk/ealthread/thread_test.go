package ealthread_test

import (
	"testing"

	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ealthread"
)

type testThread struct {
	ealthread.Thread
	ctrl  ealthread.Ctrl
	polls int
}

func (th *testThread) main() int {
	for th.ctrl.Continue() {
		th.polls++
		th.ctrl.AddPoll(th.polls % 2)
	}
	return 0
}

func (th *testThread) ThreadRole() string {
	return "TEST"
}

func (th *testThread) ThreadLoadStat() ealthread.LoadStat {
	return th.ctrl.ThreadLoadStat()
}

func newTestThread() *testThread {
	th := &testThread{}
	th.Thread = ealthread.New(th.main, th.ctrl.Stopper())
	return th
}

func TestThread(t *testing.T) {
	assert, require := makeAR(t)
	rt := makeRuntime(t)

	th := newTestThread()
	assert.ErrorIs(th.Launch(rt), ealthread.ErrNoLCore)
	assert.False(th.IsRunning())

	th.SetLCore(eal.LCoreFromID(3))
	assert.False(th.IsRunning())
	require.NoError(th.Launch(rt))
	assert.True(th.IsRunning())
	assert.True(rt.IsBusy(eal.LCoreFromID(3)))
	assert.ErrorIs(th.Launch(rt), ealthread.ErrRunning)
	assert.Panics(func() { th.SetLCore(eal.LCoreFromID(4)) })

	require.NoError(th.Stop())
	assert.False(th.IsRunning())
	assert.NoError(th.Stop())

	stat := th.ThreadLoadStat()
	assert.EqualValues(th.polls, stat.EmptyPolls+stat.ValidPolls)
	assert.Equal(stat.ValidPolls, stat.Items)

	info := ealthread.DescribeThread(rt, th)
	assert.Equal(3, info.LCore)
	assert.Equal(0, info.NumaSocket)
	assert.Equal("TEST", info.Role)
	assert.False(info.IsRunning)
	assert.Equal(stat, info.LoadStat)

	// restartable after AfterWait clears the flag
	require.NoError(th.Launch(rt))
	require.NoError(th.Stop())
}

func TestThreadExitCode(t *testing.T) {
	assert, require := makeAR(t)
	rt := makeRuntime(t)

	var stop ealthread.StopFlag
	th := ealthread.New(func() int {
		for stop.Continue() {
		}
		return 3
	}, &stop)
	th.SetLCore(eal.LCoreFromID(1))
	require.NoError(th.Launch(rt))
	e := th.Stop()
	assert.ErrorContains(e, "exit code 3")
	var exitErr ealthread.ExitError
	if assert.ErrorAs(e, &exitErr) {
		assert.Equal(eal.LCoreFromID(1), exitErr.LCore)
		assert.Equal(3, exitErr.Code)
	}
}

func TestThreadWait(t *testing.T) {
	assert, require := makeAR(t)
	rt := makeRuntime(t)

	th := ealthread.New(func() int { return 5 }, &ealthread.StopFlag{})
	assert.Equal(0, th.Wait())
	th.SetLCore(eal.LCoreFromID(2))
	require.NoError(th.Launch(rt))
	assert.Equal(5, th.Wait())
	assert.False(th.IsRunning())
	assert.NoError(th.Stop())
}

func TestLoadStatSub(t *testing.T) {
	assert, _ := makeAR(t)

	prev := ealthread.LoadStat{EmptyPolls: 10, ValidPolls: 5, Items: 20}
	cur := ealthread.LoadStat{EmptyPolls: 15, ValidPolls: 9, Items: 40}
	diff := cur.Sub(prev)
	assert.EqualValues(5, diff.EmptyPolls)
	assert.EqualValues(4, diff.ValidPolls)
	assert.EqualValues(20, diff.Items)
	assert.InDelta(5.0, diff.ItemsPerPoll, 0.001)
}
