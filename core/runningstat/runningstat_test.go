package runningstat_test

import (
	"testing"

	"github.com/rxqpoll/rxqpoll/core/runningstat"
	"github.com/rxqpoll/rxqpoll/core/testenv"
)

var makeAR = testenv.MakeAR

func TestRunningStat(t *testing.T) {
	assert, _ := makeAR(t)

	var s runningstat.RunningStat
	s.Init(1)
	assert.Zero(s.Read().Count)

	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Push(x)
	}
	snap := s.Read()
	assert.EqualValues(8, snap.Count)
	assert.EqualValues(8, snap.Len)
	assert.InDelta(5.0, snap.Mean, 1e-9)
	assert.InDelta(32.0/7, snap.Variance, 1e-9)
	assert.Nil(snap.Min)
	assert.Nil(snap.Max)
}

func TestSampleInterval(t *testing.T) {
	assert, _ := makeAR(t)

	var s runningstat.RunningStat
	s.Init(3) // rounded to 4
	for i := 1; i <= 16; i++ {
		s.Push(float64(i))
	}
	snap := s.Read()
	assert.EqualValues(16, snap.Count)
	assert.EqualValues(4, snap.Len)
	assert.InDelta(10.0, snap.Mean, 1e-9) // 4, 8, 12, 16
}

func TestIntStat(t *testing.T) {
	assert, require := makeAR(t)

	var s runningstat.IntStat
	s.Init(1)
	empty := s.Read()
	assert.Nil(empty.Min)

	for _, x := range []uint64{32, 1, 7} {
		s.Push(x)
	}
	snap := s.Read()
	require.NotNil(snap.Min)
	require.NotNil(snap.Max)
	assert.EqualValues(1, *snap.Min)
	assert.EqualValues(32, *snap.Max)
	assert.InDelta(40.0/3, snap.Mean, 1e-9)

	assert.Equal(snap, snap.Add(empty))
	assert.Equal(snap, empty.Add(snap))
}

func TestAdd(t *testing.T) {
	assert, require := makeAR(t)

	var a, b, all runningstat.IntStat
	a.Init(1)
	b.Init(1)
	all.Init(1)
	for i, x := range []uint64{3, 9, 1, 12, 6, 6, 30, 2} {
		if i%3 == 0 {
			a.Push(x)
		} else {
			b.Push(x)
		}
		all.Push(x)
	}

	sum, exp := a.Read().Add(b.Read()), all.Read()
	assert.Equal(exp.Count, sum.Count)
	assert.Equal(exp.Len, sum.Len)
	assert.InDelta(exp.Mean, sum.Mean, 1e-9)
	assert.InDelta(exp.Variance, sum.Variance, 1e-9)
	require.NotNil(sum.Min)
	assert.Equal(*exp.Min, *sum.Min)
	assert.Equal(*exp.Max, *sum.Max)
}
