// Package runningstat implements Knuth and Welford's method for computing the standard deviation.
package runningstat

import (
	"math"

	binutils "github.com/jfoster/binary-utilities"
	"github.com/zyedidia/generic"
)

// RunningStat collects statistics and allows computing mean and variance.
// Algorithm comes from https://www.johndcook.com/blog/standard_deviation/ .
//
// RunningStat is not thread-safe.
type RunningStat struct {
	i    uint64
	n    uint64
	mask uint64
	m1   float64
	m2   float64
}

// Init initializes the instance and clears existing data.
// sampleInterval: how often to collect sample, will be rounded up to a power of two and truncated between 1 and 2^30.
func (s *RunningStat) Init(sampleInterval int) {
	*s = RunningStat{
		mask: uint64(generic.Clamp(binutils.NextPowerOfTwo(int64(max(sampleInterval, 1))), 1, 1<<30)) - 1,
	}
}

// Push adds an input.
func (s *RunningStat) Push(x float64) {
	s.i++
	if s.i&s.mask != 0 {
		return
	}

	s.n++
	if s.n == 1 {
		s.m1, s.m2 = x, 0
		return
	}
	delta := x - s.m1
	s.m1 += delta / float64(s.n)
	s.m2 += delta * (x - s.m1)
}

// Read returns current counters as Snapshot.
func (s RunningStat) Read() Snapshot {
	return newSnapshot(s.i, s.n, s.m1, s.m2, false, 0, 0)
}

// IntStat is a RunningStat for unsigned integers that also tracks minimum and maximum.
// Minimum and maximum consider every input, not only collected samples.
type IntStat struct {
	s   RunningStat
	min uint64
	max uint64
}

// Init initializes the instance and clears existing data.
func (s *IntStat) Init(sampleInterval int) {
	s.s.Init(sampleInterval)
	s.min = math.MaxUint64
	s.max = 0
}

// Push adds an input.
func (s *IntStat) Push(x uint64) {
	s.min = min(s.min, x)
	s.max = max(s.max, x)
	s.s.Push(float64(x))
}

// Read returns current counters as Snapshot.
func (s IntStat) Read() Snapshot {
	return newSnapshot(s.s.i, s.s.n, s.s.m1, s.s.m2, s.s.i > 0, s.min, s.max)
}
