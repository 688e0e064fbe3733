package ealthread

import (
	"sync/atomic"
)

// Ctrl is the control block of a polling thread.
// It combines a StopFlag with load counters updated by the running thread.
type Ctrl struct {
	StopFlag
	emptyPolls atomic.Uint64
	validPolls atomic.Uint64
	items      atomic.Uint64
}

// Stopper returns the Stopper of this control block.
func (ctrl *Ctrl) Stopper() Stopper {
	return &ctrl.StopFlag
}

// AddPoll records one poll that processed n items.
// This should be invoked within the running thread.
func (ctrl *Ctrl) AddPoll(n int) {
	if n == 0 {
		ctrl.emptyPolls.Add(1)
		return
	}
	ctrl.validPolls.Add(1)
	ctrl.items.Add(uint64(n))
}

// ThreadLoadStat reads LoadStat counters.
func (ctrl *Ctrl) ThreadLoadStat() (s LoadStat) {
	s.EmptyPolls = ctrl.emptyPolls.Load()
	s.ValidPolls = ctrl.validPolls.Load()
	s.Items = ctrl.items.Load()
	if s.ValidPolls > 0 {
		s.ItemsPerPoll = float64(s.Items) / float64(s.ValidPolls)
	}
	return s
}
