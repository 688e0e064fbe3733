package ealthread

import (
	"sync/atomic"
)

// Stopper abstracts how to tell a thread to stop.
type Stopper interface {
	// BeforeWait is invoked before waiting for the lcore.
	BeforeWait()

	// AfterWait is invoked after the lcore has returned.
	AfterWait()
}

// StopFlag stops a thread by setting an atomic flag.
// The running thread checks Continue() once per loop iteration.
type StopFlag struct {
	stop atomic.Bool
}

// Continue returns true if the thread should continue.
// This should be invoked within the running thread.
func (f *StopFlag) Continue() bool {
	return !f.stop.Load()
}

// RequestStop requests a stop.
// This may be used independent from Thread, such as from a signal handler.
func (f *StopFlag) RequestStop() {
	f.stop.Store(true)
}

// BeforeWait requests a stop.
func (f *StopFlag) BeforeWait() {
	f.RequestStop()
}

// AfterWait clears the flag, so that the thread can be launched again.
func (f *StopFlag) AfterWait() {
	f.stop.Store(false)
}

var _ Stopper = (*StopFlag)(nil)
