// Package ealthread provides a thread abstraction bound to an lcore.
package ealthread

import (
	"errors"
	"fmt"

	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
)

var logger = logging.New("ealthread")

// ErrRunning indicates an error condition when a function expects the thread to be stopped.
var ErrRunning = errors.New("operation not permitted when thread is running")

// ExitError indicates a thread returned a nonzero exit code.
type ExitError struct {
	LCore eal.LCore
	Code  int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("lcore %s exit code %d", e.LCore, e.Code)
}

// Thread represents a procedure running on an LCore.
type Thread interface {
	// LCore returns assigned lcore.
	LCore() eal.LCore

	// SetLCore assigns an lcore.
	// This can only be used when the thread is stopped.
	SetLCore(lc eal.LCore)

	// IsRunning indicates whether the thread is running.
	IsRunning() bool

	// Launch launches the thread on its lcore.
	// It returns ErrNoLCore if SetLCore has not been called.
	Launch(rt *eal.Runtime) error

	// Wait blocks until the thread returns on its own, and returns its exit code.
	// It returns 0 immediately if the thread is not running.
	Wait() int

	// Stop requests the thread to return, and waits for it.
	// A nonzero exit code is reported as ExitError.
	Stop() error
}

// New creates a Thread.
// main is the thread procedure; stop tells main to return.
func New(main func() int, stop Stopper) Thread {
	return &thread{main: main, stop: stop}
}

type thread struct {
	lc   eal.LCore
	rt   *eal.Runtime
	main func() int
	stop Stopper
}

func (th *thread) LCore() eal.LCore {
	return th.lc
}

func (th *thread) SetLCore(lc eal.LCore) {
	if th.IsRunning() {
		panic(ErrRunning)
	}
	th.lc = lc
}

func (th *thread) IsRunning() bool {
	return th.rt != nil && th.lc.Valid() && th.rt.IsBusy(th.lc)
}

func (th *thread) Launch(rt *eal.Runtime) error {
	switch {
	case !th.lc.Valid():
		return ErrNoLCore
	case th.IsRunning():
		return ErrRunning
	}
	if e := rt.RemoteLaunch(th.lc, th.main); e != nil {
		return fmt.Errorf("launch on lcore %s: %w", th.lc, e)
	}
	th.rt = rt
	return nil
}

func (th *thread) Wait() int {
	if th.rt == nil || !th.lc.Valid() {
		return 0
	}
	return th.rt.Wait(th.lc)
}

func (th *thread) Stop() error {
	if !th.IsRunning() {
		return nil
	}
	th.stop.BeforeWait()
	code := th.rt.Wait(th.lc)
	th.stop.AfterWait()
	if code != 0 {
		return ExitError{LCore: th.lc, Code: code}
	}
	return nil
}
