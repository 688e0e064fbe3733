// Package eal contains the execution context model: lcores, NUMA sockets, and the Runtime handle that launches
// functions on worker lcores.
package eal

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/rxqpoll/rxqpoll/core/logging"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var logger = logging.New("eal")

// Errors.
var (
	ErrUnknownLCore = errors.New("lcore is not part of the runtime")
	ErrMainLCore    = errors.New("cannot remote-launch on main lcore")
)

// RuntimeConfig contains Runtime parameters.
type RuntimeConfig struct {
	// LCoreSockets maps lcore ID to NUMA socket ID.
	LCoreSockets map[int]int

	// Main is the main lcore ID. It must appear in LCoreSockets.
	Main int

	// Pin enables CPU affinity: a launched function runs on an OS thread bound to the CPU whose ID equals the lcore ID.
	Pin bool
}

type lcoreState struct {
	socket NumaSocket

	mu   sync.Mutex
	busy bool
	done chan struct{}
	ret  int
}

// Runtime is the handle of initialized execution contexts.
// It is created once during startup and passed explicitly to whoever needs to launch work.
type Runtime struct {
	main    LCore
	workers LCores
	sockets []NumaSocket
	pin     bool
	states  map[LCore]*lcoreState
}

// NewRuntime creates a Runtime.
func NewRuntime(cfg RuntimeConfig) (*Runtime, error) {
	if _, ok := cfg.LCoreSockets[cfg.Main]; !ok {
		return nil, fmt.Errorf("main lcore %d is not in lcore list", cfg.Main)
	}

	rt := &Runtime{
		main:   LCoreFromID(cfg.Main),
		pin:    cfg.Pin,
		states: map[LCore]*lcoreState{},
	}
	socketSet := map[NumaSocket]bool{}
	for id, socketID := range cfg.LCoreSockets {
		lc := LCoreFromID(id)
		if !lc.Valid() {
			return nil, fmt.Errorf("lcore %d out of range", id)
		}
		socket := NumaSocketFromID(socketID)
		rt.states[lc] = &lcoreState{socket: socket}
		socketSet[socket] = true
		if lc != rt.main {
			rt.workers = append(rt.workers, lc)
		}
	}
	rt.workers.sort()
	for socket := range socketSet {
		rt.sockets = append(rt.sockets, socket)
	}
	sort.Slice(rt.sockets, func(i, j int) bool { return rt.sockets[i].v < rt.sockets[j].v })
	return rt, nil
}

// Main returns the main lcore.
func (rt *Runtime) Main() LCore {
	return rt.main
}

// Workers returns worker lcores in ascending ID order.
// The main lcore is excluded.
func (rt *Runtime) Workers() LCores {
	return append(LCores{}, rt.workers...)
}

// All returns every lcore, main lcore first.
func (rt *Runtime) All() LCores {
	return append(LCores{rt.main}, rt.workers...)
}

// Sockets returns NUMA sockets that have at least one lcore.
func (rt *Runtime) Sockets() []NumaSocket {
	return append([]NumaSocket{}, rt.sockets...)
}

// NumaSocketOf returns the NUMA socket of an lcore.
// Unknown lcore yields any socket.
func (rt *Runtime) NumaSocketOf(lc LCore) NumaSocket {
	if st := rt.states[lc]; st != nil {
		return st.socket
	}
	return NumaSocket{}
}

// IsBusy returns true if the lcore is running a function.
func (rt *Runtime) IsBusy(lc LCore) bool {
	st := rt.states[lc]
	if st == nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.busy
}

// RemoteLaunch asynchronously launches a function on a worker lcore.
// The returned error wraps unix.EBUSY if the lcore is already running a function.
func (rt *Runtime) RemoteLaunch(lc LCore, f func() int) error {
	st := rt.states[lc]
	switch {
	case st == nil:
		return fmt.Errorf("lcore %s: %w", lc, ErrUnknownLCore)
	case lc == rt.main:
		return ErrMainLCore
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.busy {
		return fmt.Errorf("lcore %s: %w", lc, Errno(unix.EBUSY))
	}
	st.busy = true
	st.done = make(chan struct{})

	go func(done chan<- struct{}) {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if rt.pin {
			pinThread(lc)
		}
		ret := f()

		st.mu.Lock()
		st.ret = ret
		st.mu.Unlock()
		close(done)
	}(st.done)
	return nil
}

// Wait blocks until the lcore finishes running, and returns the lcore function's return value.
// If the lcore is not running, returns 0 immediately.
func (rt *Runtime) Wait(lc LCore) int {
	st := rt.states[lc]
	if st == nil {
		return 0
	}

	st.mu.Lock()
	if !st.busy {
		st.mu.Unlock()
		return 0
	}
	done := st.done
	st.mu.Unlock()

	<-done

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.done == done {
		st.busy = false
	}
	return st.ret
}

// WaitAll waits for every worker lcore and returns their return values keyed by lcore.
func (rt *Runtime) WaitAll() map[LCore]int {
	m := map[LCore]int{}
	for _, lc := range rt.workers {
		m[lc] = rt.Wait(lc)
	}
	return m
}

func pinThread(lc LCore) {
	var set unix.CPUSet
	set.Set(lc.ID())
	if e := unix.SchedSetaffinity(0, &set); e != nil {
		logger.Warn("cannot pin lcore thread", lc.ZapField("lc"), zap.Error(e))
	}
}
