package ingest

import (
	"errors"
	"fmt"

	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ealthread"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
)

// ErrInsufficientContexts indicates there are fewer worker lcores than receive queues.
var ErrInsufficientContexts = errors.New("insufficient execution contexts")

// Assignment binds a receive queue to a worker lcore.
type Assignment struct {
	Port  int       `json:"port"`
	Queue int       `json:"queue"`
	LCore eal.LCore `json:"lcore"`
}

// AssignCount checks that portCount*queuesPerPort queues can be served by contexts lcores, one of which is
// the main lcore.
func AssignCount(portCount, queuesPerPort, contexts int) error {
	need, have := portCount*queuesPerPort, contexts-1
	if need > have {
		return fmt.Errorf("%w: need %d worker lcores, have %d", ErrInsufficientContexts, need, have)
	}
	return nil
}

// Assign assigns every (port, queue) pair to a worker lcore.
// Ports are iterated in the outer loop and queues in the inner loop; lcores are taken in ascending order.
// The main lcore is never assigned.
func Assign(ports []int, queuesPerPort int, rt *eal.Runtime) (list []Assignment, e error) {
	workers := rt.Workers()
	if e := AssignCount(len(ports), queuesPerPort, len(workers)+1); e != nil {
		return nil, e
	}

	for _, port := range ports {
		for queue := 0; queue < queuesPerPort; queue++ {
			list = append(list, Assignment{
				Port:  port,
				Queue: queue,
				LCore: workers[len(list)],
			})
		}
	}
	return list, nil
}

// AssignNuma assigns every (port, queue) pair to a worker lcore through an allocator.
// Each lcore is allocated with Role, preferring the NUMA socket of the port.
// On failure, lcores allocated so far are freed.
func AssignNuma(ports []ethdev.EthDev, queuesPerPort int, la *ealthread.Allocator) (list []Assignment, e error) {
	for _, port := range ports {
		for queue := 0; queue < queuesPerPort; queue++ {
			lc := la.Alloc(Role, port.NumaSocket())
			if !lc.Valid() {
				for _, a := range list {
					la.Free(a.LCore)
				}
				return nil, fmt.Errorf("%w: port %d queue %d: %w", ErrInsufficientContexts, port.ID(), queue, ealthread.ErrNoLCore)
			}
			list = append(list, Assignment{
				Port:  port.ID(),
				Queue: queue,
				LCore: lc,
			})
		}
	}
	return list, nil
}
