// Package hwinfo gathers CPU topology.
package hwinfo

import (
	"slices"

	"github.com/rxqpoll/rxqpoll/core/logging"
)

var logger = logging.New("hwinfo")

// CoreInfo describes a logical CPU core.
type CoreInfo struct {
	NumaSocket   int `json:"numaSocket"`
	PhysicalCore int `json:"physicalCore"`
	LogicalCore  int `json:"logicalCore"`
}

// Cores contains information about CPU cores.
type Cores []CoreInfo

// ByNumaSocket classifies cores by NUMA socket.
func (cores Cores) ByNumaSocket() map[int]Cores {
	m := map[int]Cores{}
	for _, core := range cores {
		m[core.NumaSocket] = append(m[core.NumaSocket], core)
	}
	return m
}

// ByLogicalCore indexes cores by logical core ID.
func (cores Cores) ByLogicalCore() map[int]CoreInfo {
	m := map[int]CoreInfo{}
	for _, core := range cores {
		m[core.LogicalCore] = core
	}
	return m
}

// NumaSockets returns distinct NUMA sockets in ascending order.
func (cores Cores) NumaSockets() (list []int) {
	for _, core := range cores {
		list = append(list, core.NumaSocket)
	}
	slices.Sort(list)
	return slices.Compact(list)
}

// ListPrimary returns the first logical core of each physical core.
func (cores Cores) ListPrimary() []int {
	primary, _ := cores.splitHyperThread()
	return primary
}

// ListSecondary returns logical cores that share a physical core with an earlier logical core.
func (cores Cores) ListSecondary() []int {
	_, secondary := cores.splitHyperThread()
	return secondary
}

// PrimaryFirst returns every logical core, primaries before secondaries.
// Workers placed in this order avoid sharing a physical core until they must.
func (cores Cores) PrimaryFirst() []int {
	primary, secondary := cores.splitHyperThread()
	return append(primary, secondary...)
}

func (cores Cores) splitHyperThread() (primary, secondary []int) {
	seen := map[[2]int]bool{}
	for _, core := range cores {
		key := [2]int{core.NumaSocket, core.PhysicalCore}
		if seen[key] {
			secondary = append(secondary, core.LogicalCore)
		} else {
			primary = append(primary, core.LogicalCore)
			seen[key] = true
		}
	}
	return
}

// Provider provides information about hardware.
type Provider interface {
	// Cores provides information about CPU cores usable by this process.
	Cores() Cores
}

// Static is a Provider with fixed information.
type Static Cores

// Cores implements Provider interface.
func (s Static) Cores() Cores {
	return Cores(s)
}

// Default is the Provider that reads the running system.
var Default Provider = &procinfoProvider{}
