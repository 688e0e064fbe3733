package ealconfig

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rxqpoll/rxqpoll/core/hwinfo"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
)

// LCoreConfig contains CPU and logical core related configuration.
type LCoreConfig struct {
	// Cores is the list of processors (hardware cores) used as lcores.
	//
	// The default is allowing all cores.
	// If this list contains a non-existent core, it is skipped, unless Strict is set.
	Cores []int `json:"cores,omitempty"`

	// Strict makes a non-existent core in Cores an error.
	Strict bool `json:"strict,omitempty"`

	// CoresPerNuma maps from NUMA socket ID to the number of cores used as lcores.
	// This is ignored if Cores is specified.
	//
	// Example:
	//  CoresPerNuma[0] = 10     allows up to 10 cores on socket 0.
	//  CoresPerNuma[1] = -2     allows all but 2 cores on socket 1.
	//  CoresPerNuma[2] = 0      disallows all cores on socket 2.
	//  Omitting CoresPerNuma[3] allows all cores on socket 3.
	//
	// If this map contains a non-existent NUMA socket, it is skipped.
	CoresPerNuma map[int]int `json:"coresPerNuma,omitempty"`

	// LCoreMain is the main lcore ID.
	// The default is the lowest numbered available lcore.
	LCoreMain *int `json:"lcoreMain,omitempty"`
}

func (cfg LCoreConfig) runtimeConfig(hwInfo hwinfo.Provider) (rc eal.RuntimeConfig, e error) {
	avail, e := cfg.gatherAvail(hwInfo)
	if e != nil {
		return rc, e
	}

	rc.LCoreSockets = map[int]int{}
	for socket, cores := range avail {
		for _, id := range cores {
			if id >= eal.MaxLCore {
				return rc, fmt.Errorf("lcore %d exceeds maximum %d", id, eal.MaxLCore-1)
			}
			rc.LCoreSockets[id] = socket
		}
	}
	if len(rc.LCoreSockets) == 0 {
		return rc, errors.New("no processor available")
	}

	if cfg.LCoreMain != nil {
		rc.Main = *cfg.LCoreMain
		if _, ok := rc.LCoreSockets[rc.Main]; !ok {
			return rc, fmt.Errorf("main lcore %d is not available", rc.Main)
		}
	} else {
		ids := []int{}
		for id := range rc.LCoreSockets {
			ids = append(ids, id)
		}
		rc.Main = slices.Min(ids)
	}
	return rc, nil
}

func (cfg LCoreConfig) gatherAvail(hwInfo hwinfo.Provider) (availBySocket map[int][]int, e error) {
	availBySocket = map[int][]int{}
	if len(cfg.Cores) > 0 {
		hwCores := hwInfo.Cores().ByLogicalCore()
		for _, coreID := range cfg.Cores {
			hwCore, found := hwCores[coreID]
			if !found {
				if cfg.Strict {
					return nil, fmt.Errorf("processor %d does not exist", coreID)
				}
				continue
			}
			availBySocket[hwCore.NumaSocket] = append(availBySocket[hwCore.NumaSocket], coreID)
		}
		return availBySocket, nil
	}

	for socket, hwCores := range hwInfo.Cores().ByNumaSocket() {
		socketCores := hwCores.PrimaryFirst()
		pref, hasPref := cfg.CoresPerNuma[socket]
		switch {
		case !hasPref: // allow all cores
		case pref == 0: // disallow all cores
			socketCores = nil
		case pref < 0: // disallow some cores
			pref += len(socketCores)
			if pref <= 0 { // all cores disallowed
				socketCores = nil
				break
			}
			fallthrough
		case pref > 0: // allow some cores
			if len(socketCores) > pref {
				socketCores = socketCores[:pref]
			}
		}
		availBySocket[socket] = socketCores
	}
	return availBySocket, nil
}
