package ealthread

import (
	"fmt"
	"slices"

	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// AllocConfig contains per-role lcore allocation config.
type AllocConfig map[string]AllocRoleConfig

// Validate checks that reserved lcores exist in the runtime and are not reserved by two roles.
func (c AllocConfig) Validate(rt *eal.Runtime) error {
	errs := []error{}
	owner := map[int]string{}
	workers := rt.Workers()
	for role, rc := range c {
		for _, id := range rc.LCores {
			if !workers.Contains(eal.LCoreFromID(id)) {
				errs = append(errs, fmt.Errorf("lcore %d for role %s is not a worker", id, role))
			}
			if other, ok := owner[id]; ok {
				errs = append(errs, fmt.Errorf("lcore %d is reserved by both %s and %s", id, other, role))
			}
			owner[id] = role
		}
	}
	return multierr.Combine(errs...)
}

// AllocRoleConfig contains lcore allocation config for a role.
type AllocRoleConfig struct {
	// LCores is a list of lcores reserved for this role.
	LCores []int `json:"lcores,omitempty"`

	// OnNuma is the number of lcores on a specified NUMA socket.
	OnNuma map[int]int `json:"onNuma,omitempty"`

	// EachNuma is the number of lcores on each NUMA socket.
	EachNuma int `json:"eachNuma,omitempty"`
}

func (c AllocRoleConfig) limitOn(socket eal.NumaSocket) int {
	if n, ok := c.OnNuma[socket.ID()]; ok {
		return n
	}
	return c.EachNuma
}

// Allocator allocates worker lcores to roles.
//
// Without Config, every request is satisfied while lcores remain, preferring the requested NUMA socket.
// With Config, a role receives its reserved lcores first, then unreserved lcores within its per-socket limit.
type Allocator struct {
	Config    AllocConfig
	rt        *eal.Runtime
	allocated map[eal.LCore]string
}

// NewAllocator creates an Allocator.
func NewAllocator(rt *eal.Runtime) *Allocator {
	return &Allocator{
		Config:    AllocConfig{},
		rt:        rt,
		allocated: map[eal.LCore]string{},
	}
}

func filterLCores(lcores eal.LCores, keep func(lc eal.LCore) bool) (filtered eal.LCores) {
	for _, lc := range lcores {
		if keep(lc) {
			filtered = append(filtered, lc)
		}
	}
	return filtered
}

func (la *Allocator) onSocket(lc eal.LCore, socket eal.NumaSocket) bool {
	return socket.IsAny() || la.rt.NumaSocketOf(lc) == socket
}

// available returns unallocated idle worker lcores on a NUMA socket.
func (la *Allocator) available(socket eal.NumaSocket) eal.LCores {
	return filterLCores(la.rt.Workers(), func(lc eal.LCore) bool {
		return la.allocated[lc] == "" && !la.rt.IsBusy(lc) && la.onSocket(lc, socket)
	})
}

// reservedBy returns the role whose Config lists the lcore.
func (la *Allocator) reservedBy(lc eal.LCore) string {
	for role, rc := range la.Config {
		if slices.Contains(rc.LCores, lc.ID()) {
			return role
		}
	}
	return ""
}

// mostAvailable picks the lowest candidate on the NUMA socket with most candidates.
// Ties go to the lower socket ID.
func (la *Allocator) mostAvailable(candidates func(socket eal.NumaSocket) eal.LCores) (lc eal.LCore) {
	most := 0
	for _, socket := range la.rt.Sockets() {
		if list := candidates(socket); len(list) > most {
			lc, most = list[0], len(list)
		}
	}
	return lc
}

func (la *Allocator) pick(role string, socket eal.NumaSocket) eal.LCore {
	if len(la.Config) == 0 {
		if avails := la.available(socket); !socket.IsAny() && len(avails) > 0 {
			return avails[0]
		}
		return la.mostAvailable(la.available)
	}

	if list := la.roleCandidates(role, socket); len(list) > 0 {
		return list[0]
	}
	return la.mostAvailable(func(remote eal.NumaSocket) eal.LCores {
		return la.roleCandidates(role, remote)
	})
}

// roleCandidates returns lcores on a NUMA socket that may be allocated to a role under Config.
func (la *Allocator) roleCandidates(role string, socket eal.NumaSocket) eal.LCores {
	avails := la.available(socket)
	rc := la.Config[role]

	if listed := filterLCores(avails, func(lc eal.LCore) bool { return slices.Contains(rc.LCores, lc.ID()) }); len(listed) > 0 {
		return listed
	}

	nAllocated := len(filterLCores(la.rt.Workers(), func(lc eal.LCore) bool {
		return la.allocated[lc] == role && la.onSocket(lc, socket)
	}))
	if nAllocated >= rc.limitOn(socket) {
		return nil
	}
	return filterLCores(avails, func(lc eal.LCore) bool {
		owner := la.reservedBy(lc)
		return owner == "" || owner == role
	})
}

// Alloc allocates an lcore for a role.
// Returns invalid lcore if none is available.
func (la *Allocator) Alloc(role string, socket eal.NumaSocket) (lc eal.LCore) {
	lc = la.pick(role, socket)
	if !lc.Valid() {
		return lc
	}

	la.allocated[lc] = role
	logger.Info("lcore allocated",
		zap.String("role", role),
		socket.ZapField("socket"),
		lc.ZapField("lc"),
		la.rt.NumaSocketOf(lc).ZapField("lc-socket"),
	)
	return lc
}

// RoleOf returns the role an lcore is allocated to, or empty string.
func (la *Allocator) RoleOf(lc eal.LCore) string {
	return la.allocated[lc]
}

// Free deallocates an lcore.
func (la *Allocator) Free(lc eal.LCore) {
	role := la.allocated[lc]
	if role == "" {
		logger.Panic("lcore double free", lc.ZapField("lc"))
	}
	logger.Info("lcore freed", lc.ZapField("lc"), zap.String("role", role))
	delete(la.allocated, lc)
}

// Clear deletes all allocations.
func (la *Allocator) Clear() {
	for lc := range la.allocated {
		la.Free(lc)
	}
}
