package ealconfig_test

import (
	"github.com/rxqpoll/rxqpoll/core/hwinfo"
	"github.com/rxqpoll/rxqpoll/core/testenv"
)

var (
	makeAR   = testenv.MakeAR
	fromJSON = testenv.FromJSON
)

// testHwInfo has 2 NUMA sockets with 4 physical cores each; hyperthreads are cores 8-15.
var testHwInfo = func() (p hwinfo.Static) {
	for lc := 0; lc < 16; lc++ {
		p = append(p, hwinfo.CoreInfo{
			NumaSocket:   lc % 8 / 4,
			PhysicalCore: lc % 4,
			LogicalCore:  lc,
		})
	}
	return p
}()
