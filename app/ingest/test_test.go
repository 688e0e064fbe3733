package ingest_test

import (
	"testing"

	"github.com/rxqpoll/rxqpoll/core/hwinfo"
	"github.com/rxqpoll/rxqpoll/core/testenv"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	makeAR   = testenv.MakeAR
	fromJSON = testenv.FromJSON
)

// makeHwInfo creates CPU topology with n logical cores on socket 0.
func makeHwInfo(n int) (p hwinfo.Static) {
	for lc := 0; lc < n; lc++ {
		p = append(p, hwinfo.CoreInfo{NumaSocket: 0, PhysicalCore: lc, LogicalCore: lc})
	}
	return p
}

// makeRuntime creates a runtime with n lcores; lcore 0 is main.
func makeRuntime(t testing.TB, n int) *eal.Runtime {
	lcs := map[int]int{}
	for lc := 0; lc < n; lc++ {
		lcs[lc] = lc * 2 / n
	}
	rt, e := eal.NewRuntime(eal.RuntimeConfig{LCoreSockets: lcs, Main: 0})
	if e != nil {
		t.Fatal(e)
	}
	return rt
}
