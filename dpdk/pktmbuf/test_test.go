package pktmbuf_test

import (
	"testing"

	"github.com/rxqpoll/rxqpoll/core/testenv"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
)

var makeAR = testenv.MakeAR

func makePool(t testing.TB, capacity int) *pktmbuf.Pool {
	pool, e := pktmbuf.NewPool(pktmbuf.PoolConfig{Capacity: capacity, Dataroom: 1000})
	if e != nil {
		t.Fatal(e)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}
