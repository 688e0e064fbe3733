package ealinit_test

import (
	"testing"

	"github.com/rxqpoll/rxqpoll/core/hwinfo"
	"github.com/rxqpoll/rxqpoll/dpdk/ealinit"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
)

var testHwInfo = hwinfo.Static{
	{NumaSocket: 0, PhysicalCore: 0, LogicalCore: 0},
	{NumaSocket: 0, PhysicalCore: 1, LogicalCore: 1},
	{NumaSocket: 1, PhysicalCore: 0, LogicalCore: 2},
	{NumaSocket: 1, PhysicalCore: 1, LogicalCore: 3},
}

func TestInit(t *testing.T) {
	assert, require := makeAR(t)

	var cfg ealinit.Config
	fromJSON(`{
		"eal": {"lcoreMain": 1},
		"ports": [{"ring": {"name": "A"}}, {"ring": {"maxRxQueues": 4}}]
	}`, &cfg)

	env, e := ealinit.Init(cfg, testHwInfo)
	require.NoError(e)
	defer env.Close()

	assert.Equal(1, env.Runtime.Main().ID())
	assert.Equal([]int{0, 2, 3}, env.Runtime.Workers().IDs())
	require.Len(env.Ports, 2)
	assert.Equal(0, env.Ports[0].ID())
	assert.Equal("A", env.Ports[0].Name())
	assert.Equal(1, env.Ports[1].ID())
	assert.Equal("ring1", env.Ports[1].Name())
	assert.Equal(ethdev.DriverRing, env.Ports[1].DevInfo().DriverName)
	assert.Equal(4, env.Ports[1].DevInfo().MaxRxQueues)

	require.NoError(env.Close())
	assert.Empty(env.Ports)
}

func TestInitError(t *testing.T) {
	assert, _ := makeAR(t)

	var cfg ealinit.Config
	fromJSON(`{"eal": {"cores": [9]}}`, &cfg)
	_, e := ealinit.Init(cfg, testHwInfo)
	assert.Error(e)

	cfg = ealinit.Config{}
	fromJSON(`{"ports": [{}]}`, &cfg)
	_, e = ealinit.Init(cfg, testHwInfo)
	assert.Error(e)

	cfg = ealinit.Config{}
	fromJSON(`{"ports": [{"ring": {}}, {"netif": {"netif": "rxqpoll-nonexistent"}}]}`, &cfg)
	_, e = ealinit.Init(cfg, testHwInfo)
	assert.Error(e)
}
