package eal_test

import (
	"encoding/json"
	"testing"

	"github.com/rxqpoll/rxqpoll/core/testenv"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"golang.org/x/sys/unix"
)

func TestLCore(t *testing.T) {
	assert, _ := makeAR(t)

	var invalid eal.LCore
	assert.False(invalid.Valid())
	assert.Equal("invalid", invalid.String())
	assert.False(eal.LCoreFromID(-1).Valid())
	assert.False(eal.LCoreFromID(eal.MaxLCore).Valid())

	lc := eal.LCoreFromID(0)
	assert.True(lc.Valid())
	assert.Equal(0, lc.ID())
	assert.Equal("0", lc.String())
	assert.Equal("0", testenv.ToJSON(lc))
	assert.Equal("null", testenv.ToJSON(invalid))
}

func TestNumaSocket(t *testing.T) {
	assert, _ := makeAR(t)

	var anySocket eal.NumaSocket
	s1 := eal.NumaSocketFromID(1)
	assert.True(anySocket.IsAny())
	assert.True(anySocket.Match(s1))
	assert.False(eal.NumaSocketFromID(0).Match(s1))
	assert.Equal("any", anySocket.String())

	var decoded struct {
		A eal.NumaSocket `json:"a"`
		B eal.NumaSocket `json:"b"`
	}
	assert.NoError(json.Unmarshal([]byte(`{"a":1,"b":null}`), &decoded))
	assert.Equal(s1, decoded.A)
	assert.True(decoded.B.IsAny())
}

func TestErrno(t *testing.T) {
	assert, _ := makeAR(t)

	assert.NoError(eal.MakeErrno(0))
	e := eal.MakeErrno(-int(unix.ENOMEM))
	assert.Equal(eal.Errno(unix.ENOMEM), e)
	assert.ErrorIs(e, unix.ENOMEM)
	assert.Contains(e.Error(), "ENOMEM")
}
