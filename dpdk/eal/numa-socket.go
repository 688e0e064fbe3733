package eal

import (
	"encoding/json"
	"strconv"

	"go.uber.org/zap"
)

// MaxNumaNodes limits NUMA socket IDs to [0, MaxNumaNodes).
const MaxNumaNodes = 32

// NumaSocket identifies a NUMA socket.
// The zero value means any socket.
type NumaSocket struct {
	v int // ID+1, 0 means any
}

// NumaSocketFromID constructs NumaSocket from socket ID.
// Out of range ID yields any socket.
func NumaSocketFromID(id int) NumaSocket {
	if uint(id) >= MaxNumaNodes {
		return NumaSocket{}
	}
	return NumaSocket{v: id + 1}
}

// ID returns the socket ID, or -1 for any socket.
func (socket NumaSocket) ID() int {
	return socket.v - 1
}

// IsAny determines whether this is the any socket.
func (socket NumaSocket) IsAny() bool {
	return socket == NumaSocket{}
}

// Match determines whether two sockets are compatible.
// The any socket is compatible with every socket.
func (socket NumaSocket) Match(other NumaSocket) bool {
	return socket.IsAny() || other.IsAny() || socket == other
}

func (socket NumaSocket) String() string {
	if socket.IsAny() {
		return "any"
	}
	return strconv.Itoa(socket.ID())
}

// ZapField returns a zap.Field that logs the socket ID, or "any".
func (socket NumaSocket) ZapField(key string) zap.Field {
	if socket.IsAny() {
		return zap.String(key, socket.String())
	}
	return zap.Int(key, socket.ID())
}

// MarshalJSON implements json.Marshaler interface.
// The any socket becomes null.
func (socket NumaSocket) MarshalJSON() ([]byte, error) {
	if socket.IsAny() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(socket.ID()), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (socket *NumaSocket) UnmarshalJSON(p []byte) error {
	var id *int
	if e := json.Unmarshal(p, &id); e != nil {
		return e
	}
	*socket = NumaSocket{}
	if id != nil {
		*socket = NumaSocketFromID(*id)
	}
	return nil
}

// WithNumaSocket is implemented by objects placed on a NUMA socket.
type WithNumaSocket interface {
	NumaSocket() NumaSocket
}
