// Package pktmbuf contains packet buffers and their pool.
//
// A *Packet is a handle to exactly one buffer. The holder must release it with Close exactly once; releasing twice
// or touching the data after release panics.
package pktmbuf

import (
	"errors"
	"sync/atomic"

	"github.com/rxqpoll/rxqpoll/core/logging"
	"go.uber.org/zap"
)

var logger = logging.New("pktmbuf")

// ErrInsufficientRoom indicates the buffer has not enough headroom or tailroom.
var ErrInsufficientRoom = errors.New("insufficient room in packet buffer")

// noCopy may be embedded into structs which must not be copied after first use.
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// slot is one pool buffer.
// gen is odd while the slot is owned and is incremented on every acquire and release.
type slot struct {
	gen    atomic.Uint64
	pool   *Pool
	index  uint32
	buf    []byte
	off    int
	length int
	port   uint16
	queue  uint16
}

// Packet represents a packet in a pool buffer.
// Each acquire yields a distinct *Packet bound to one generation of its slot, so a handle kept after Close
// cannot reach the buffer again even after the slot is reused.
type Packet struct {
	noCopy noCopy
	s      *slot
	gen    uint64
}

func (pkt *Packet) mustOwn() *slot {
	s := pkt.s
	if g := s.gen.Load(); g != pkt.gen {
		logger.Panic("packet used after release", zap.Uint32("index", s.index), zap.Uint64("gen", pkt.gen), zap.Uint64("slot-gen", g))
	}
	return s
}

// Close releases the packet to its pool.
// Closing a nil packet is a no-op; closing a packet twice panics.
func (pkt *Packet) Close() error {
	if pkt == nil {
		return nil
	}
	pkt.s.pool.release(pkt)
	return nil
}

// Len returns packet length in octets.
func (pkt *Packet) Len() int {
	return pkt.mustOwn().length
}

// Port returns ingress port.
func (pkt *Packet) Port() uint16 {
	return pkt.mustOwn().port
}

// SetPort sets ingress port.
func (pkt *Packet) SetPort(port uint16) {
	pkt.mustOwn().port = port
}

// Queue returns ingress queue.
func (pkt *Packet) Queue() uint16 {
	return pkt.mustOwn().queue
}

// SetQueue sets ingress queue.
func (pkt *Packet) SetQueue(queue uint16) {
	pkt.mustOwn().queue = queue
}

// ZeroCopyBytes returns the packet data.
// It aliases the buffer and must not be retained after Close.
func (pkt *Packet) ZeroCopyBytes() []byte {
	s := pkt.mustOwn()
	end := s.off + s.length
	return s.buf[s.off:end:end]
}

// Bytes returns a []byte that contains a copy of the data in this packet.
func (pkt *Packet) Bytes() []byte {
	return append([]byte(nil), pkt.ZeroCopyBytes()...)
}

// Headroom returns the room before packet data.
func (pkt *Packet) Headroom() int {
	return pkt.mustOwn().off
}

// Tailroom returns the room after packet data.
func (pkt *Packet) Tailroom() int {
	s := pkt.mustOwn()
	return len(s.buf) - s.off - s.length
}

// Extend grows the packet by n octets at the tail, and returns the new tail region for the caller to fill.
func (pkt *Packet) Extend(n int) ([]byte, error) {
	if n < 0 || n > pkt.Tailroom() {
		return nil, ErrInsufficientRoom
	}
	s := pkt.s
	start := s.off + s.length
	s.length += n
	return s.buf[start : start+n : start+n], nil
}

// Trim removes n octets from the tail.
func (pkt *Packet) Trim(n int) error {
	s := pkt.mustOwn()
	if n < 0 || n > s.length {
		return ErrInsufficientRoom
	}
	s.length -= n
	return nil
}

// Append appends to the packet in tailroom.
func (pkt *Packet) Append(input []byte) error {
	room, e := pkt.Extend(len(input))
	if e != nil {
		return e
	}
	copy(room, input)
	return nil
}

// Prepend prepends to the packet in headroom.
func (pkt *Packet) Prepend(input []byte) error {
	s := pkt.mustOwn()
	if len(input) > s.off {
		return ErrInsufficientRoom
	}
	s.off -= len(input)
	s.length += len(input)
	copy(s.buf[s.off:], input)
	return nil
}
