// Package macaddr contains helpers for MAC-48 addresses.
package macaddr

import (
	"bytes"
	"math/rand"
	"net"
)

// Equal determines whether two addresses are the same.
func Equal(a, b net.HardwareAddr) bool {
	return bytes.Equal(a, b)
}

// IsValid determines whether the address is a MAC-48 address.
func IsValid(a net.HardwareAddr) bool {
	return len(a) == 6
}

// IsUnicast determines whether the address is a non-zero unicast MAC-48 address.
func IsUnicast(a net.HardwareAddr) bool {
	return IsValid(a) && a[0]&0x01 == 0 && !bytes.Equal(a, zero)
}

// IsMulticast determines whether the address is a multicast MAC-48 address.
// This includes the broadcast address.
func IsMulticast(a net.HardwareAddr) bool {
	return IsValid(a) && a[0]&0x01 != 0
}

// MakeRandomUnicast generates a random locally administered unicast MAC-48 address.
func MakeRandomUnicast() net.HardwareAddr {
	a := make(net.HardwareAddr, 6)
	rand.Read(a)
	a[0] = a[0]&^0x01 | 0x02
	return a
}

// Accept determines whether a port with address self receives a frame whose destination is dst.
// A frame is accepted if dst is multicast or matches self, or if promisc is true.
func Accept(self, dst net.HardwareAddr, promisc bool) bool {
	return promisc || IsMulticast(dst) || Equal(self, dst)
}

var zero = make(net.HardwareAddr, 6)
