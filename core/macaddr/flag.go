package macaddr

import (
	"encoding"
	"flag"
	"fmt"
	"net"
)

// Flag is a unicast MAC-48 address usable with flag and json packages.
// Its zero value is unset.
type Flag struct {
	net.HardwareAddr
}

var (
	_ flag.Getter              = (*Flag)(nil)
	_ encoding.TextMarshaler   = Flag{}
	_ encoding.TextUnmarshaler = (*Flag)(nil)
)

// Empty returns true if the address is unset.
func (f Flag) Empty() bool {
	return len(f.HardwareAddr) == 0
}

// Get implements flag.Getter interface.
func (f *Flag) Get() any {
	return f.HardwareAddr
}

// Set implements flag.Value interface.
func (f *Flag) Set(s string) error {
	a, e := net.ParseMAC(s)
	if e != nil {
		return e
	}
	if !IsUnicast(a) {
		return fmt.Errorf("%s is not a unicast MAC-48 address", a)
	}
	f.HardwareAddr = a
	return nil
}

// String implements flag.Value interface.
func (f Flag) String() string {
	if f.Empty() {
		return ""
	}
	return f.HardwareAddr.String()
}

// MarshalText implements encoding.TextMarshaler interface.
func (f Flag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler interface.
// Empty text leaves the address unset.
func (f *Flag) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		f.HardwareAddr = nil
		return nil
	}
	return f.Set(string(text))
}
