package eal

import (
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// Errno represents an error number returned by a device or runtime operation.
type Errno syscall.Errno

func (e Errno) Error() string {
	name := unix.ErrnoName(syscall.Errno(e))
	if name == "" {
		name = "E" + strconv.Itoa(int(e))
	}
	return name + " " + syscall.Errno(e).Error()
}

// Unwrap returns the underlying syscall.Errno, so that errors.Is(e, unix.EBUSY) works.
func (e Errno) Unwrap() error {
	return syscall.Errno(e)
}

// MakeErrno creates Errno from non-zero number or returns nil for zero.
// Negative numbers are negated, matching the convention of returning -errno.
func MakeErrno[T ~int | ~int8 | ~int16 | ~int32 | ~int64](errno T) error {
	switch {
	case errno == 0:
		return nil
	case errno < 0:
		return Errno(-errno)
	default:
		return Errno(errno)
	}
}
