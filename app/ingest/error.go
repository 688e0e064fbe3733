package ingest

import (
	"errors"
	"fmt"
)

// Startup phases.
const (
	PhaseInit      = "init"
	PhasePorts     = "ports"
	PhaseAssign    = "assign"
	PhasePool      = "pool"
	PhaseConfigure = "configure"
	PhaseLaunch    = "launch"
)

// ErrNoPorts indicates no Ethernet port is available.
var ErrNoPorts = errors.New("no Ethernet port available")

// StartupError indicates a failure during startup.
type StartupError struct {
	Phase string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup %s: %v", e.Phase, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

var exitCodes = map[string]int{
	PhaseInit:      2,
	PhasePorts:     3,
	PhaseAssign:    4,
	PhasePool:      5,
	PhaseConfigure: 6,
	PhaseLaunch:    7,
}

// ExitCode returns the process exit code for an error returned by New or Run.
// nil yields 0; errors without a known phase yield 1.
func ExitCode(e error) int {
	if e == nil {
		return 0
	}
	var se *StartupError
	if errors.As(e, &se) {
		if code, ok := exitCodes[se.Phase]; ok {
			return code
		}
	}
	return 1
}
