package ealthread

import (
	"errors"
)

// ErrNoLCore indicates no lcore is available for a role.
var ErrNoLCore = errors.New("no lcore available")

// ThreadWithRole is a thread that identifies itself with a role.
// The role name is the key of AllocConfig.
type ThreadWithRole interface {
	Thread
	ThreadRole() string
}
