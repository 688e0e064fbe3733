package eal

import (
	"encoding/json"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// MaxLCore is the maximum lcore ID plus one.
const MaxLCore = 1024

// LCore represents a logical core.
// Zero value is invalid lcore.
type LCore struct {
	v int // lcore ID + 1
}

// LCoreFromID converts lcore ID to LCore.
func LCoreFromID(id int) (lc LCore) {
	if id < 0 || id >= MaxLCore {
		return lc
	}
	lc.v = id + 1
	return lc
}

// ID returns lcore ID.
func (lc LCore) ID() int {
	return lc.v - 1
}

// Valid returns true if this is a valid lcore (not zero value).
func (lc LCore) Valid() bool {
	return lc.v != 0
}

func (lc LCore) String() string {
	if !lc.Valid() {
		return "invalid"
	}
	return strconv.Itoa(lc.ID())
}

// ZapField returns a zap.Field for logging.
func (lc LCore) ZapField(key string) zap.Field {
	if !lc.Valid() {
		return zap.String(key, "invalid")
	}
	return zap.Int(key, lc.ID())
}

// MarshalJSON encodes lcore as number.
// Invalid lcore is encoded as null.
func (lc LCore) MarshalJSON() ([]byte, error) {
	if !lc.Valid() {
		return json.Marshal(nil)
	}
	return json.Marshal(lc.ID())
}

// LCores is a list of lcores.
type LCores []LCore

// IDs returns lcore IDs.
func (lcs LCores) IDs() (list []int) {
	list = make([]int, len(lcs))
	for i, lc := range lcs {
		list[i] = lc.ID()
	}
	return list
}

// Contains determines whether lc is in the list.
func (lcs LCores) Contains(lc LCore) bool {
	for _, l := range lcs {
		if l == lc {
			return true
		}
	}
	return false
}

// ZapField returns a zap.Field for logging.
func (lcs LCores) ZapField(key string) zap.Field {
	return zap.Ints(key, lcs.IDs())
}

func (lcs LCores) sort() {
	sort.Slice(lcs, func(i, j int) bool { return lcs[i].v < lcs[j].v })
}
