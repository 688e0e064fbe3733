// Package testenv provides general test utilities.
package testenv

import (
	"encoding/json"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MakeAR creates testify assert and require objects.
func MakeAR(t require.TestingT) (*assert.Assertions, *require.Assertions) {
	return assert.New(t), require.New(t)
}

// FromJSON unmarshals a JSON string into ptr, and panics on error.
func FromJSON(j string, ptr any) {
	if e := json.Unmarshal([]byte(j), ptr); e != nil {
		panic(e)
	}
}

// ToJSON marshals a value as a JSON string.
// On error, the result starts with "ERROR:".
func ToJSON(v any) string {
	j, e := json.Marshal(v)
	if e != nil {
		return "ERROR: " + e.Error()
	}
	return string(j)
}
