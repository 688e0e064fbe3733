// Package nnduration provides non-negative duration types for JSON configuration.
package nnduration

import (
	"strconv"
	"strings"
	"time"
)

// Milliseconds is a non-negative duration in milliseconds.
// It is decoded from either an integer or a string recognized by time.ParseDuration.
type Milliseconds uint64

// UnmarshalJSON implements json.Unmarshaler interface.
func (d *Milliseconds) UnmarshalJSON(p []byte) error {
	input := strings.Trim(string(p), `"`)
	if td, e := time.ParseDuration(input); e == nil {
		if td < 0 {
			return strconv.ErrRange
		}
		*d = Milliseconds(td / time.Millisecond)
		return nil
	}

	value, e := strconv.ParseUint(input, 10, 64)
	if e != nil {
		return e
	}
	*d = Milliseconds(value)
	return nil
}

// Duration converts to time.Duration.
func (d Milliseconds) Duration() time.Duration {
	return time.Duration(d) * time.Millisecond
}

// DurationOr converts non-zero value to time.Duration, or returns dflt.
func (d Milliseconds) DurationOr(dflt Milliseconds) time.Duration {
	if d == 0 {
		return dflt.Duration()
	}
	return d.Duration()
}
