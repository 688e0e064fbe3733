package nnduration_test

import (
	"testing"
	"time"

	"github.com/rxqpoll/rxqpoll/core/nnduration"
	"github.com/rxqpoll/rxqpoll/core/testenv"
)

var makeAR = testenv.MakeAR

func TestDecode(t *testing.T) {
	assert, _ := makeAR(t)

	for input, expected := range map[string]nnduration.Milliseconds{
		`0`:       0,
		`250`:     250,
		`"250"`:   250,
		`"1.5s"`:  1500,
		`"2m"`:    120000,
		`"900us"`: 0,
		`"1h1ms"`: 3600001,
	} {
		var d nnduration.Milliseconds
		if assert.NoError(d.UnmarshalJSON([]byte(input)), input) {
			assert.Equal(expected, d, input)
		}
	}

	for _, input := range []string{`-5`, `"-5ms"`, `"soon"`, `1.5`} {
		var d nnduration.Milliseconds
		assert.Error(d.UnmarshalJSON([]byte(input)), input)
	}
}

func TestDurationOr(t *testing.T) {
	assert, _ := makeAR(t)

	var cfg struct {
		Tick nnduration.Milliseconds `json:"tick,omitempty"`
	}
	assert.Equal(time.Second, cfg.Tick.DurationOr(1000))
	assert.Equal(`{}`, testenv.ToJSON(cfg))

	testenv.FromJSON(`{"tick":"40ms"}`, &cfg)
	assert.Equal(40*time.Millisecond, cfg.Tick.Duration())
	assert.Equal(40*time.Millisecond, cfg.Tick.DurationOr(1000))
	assert.Equal(`{"tick":40}`, testenv.ToJSON(cfg))
}
