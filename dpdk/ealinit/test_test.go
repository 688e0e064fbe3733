package ealinit_test

import (
	"github.com/rxqpoll/rxqpoll/core/testenv"
)

var (
	makeAR   = testenv.MakeAR
	fromJSON = testenv.FromJSON
)
