package eal_test

import (
	"github.com/rxqpoll/rxqpoll/core/testenv"
)

var makeAR = testenv.MakeAR
