package runningstat

import (
	"math"

	"github.com/graphql-go/graphql"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
	"github.com/zyedidia/generic"
)

// Snapshot contains a snapshot of RunningStat reading.
type Snapshot struct {
	Count    uint64  `json:"count" gqldesc:"Number of input values."`
	Len      uint64  `json:"len" gqldesc:"Number of collected samples."`
	Mean     float64 `json:"mean" gqldesc:"Mean value. Valid if len>0."`
	Variance float64 `json:"variance" gqldesc:"Variance of samples. Valid if len>1."`
	Stdev    float64 `json:"stdev" gqldesc:"Standard deviation of samples. Valid if len>1."`
	M1       float64 `json:"m1"`
	M2       float64 `json:"m2"`
	Min      *uint64 `json:"min,omitempty" gqldesc:"Minimum value. Valid if count>0."`
	Max      *uint64 `json:"max,omitempty" gqldesc:"Maximum value. Valid if count>0."`
}

// Add combines stats with another instance.
func (s Snapshot) Add(o Snapshot) Snapshot {
	switch {
	case s.Count == 0:
		return o
	case o.Count == 0:
		return s
	}

	i, n := s.Count+o.Count, s.Len+o.Len
	var m1, m2 float64
	if n > 0 {
		aN, bN, cN := float64(s.Len), float64(o.Len), float64(n)
		delta := o.M1 - s.M1
		m1 = (aN*s.M1 + bN*o.M1) / cN
		m2 = s.M2 + o.M2 + delta*delta*aN*bN/cN
	}

	hasMinMax := s.Min != nil && o.Min != nil && s.Max != nil && o.Max != nil
	var lo, hi uint64
	if hasMinMax {
		lo, hi = generic.Min(*s.Min, *o.Min), generic.Max(*s.Max, *o.Max)
	}
	return newSnapshot(i, n, m1, m2, hasMinMax, lo, hi)
}

func newSnapshot(i, n uint64, m1, m2 float64, hasMinMax bool, lo, hi uint64) (s Snapshot) {
	s.Count, s.Len = i, n
	s.M1, s.M2 = m1, m2
	if n > 0 {
		s.Mean = m1
	}
	if n > 1 {
		s.Variance = m2 / float64(n-1)
		s.Stdev = math.Sqrt(s.Variance)
	}
	if hasMinMax {
		s.Min, s.Max = &lo, &hi
	}
	return
}

// GqlSnapshotType is the GraphQL type for Snapshot.
var GqlSnapshotType = graphql.NewObject(graphql.ObjectConfig{
	Name:   "RunningStatSnapshot",
	Fields: gqlserver.BindFields[Snapshot](),
})
