package ingest

import (
	"github.com/graphql-go/graphql"
	"github.com/rxqpoll/rxqpoll/app/pdump"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
	"github.com/rxqpoll/rxqpoll/core/runningstat"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
	"github.com/rxqpoll/rxqpoll/dpdk/ealthread"
	"github.com/rxqpoll/rxqpoll/dpdk/ethdev"
)

type gqlWorker struct {
	*Worker
	rt *eal.Runtime
}

// GraphQL types.
var (
	GqlWorkerCountersType = graphql.NewObject(graphql.ObjectConfig{
		Name:   "RxWorkerCounters",
		Fields: gqlserver.BindFields[WorkerCounters](),
	})

	GqlWorkerType = graphql.NewObject(graphql.ObjectConfig{
		Name: "RxWorker",
		Fields: graphql.Fields{
			"port": &graphql.Field{
				Type:        gqlserver.NonNullInt,
				Description: "Port identifier.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(gqlWorker).a.Port, nil
				},
			},
			"queue": &graphql.Field{
				Type:        gqlserver.NonNullInt,
				Description: "RX queue identifier.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(gqlWorker).a.Queue, nil
				},
			},
			"thread": &graphql.Field{
				Type:        graphql.NewNonNull(ealthread.GqlWorkerType),
				Description: "Worker thread.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					w := p.Source.(gqlWorker)
					return ealthread.DescribeThread(w.rt, w.Worker), nil
				},
			},
			"counters": &graphql.Field{
				Type:        graphql.NewNonNull(GqlWorkerCountersType),
				Description: "Worker counters.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(gqlWorker).Counters(), nil
				},
			},
			"burstSize": &graphql.Field{
				Type:        graphql.NewNonNull(runningstat.GqlSnapshotType),
				Description: "Statistics of non-empty burst sizes.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(gqlWorker).BurstSize(), nil
				},
			},
		},
	})
)

// GqlFields returns top-level query fields that describe this pipeline.
// They should be passed to gqlserver.AddQuery before the server is built.
func (ing *Ingest) GqlFields() []*graphql.Field {
	return []*graphql.Field{
		{
			Name:        "rxWorkers",
			Description: "RX workers.",
			Type:        gqlserver.NewListNonNullBoth(GqlWorkerType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				list := []gqlWorker{}
				for _, w := range ing.workers {
					list = append(list, gqlWorker{Worker: w, rt: ing.env.Runtime})
				}
				return list, nil
			},
		},
		{
			Name:        "ethDevs",
			Description: "Ethernet ports.",
			Type:        gqlserver.NewListNonNullBoth(ethdev.GqlEthDevType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return ing.env.Ports, nil
			},
		},
		{
			Name:        "pdump",
			Description: "Packet dump counters, null if disabled.",
			Type:        pdump.GqlCountersType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if ing.pdump == nil {
					return nil, nil
				}
				return ing.pdump.Counters(), nil
			},
		},
	}
}
