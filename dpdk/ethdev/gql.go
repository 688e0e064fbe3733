package ethdev

import (
	"github.com/graphql-go/graphql"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
)

// GraphQL types.
var (
	GqlStatsType = graphql.NewObject(graphql.ObjectConfig{
		Name:   "EthStats",
		Fields: gqlserver.BindFields[Stats](),
	})

	GqlEthDevType = graphql.NewObject(graphql.ObjectConfig{
		Name: "EthDev",
		Fields: graphql.Fields{
			"nid": &graphql.Field{
				Type:        gqlserver.NonNullInt,
				Description: "Port identifier.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(EthDev).ID(), nil
				},
			},
			"name": &graphql.Field{
				Type:        gqlserver.NonNullString,
				Description: "Port name.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(EthDev).Name(), nil
				},
			},
			"macAddr": &graphql.Field{
				Type:        gqlserver.NonNullString,
				Description: "MAC address.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(EthDev).MacAddr().String(), nil
				},
			},
			"driverName": &graphql.Field{
				Type:        gqlserver.NonNullString,
				Description: "Driver name.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(EthDev).DevInfo().DriverName, nil
				},
			},
			"numaSocket": &graphql.Field{
				Type:        graphql.Int,
				Description: "NUMA socket.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if socket := p.Source.(EthDev).NumaSocket(); !socket.IsAny() {
						return socket.ID(), nil
					}
					return nil, nil
				},
			},
			"isStarted": &graphql.Field{
				Type:        gqlserver.NonNullBoolean,
				Description: "Whether the port is started.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(EthDev).IsStarted(), nil
				},
			},
			"nRxQueues": &graphql.Field{
				Type:        gqlserver.NonNullInt,
				Description: "Number of RX queues.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return len(p.Source.(EthDev).RxQueues()), nil
				},
			},
			"stats": &graphql.Field{
				Type:        graphql.NewNonNull(GqlStatsType),
				Description: "Port statistics.",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(EthDev).Stats(), nil
				},
			},
		},
	})
)
