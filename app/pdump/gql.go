package pdump

import (
	"github.com/graphql-go/graphql"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
)

// GqlCountersType is the GraphQL type of Counters.
var GqlCountersType = graphql.NewObject(graphql.ObjectConfig{
	Name:   "PdumpCounters",
	Fields: gqlserver.BindFields[Counters](),
})
