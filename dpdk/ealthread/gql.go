package ealthread

import (
	"github.com/graphql-go/graphql"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
	"github.com/rxqpoll/rxqpoll/dpdk/eal"
)

// ThreadInfo describes a thread for reporting.
type ThreadInfo struct {
	LCore      int      `json:"lcore" gqldesc:"LCore ID."`
	NumaSocket int      `json:"numaSocket" gqldesc:"NUMA socket of the lcore."`
	Role       string   `json:"role" gqldesc:"Thread role."`
	IsRunning  bool     `json:"isRunning" gqldesc:"Whether the thread is running."`
	LoadStat   LoadStat `json:"-"`
}

// DescribeThread collects ThreadInfo of a thread.
func DescribeThread(rt *eal.Runtime, th Thread) (info ThreadInfo) {
	lc := th.LCore()
	info.LCore = lc.ID()
	info.NumaSocket = rt.NumaSocketOf(lc).ID()
	info.IsRunning = th.IsRunning()
	if thr, ok := th.(ThreadWithRole); ok {
		info.Role = thr.ThreadRole()
	}
	if thl, ok := th.(ThreadWithLoadStat); ok {
		info.LoadStat = thl.ThreadLoadStat()
	}
	return info
}

// GraphQL types.
var (
	GqlLoadStatType = graphql.NewObject(graphql.ObjectConfig{
		Name:   "ThreadLoadStat",
		Fields: gqlserver.BindFields[LoadStat](),
	})

	GqlWorkerType = graphql.NewObject(graphql.ObjectConfig{
		Name:   "Worker",
		Fields: gqlserver.BindFields[ThreadInfo](),
	})
)

func init() {
	GqlWorkerType.AddFieldConfig("loadStat", &graphql.Field{
		Description: "Polling thread load statistics.",
		Type:        graphql.NewNonNull(GqlLoadStatType),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return p.Source.(ThreadInfo).LoadStat, nil
		},
	})
}
