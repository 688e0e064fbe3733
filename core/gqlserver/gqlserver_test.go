package gqlserver_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
)

type bindTestCounters struct {
	Name    string  `json:"name" gqldesc:"Counter set name."`
	Polls   uint64  `json:"polls"`
	Queue   int     `json:"queue"`
	Enabled bool    `json:"enabled"`
	Max     *uint64 `json:"max"`
	Skip    int     `json:"-"`
	NoTag   int
}

func TestBindFields(t *testing.T) {
	assert, _ := makeAR(t)

	fields := gqlserver.BindFields[bindTestCounters]()
	assert.Len(fields, 5)
	assert.Equal(gqlserver.NonNullString, fields["name"].Type)
	assert.Equal("Counter set name.", fields["name"].Description)
	assert.Equal(gqlserver.NonNullUint64, fields["polls"].Type)
	assert.Equal(gqlserver.NonNullInt, fields["queue"].Type)
	assert.Equal(gqlserver.NonNullBoolean, fields["enabled"].Type)
	assert.Equal(gqlserver.Uint64, fields["max"].Type)

	src := bindTestCounters{Name: "A", Polls: 1 << 40}
	if v, e := fields["polls"].Resolve(graphql.ResolveParams{Source: src}); assert.NoError(e) {
		assert.Equal(uint64(1<<40), v)
	}
	if v, e := fields["name"].Resolve(graphql.ResolveParams{Source: &src}); assert.NoError(e) {
		assert.Equal("A", v)
	}
	if v, e := fields["max"].Resolve(graphql.ResolveParams{Source: src}); assert.NoError(e) {
		assert.Nil(v)
	}
}

func TestQuery(t *testing.T) {
	assert, require := makeAR(t)

	gqlserver.AddQuery(&graphql.Field{
		Name: "gqlserverTestCounter",
		Type: graphql.NewObject(graphql.ObjectConfig{
			Name:   "GqlserverTestCounters",
			Fields: gqlserver.BindFields[bindTestCounters](),
		}),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return bindTestCounters{Name: "B", Polls: 7, Queue: 1}, nil
		},
	})

	sch, e := gqlserver.Build()
	require.NoError(e)

	res := graphql.Do(graphql.Params{
		Schema:        *sch,
		RequestString: `{ gqlserverTestCounter { name polls queue } }`,
	})
	require.Empty(res.Errors)
	assert.Equal(map[string]any{
		"gqlserverTestCounter": map[string]any{"name": "B", "polls": uint64(7), "queue": 1},
	}, res.Data)

	srv := httptest.NewServer(gqlserver.Handler(sch))
	defer srv.Close()
	resp, e := http.Post(srv.URL+"/", "application/json",
		strings.NewReader(`{"query":"{ gqlserverTestCounter { name } }"}`))
	require.NoError(e)
	defer resp.Body.Close()
	assert.Equal(http.StatusOK, resp.StatusCode)

	resp2, e := http.Get(srv.URL + "/robots.txt")
	require.NoError(e)
	resp2.Body.Close()
	assert.Equal(http.StatusOK, resp2.StatusCode)
}
