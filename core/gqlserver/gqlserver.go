// Package gqlserver provides a GraphQL server.
// Packages register their fields during initialization; the schema is built once when the server starts.
package gqlserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/rxqpoll/rxqpoll/core/logging"
	"go.uber.org/zap"
)

var logger = logging.New("gqlserver")

// Schema is the singleton of graphql.SchemaConfig.
var Schema = graphql.SchemaConfig{
	Query: graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: graphql.Fields{},
	}),
	Mutation: graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: graphql.Fields{},
	}),
}

// AddQuery adds a top-level query field.
func AddQuery(f *graphql.Field) {
	Schema.Query.AddFieldConfig(f.Name, f)
}

// AddMutation adds a top-level mutation field.
func AddMutation(f *graphql.Field) {
	Schema.Mutation.AddFieldConfig(f.Name, f)
}

// Build constructs the executable schema from registered fields.
func Build() (*graphql.Schema, error) {
	sch, e := graphql.NewSchema(Schema)
	if e != nil {
		return nil, e
	}
	return &sch, nil
}

// Handler creates an HTTP handler serving GraphQL queries and the playground.
func Handler(sch *graphql.Schema) http.Handler {
	h := handler.New(&handler.Config{
		Schema:     sch,
		Pretty:     true,
		GraphiQL:   false,
		Playground: true,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Add("Content-Type", "text/plain")
		w.Write([]byte("User-Agent: *\nDisallow: /\n"))
	})
	mux.Handle("/", h)
	return mux
}

// Server is a running GraphQL HTTP server.
type Server struct {
	http *http.Server
}

// Mount adds an extra handler, such as a metrics exporter, next to the GraphQL endpoint.
// It must be called before the server is started.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.http.Handler.(*http.ServeMux).Handle(pattern, h)
}

// Start starts serving in the background.
func (s *Server) Start() {
	logger.Info("GraphQL HTTP server starting", zap.String("addr", s.http.Addr))
	go func() {
		if e := s.http.ListenAndServe(); e != nil && !errors.Is(e, http.ErrServerClosed) {
			logger.Error("GraphQL HTTP server error", zap.Error(e))
		}
	}()
}

// Close stops the server.
func (s *Server) Close(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// New creates a server listening on addr.
func New(addr string) (*Server, error) {
	sch, e := Build()
	if e != nil {
		return nil, e
	}

	mux := http.NewServeMux()
	mux.Handle("/", Handler(sch))
	return &Server{
		http: &http.Server{Addr: addr, Handler: mux},
	}, nil
}
