// Package logginggql exposes package log levels via GraphQL.
package logginggql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/rxqpoll/rxqpoll/core/gqlserver"
	"github.com/rxqpoll/rxqpoll/core/logging"
)

// GqlLoggerType is the GraphQL type of logging.PkgLevel.
var GqlLoggerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Logger",
	Fields: graphql.Fields{
		"package": &graphql.Field{
			Description: "Package name.",
			Type:        gqlserver.NonNullString,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(logging.PkgLevel).Package(), nil
			},
		},
		"level": &graphql.Field{
			Description: "Log level letter.",
			Type:        gqlserver.NonNullString,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(logging.PkgLevel).Level()), nil
			},
		},
	},
})

func init() {
	gqlserver.AddQuery(&graphql.Field{
		Name:        "loggers",
		Description: "Log levels of every package.",
		Type:        gqlserver.NewListNonNullBoth(GqlLoggerType),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return logging.ListLevels(), nil
		},
	})

	gqlserver.AddMutation(&graphql.Field{
		Name:        "setLogLevel",
		Description: "Change log level of a package.",
		Args: graphql.FieldConfigArgument{
			"package": &graphql.ArgumentConfig{Type: gqlserver.NonNullString},
			"level":   &graphql.ArgumentConfig{Type: gqlserver.NonNullString},
		},
		Type: graphql.NewNonNull(GqlLoggerType),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			pkg := p.Args["package"].(string)
			pl := logging.FindLevel(pkg)
			if pl == nil {
				return nil, fmt.Errorf("package %s has no logger", pkg)
			}
			pl.SetLevel(p.Args["level"].(string))
			return *pl, nil
		},
	})
}
