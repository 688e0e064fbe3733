package gqlserver

import (
	"reflect"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// Uint64 is a scalar type for counters that may exceed the 32-bit GraphQL Int.
var Uint64 = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Uint64",
	Description: "Unsigned 64-bit integer.",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case uint64:
			return v
		case *uint64:
			return *v
		}
		return nil
	},
	ParseValue: func(value any) any {
		switch v := value.(type) {
		case string:
			n, e := strconv.ParseUint(v, 10, 64)
			if e != nil {
				return nil
			}
			return n
		case int:
			return uint64(v)
		case float64:
			return uint64(v)
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) any {
		switch v := valueAST.(type) {
		case *ast.IntValue:
			n, _ := strconv.ParseUint(v.Value, 10, 64)
			return n
		case *ast.StringValue:
			n, _ := strconv.ParseUint(v.Value, 10, 64)
			return n
		}
		return nil
	},
})

// Non-null scalar types.
var (
	NonNullUint64  = graphql.NewNonNull(Uint64)
	NonNullID      = graphql.NewNonNull(graphql.ID)
	NonNullBoolean = graphql.NewNonNull(graphql.Boolean)
	NonNullInt     = graphql.NewNonNull(graphql.Int)
	NonNullString  = graphql.NewNonNull(graphql.String)
)

func toNonNull(ofType graphql.Type) graphql.Type {
	if _, ok := ofType.(*graphql.NonNull); ok {
		return ofType
	}
	return graphql.NewNonNull(ofType)
}

// NewListNonNullBoth constructs [T!]! type.
func NewListNonNullBoth(ofType graphql.Type) graphql.Type {
	return graphql.NewNonNull(graphql.NewList(toNonNull(ofType)))
}

// Optional turns zero value to nil.
func Optional(value any) any {
	if reflect.ValueOf(value).IsZero() {
		return nil
	}
	return value
}
