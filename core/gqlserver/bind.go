package gqlserver

import (
	"reflect"
	"strings"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

func makeFieldIndexResolver(index []int) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		r, e := reflect.Indirect(reflect.ValueOf(p.Source)).FieldByIndexErr(index)
		if e != nil || (r.Kind() == reflect.Pointer && r.IsNil()) {
			return nil, nil
		}
		return r.Interface(), nil
	}
}

func resolveType(typ reflect.Type) graphql.Type {
	switch typ.Kind() {
	case reflect.Bool:
		return NonNullBoolean
	case reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return NonNullInt
	case reflect.Uint, reflect.Uint64:
		return NonNullUint64
	case reflect.Float32, reflect.Float64:
		return graphql.NewNonNull(graphql.Float)
	case reflect.String:
		return NonNullString
	case reflect.Slice, reflect.Array:
		return graphql.NewList(resolveType(typ.Elem()))
	case reflect.Pointer:
		if nn, ok := resolveType(typ.Elem()).(*graphql.NonNull); ok {
			return nn.OfType
		}
	}

	logger.Panic("cannot resolve GraphQL type", zap.Stringer("type", typ))
	return nil
}

// BindFields creates graphql.Fields from the json-tagged scalar fields of a struct.
// Pointer fields are nullable.
// Field resolvers accept either T or *T as source object.
// A `gqldesc` tag sets the field description.
func BindFields[T any]() graphql.Fields {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		logger.Panic("BindFields requires a struct", zap.Stringer("type", typ))
	}

	fields := graphql.Fields{}
	for _, field := range reflect.VisibleFields(typ) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		jsonTag, ok := field.Tag.Lookup("json")
		if !ok || jsonTag == "-" {
			continue
		}
		name, _, _ := strings.Cut(jsonTag, ",")

		fields[name] = &graphql.Field{
			Description: field.Tag.Get("gqldesc"),
			Type:        resolveType(field.Type),
			Resolve:     makeFieldIndexResolver(field.Index),
		}
	}
	return fields
}
