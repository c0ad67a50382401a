// Package graphql wraps schema construction for the dashboard's query
// endpoint. The dashboard only ever reads (reservation feed, order
// history), so the schema carries a root query and no mutations.
package graphql

import (
	"github.com/graphql-go/graphql"
)

// NewSchema builds a query-only schema from the provided root object.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}
