package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/sofreh/internal/history"
	gqlschema "github.com/shashiranjanraj/sofreh/pkg/graphql"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/response"
)

var reservationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Reservation",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.Int},
		"date":       &graphql.Field{Type: graphql.String},
		"time":       &graphql.Field{Type: graphql.String},
		"guests":     &graphql.Field{Type: graphql.Int},
		"name":       &graphql.Field{Type: graphql.String},
		"phone":      &graphql.Field{Type: graphql.String},
		"message":    &graphql.Field{Type: graphql.String},
		"created_at": &graphql.Field{Type: graphql.String},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"uuid":            &graphql.Field{Type: graphql.String},
		"restaurant_name": &graphql.Field{Type: graphql.String},
		"total":           &graphql.Field{Type: graphql.Float},
		"status":          &graphql.Field{Type: graphql.String},
		"address":         &graphql.Field{Type: graphql.String},
	},
})

// graphqlHandler exposes a read-only query endpoint over the feed and the
// order history.
func (s *Server) graphqlHandler() http.HandlerFunc {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"reservations": &graphql.Field{
				Type: graphql.NewList(reservationType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items := s.feed.Items()
					if limit, ok := p.Args["limit"].(int); ok && limit < len(items) {
						items = items[:limit]
					}
					return items, nil
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					return history.List(limit)
				},
			},
		},
	})

	schema, err := gqlschema.NewSchema(query)
	if err != nil {
		logger.Error("dashboard: graphql schema", "error", err)
		return func(w http.ResponseWriter, r *http.Request) {
			response.Error(w, http.StatusInternalServerError, "graphql unavailable")
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid graphql request")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	}
}
