package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	instructionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Instruction",
		Fields: graphql.Fields{
			"text":            &graphql.Field{Type: graphql.String},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"maneuver":        &graphql.Field{Type: graphql.String},
		},
	})

	stateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NavigationState",
		Fields: graphql.Fields{
			"session_id":                &graphql.Field{Type: graphql.String},
			"position":                  &graphql.Field{Type: geoPointType},
			"heading_degrees":           &graphql.Field{Type: graphql.Float},
			"remaining_distance_meters": &graphql.Field{Type: graphql.Float},
			"remaining_time_seconds":    &graphql.Field{Type: graphql.Float},
			"progress_percent":          &graphql.Field{Type: graphql.Float},
			"instruction":               &graphql.Field{Type: instructionType},
			"eta":                       &graphql.Field{Type: graphql.DateTime},
			"phase":                     &graphql.Field{Type: graphql.String},
			"off_route":                 &graphql.Field{Type: graphql.Boolean},
			"error":                     &graphql.Field{Type: graphql.String},
			"updated_at":                &graphql.Field{Type: graphql.DateTime},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":                    &graphql.Field{Type: graphql.String},
			"origin":                &graphql.Field{Type: geoPointType},
			"destination":           &graphql.Field{Type: geoPointType},
			"travel_mode":           &graphql.Field{Type: graphql.String},
			"phase":                 &graphql.Field{Type: graphql.String},
			"route_distance_meters": &graphql.Field{Type: graphql.Float},
			"started_at":            &graphql.Field{Type: graphql.DateTime},
			"ended_at":              &graphql.Field{Type: graphql.DateTime},
		},
	})

	tracePointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TracePoint",
		Fields: graphql.Fields{
			"session_id":       &graphql.Field{Type: graphql.String},
			"time":             &graphql.Field{Type: graphql.DateTime},
			"location":         &graphql.Field{Type: geoPointType},
			"heading_degrees":  &graphql.Field{Type: graphql.Float},
			"progress_percent": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get a navigation session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.GetSession(p.Context, p.Args["id"].(string))
				},
			},
			"sessions": &graphql.Field{
				Type:        graphql.NewList(sessionType),
				Description: "List navigation sessions, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sessions, _, err := deps.Sessions.ListSessions(p.Context,
						p.Args["limit"].(int), p.Args["offset"].(int))
					return sessions, err
				},
			},
			"navigationState": &graphql.Field{
				Type:        stateType,
				Description: "Current navigation state of a session",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.GetState(p.Context, p.Args["session_id"].(string))
				},
			},
			"trace": &graphql.Field{
				Type:        graphql.NewList(tracePointType),
				Description: "Breadcrumb trail of a session",
				Args: graphql.FieldConfigArgument{
					"session_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1000},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sessions.GetTrace(p.Context,
						p.Args["session_id"].(string), p.Args["limit"].(int))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
