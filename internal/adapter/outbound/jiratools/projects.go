package jiratools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

type listProjectsInput struct {
	pagination
	Query string `json:"query"`
}

func listProjectsSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("query", describe(openapi3.NewStringSchema(), "Filter projects whose key or name contains this text"))
	return withPagination(schema, "The starting index of the returned projects")
}

// listProjects returns the paginated project search result as-is.
func (g *ToolGenerator) listProjects(ctx context.Context, args map[string]any) (any, error) {
	input, err := bindInput[listProjectsInput](args)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	input.apply(query)
	setString(query, "query", input.Query)

	body, err := g.fetcher.GetJSON(ctx, g.endpoint(query, "rest", "api", "2", "project", "search"))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return body, nil
}
