package jiratools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

type listSprintsInput struct {
	pagination
	BoardID string `json:"boardId"`
	State   string `json:"state"`
}

func listSprintsSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("boardId", describe(openapi3.NewStringSchema().WithMinLength(1), "The ID of the board")).
		WithProperty("state", describe(openapi3.NewStringSchema().WithEnum("active", "closed", "future"), "Filter sprints by state (active, closed, or future)")).
		WithRequired([]string{"boardId"})
	return withPagination(schema, "The starting index of the returned sprints")
}

// listSprintsFromBoard returns the board's sprints as-is.
func (g *ToolGenerator) listSprintsFromBoard(ctx context.Context, args map[string]any) (any, error) {
	input, err := bindInput[listSprintsInput](args)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	input.apply(query)
	setString(query, "state", input.State)

	body, err := g.fetcher.GetJSON(ctx, g.endpoint(query, boardPath(input.BoardID, "sprint")...))
	if err != nil {
		return nil, fmt.Errorf("list sprints of board %s: %w", input.BoardID, err)
	}
	return body, nil
}
