package jiratools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

type listIssuesInput struct {
	pagination
	BoardID  string `json:"boardId"`
	SprintID string `json:"sprintId"`
	JQL      string `json:"jql"`
}

func sprintIssuesSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("sprintId", describe(openapi3.NewStringSchema().WithMinLength(1), "The ID of the sprint")).
		WithProperty("boardId", describe(openapi3.NewStringSchema().WithMinLength(1), "The ID of the board")).
		WithRequired([]string{"sprintId", "boardId"})
	return withPagination(schema, "The starting index of the returned issues")
}

func listIssuesSchema() *openapi3.Schema {
	return sprintIssuesSchema().
		WithProperty("jql", describe(openapi3.NewStringSchema(), "A JQL query narrowing the returned issues"))
}

func (in listIssuesInput) path() []string {
	return boardPath(in.BoardID, "sprint", in.SprintID, "issue")
}

// listIssuesFromSprint returns the sprint's issues as-is.
func (g *ToolGenerator) listIssuesFromSprint(ctx context.Context, args map[string]any) (any, error) {
	input, err := bindInput[listIssuesInput](args)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	input.apply(query)
	setString(query, "jql", input.JQL)

	body, err := g.fetcher.GetJSON(ctx, g.endpoint(query, input.path()...))
	if err != nil {
		return nil, fmt.Errorf("list issues of sprint %s: %w", input.SprintID, err)
	}
	return body, nil
}
