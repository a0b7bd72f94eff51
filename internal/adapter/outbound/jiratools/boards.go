package jiratools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

type listBoardsInput struct {
	pagination
	Type           string `json:"type"`
	Name           string `json:"name"`
	ProjectKeyOrID string `json:"projectKeyOrId"`
}

func listBoardsSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("type", describe(openapi3.NewStringSchema().WithEnum("scrum", "kanban", "simple"), "Filter boards by type (scrum, kanban, or simple)")).
		WithProperty("name", describe(openapi3.NewStringSchema(), "Filter boards whose name contains this text")).
		WithProperty("projectKeyOrId", describe(openapi3.NewStringSchema(), "Filter boards relevant to a project, by key or ID"))
	return withPagination(schema, "The starting index of the returned boards")
}

// listBoards returns the paginated board list as-is.
func (g *ToolGenerator) listBoards(ctx context.Context, args map[string]any) (any, error) {
	input, err := bindInput[listBoardsInput](args)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	input.apply(query)
	setString(query, "type", input.Type)
	setString(query, "name", input.Name)
	setString(query, "projectKeyOrId", input.ProjectKeyOrID)

	body, err := g.fetcher.GetJSON(ctx, g.endpoint(query, boardPath()...))
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return body, nil
}
