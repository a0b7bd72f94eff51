package jiratools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/i2y/jira-mcp/internal/adapter/outbound/openapi"
	"github.com/i2y/jira-mcp/internal/domain"
)

// csvFields limits the upstream response to what the projection reads.
const csvFields = "summary,status,assignee,created,timeoriginalestimate,fixVersions,issuetype,labels,parent"

func listIssuesCSVSchema() *openapi3.Schema {
	return sprintIssuesSchema()
}

// sprintIssuesResponseSchema is the minimal shape the CSV projection relies on.
func sprintIssuesResponseSchema() *openapi3.Schema {
	named := func() *openapi3.Schema {
		return openapi3.NewObjectSchema().
			WithProperty("name", openapi3.NewStringSchema()).
			WithRequired([]string{"name"})
	}

	fields := openapi3.NewObjectSchema().
		WithProperty("summary", openapi3.NewStringSchema()).
		WithProperty("status", named().WithNullable()).
		WithProperty("assignee", openapi3.NewObjectSchema().
			WithProperty("displayName", openapi3.NewStringSchema()).
			WithRequired([]string{"displayName"}).
			WithNullable()).
		WithProperty("created", openapi3.NewStringSchema()).
		WithProperty("timeoriginalestimate", openapi3.NewFloat64Schema().WithNullable()).
		WithProperty("fixVersions", openapi3.NewArraySchema().WithItems(named())).
		WithProperty("issuetype", named().WithNullable()).
		WithProperty("labels", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())).
		WithProperty("parent", openapi3.NewObjectSchema().
			WithProperty("key", openapi3.NewStringSchema()).
			WithRequired([]string{"key"}).
			WithNullable()).
		WithRequired([]string{"created"})

	issue := openapi3.NewObjectSchema().
		WithProperty("key", openapi3.NewStringSchema()).
		WithProperty("fields", fields).
		WithRequired([]string{"key", "fields"})

	return openapi3.NewObjectSchema().
		WithProperty("issues", openapi3.NewArraySchema().WithItems(issue)).
		WithRequired([]string{"issues"})
}

// listIssuesFromSprintCSV fetches a trimmed issue list and renders it as CSV text.
func (g *ToolGenerator) listIssuesFromSprintCSV(ctx context.Context, args map[string]any) (any, error) {
	input, err := bindInput[listIssuesInput](args)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("fields", csvFields)
	input.apply(query)

	body, err := g.fetcher.GetJSON(ctx, g.endpoint(query, input.path()...))
	if err != nil {
		return nil, fmt.Errorf("list issues of sprint %s: %w", input.SprintID, err)
	}

	page, err := decodeSprintIssues(body)
	if err != nil {
		g.logger.Warn("Unexpected sprint issues response", slog.String("sprint_id", input.SprintID), slog.Any("error", err))
		return nil, ErrInvalidResponse
	}
	return renderIssuesCSV(page.Issues), nil
}

// decodeSprintIssues validates body against the response schema before
// binding it, so missing or mistyped fields are rejected rather than zeroed.
func decodeSprintIssues(body json.RawMessage) (*domain.SprintIssuesPage, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := openapi.Validate(sprintIssuesResponseSchema(), raw); err != nil {
		return nil, err
	}

	var page domain.SprintIssuesPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to bind response: %w", err)
	}
	return &page, nil
}
