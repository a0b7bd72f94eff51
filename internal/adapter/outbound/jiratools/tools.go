// Package jiratools declares the Jira tool catalog: the input shape, the
// descriptor and the handler of every tool, in catalog order.
package jiratools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/i2y/jira-mcp/internal/adapter/outbound/openapi"
	"github.com/i2y/jira-mcp/internal/domain"
	"github.com/i2y/jira-mcp/internal/usecase"
)

// Tool names, in catalog order.
const (
	ToolListProjects            = "list_projects"
	ToolListBoards              = "list_boards"
	ToolListSprintsFromBoard    = "list_sprints_from_board"
	ToolListIssuesFromSprint    = "list_issues_from_sprint"
	ToolListIssuesFromSprintCSV = "list_issues_from_sprint_csv"
	ToolCreateIssue             = "create_issue"
)

// ErrInvalidResponse is returned when a Jira response does not have the shape
// a handler needs.
var ErrInvalidResponse = errors.New("invalid response from Jira")

// definition couples a descriptor with its input shape and handler.
type definition struct {
	name        string
	description string
	readOnly    bool
	input       *openapi3.Schema
	handle      func(ctx context.Context, args map[string]any) (any, error)
}

// ToolGenerator implements usecase.ToolGenerator for the Jira tool catalog.
type ToolGenerator struct {
	baseURL   *url.URL
	fetcher   usecase.JiraFetcher
	converter *openapi.SchemaConverter
	logger    *slog.Logger
}

// NewToolGenerator creates a generator whose tools call the Jira instance at
// baseURL through fetcher.
func NewToolGenerator(baseURL string, fetcher usecase.JiraFetcher, logger *slog.Logger) (*ToolGenerator, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Jira base URL %q: %w", baseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("jira base URL %q must be absolute", baseURL)
	}
	if fetcher == nil {
		return nil, errors.New("jira fetcher is nil")
	}
	return &ToolGenerator{
		baseURL:   u,
		fetcher:   fetcher,
		converter: openapi.NewSchemaConverter(logger),
		logger:    logger.With("component", "jira_tools"),
	}, nil
}

// Generate returns the catalog's descriptors and bindings, index aligned.
func (g *ToolGenerator) Generate() ([]domain.Tool, []usecase.ToolBinding, error) {
	defs := g.definitions()
	tools := make([]domain.Tool, 0, len(defs))
	bindings := make([]usecase.ToolBinding, 0, len(defs))

	for _, def := range defs {
		inputSchema, err := g.converter.Convert(def.input)
		if err != nil {
			g.logger.Error("Failed to convert input schema", slog.String("tool_name", def.name), slog.Any("error", err))
			return nil, nil, fmt.Errorf("tool %s: failed to convert input schema: %w", def.name, err)
		}
		tools = append(tools, domain.Tool{
			Name:        def.name,
			Description: def.description,
			InputSchema: *inputSchema,
			ReadOnly:    def.readOnly,
		})
		bindings = append(bindings, usecase.ToolBinding{
			Validate: openapi.Validator(def.input),
			Handle:   def.handle,
		})
	}

	g.logger.Debug("Generated Jira tools", slog.Int("count", len(tools)))
	return tools, bindings, nil
}

func (g *ToolGenerator) definitions() []definition {
	return []definition{
		{
			name:        ToolListProjects,
			description: "List Jira projects visible to the current user. Can filter by a text query",
			readOnly:    true,
			input:       listProjectsSchema(),
			handle:      g.listProjects,
		},
		{
			name:        ToolListBoards,
			description: "List boards. Can filter by type (scrum, kanban, or simple), name, or project",
			readOnly:    true,
			input:       listBoardsSchema(),
			handle:      g.listBoards,
		},
		{
			name:        ToolListSprintsFromBoard,
			description: "List sprints from a board. Can filter by state (active, closed, or future)",
			readOnly:    true,
			input:       listSprintsSchema(),
			handle:      g.listSprintsFromBoard,
		},
		{
			name:        ToolListIssuesFromSprint,
			description: "List issues from a sprint",
			readOnly:    true,
			input:       listIssuesSchema(),
			handle:      g.listIssuesFromSprint,
		},
		{
			name:        ToolListIssuesFromSprintCSV,
			description: "List issues from a sprint in compact CSV format (key, summary, type, status, assignee, created, original estimate in hours, fix versions, hotfix, parent_id). Reduces token usage compared to full JSON response.",
			readOnly:    true,
			input:       listIssuesCSVSchema(),
			handle:      g.listIssuesFromSprintCSV,
		},
		{
			name:        ToolCreateIssue,
			description: "Create an issue in a project",
			readOnly:    false,
			input:       createIssueSchema(),
			handle:      g.createIssue,
		},
	}
}

// bindInput decodes validated arguments into a typed input.
func bindInput[T any](args map[string]any) (T, error) {
	var input T
	data, err := json.Marshal(args)
	if err != nil {
		return input, fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("failed to bind arguments: %w", err)
	}
	return input, nil
}

func describe(schema *openapi3.Schema, description string) *openapi3.Schema {
	schema.Description = description
	return schema
}
