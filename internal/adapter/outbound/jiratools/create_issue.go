package jiratools

import (
	"context"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"
)

type createIssueInput struct {
	ProjectKey  string   `json:"projectKey"`
	Summary     string   `json:"summary"`
	IssueType   string   `json:"issueType"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
	Priority    string   `json:"priority"`
	ParentKey   string   `json:"parentKey"`
	Assignee    string   `json:"assignee"`
}

type keyRef struct {
	Key string `json:"key"`
}

type nameRef struct {
	Name string `json:"name"`
}

type createIssueFields struct {
	Project     keyRef   `json:"project"`
	Summary     string   `json:"summary"`
	IssueType   nameRef  `json:"issuetype"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Priority    *nameRef `json:"priority,omitempty"`
	Parent      *keyRef  `json:"parent,omitempty"`
	Assignee    *nameRef `json:"assignee,omitempty"`
}

type createIssueRequest struct {
	Fields createIssueFields `json:"fields"`
}

func createIssueSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("projectKey", describe(openapi3.NewStringSchema().WithMinLength(1), "The key of the project to create the issue in")).
		WithProperty("summary", describe(openapi3.NewStringSchema().WithMinLength(1), "The summary of the issue")).
		WithProperty("issueType", describe(openapi3.NewStringSchema().WithMinLength(1), "The name of the issue type, e.g. Task, Bug, Story")).
		WithProperty("description", describe(openapi3.NewStringSchema(), "The description of the issue")).
		WithProperty("labels", describe(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()), "Labels to add to the issue")).
		WithProperty("priority", describe(openapi3.NewStringSchema(), "The name of the priority, e.g. High")).
		WithProperty("parentKey", describe(openapi3.NewStringSchema(), "The key of the parent issue, for subtasks")).
		WithProperty("assignee", describe(openapi3.NewStringSchema(), "The username of the assignee")).
		WithRequired([]string{"projectKey", "summary", "issueType"})
}

func (in createIssueInput) request() createIssueRequest {
	fields := createIssueFields{
		Project:     keyRef{Key: in.ProjectKey},
		Summary:     in.Summary,
		IssueType:   nameRef{Name: in.IssueType},
		Description: in.Description,
		Labels:      in.Labels,
	}
	if in.Priority != "" {
		fields.Priority = &nameRef{Name: in.Priority}
	}
	if in.ParentKey != "" {
		fields.Parent = &keyRef{Key: in.ParentKey}
	}
	if in.Assignee != "" {
		fields.Assignee = &nameRef{Name: in.Assignee}
	}
	return createIssueRequest{Fields: fields}
}

// createIssue posts a new issue and returns Jira's reply (id, key, self).
func (g *ToolGenerator) createIssue(ctx context.Context, args map[string]any) (any, error) {
	input, err := bindInput[createIssueInput](args)
	if err != nil {
		return nil, err
	}

	body, err := g.fetcher.PostJSON(ctx, g.endpoint(url.Values{}, "rest", "api", "2", "issue"), input.request())
	if err != nil {
		return nil, fmt.Errorf("create issue in project %s: %w", input.ProjectKey, err)
	}
	return body, nil
}
