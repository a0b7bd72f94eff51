package domain

// SprintIssuesPage is the subset of the agile "issues for sprint" response
// consumed by the CSV projection.
type SprintIssuesPage struct {
	Issues []SprintIssue `json:"issues"`
}

// SprintIssue is a single issue restricted to the fields requested by the
// CSV projection. Pointer fields are nullable upstream.
type SprintIssue struct {
	Key    string            `json:"key"`
	Fields SprintIssueFields `json:"fields"`
}

// SprintIssueFields mirrors the "fields" group of a Jira issue.
type SprintIssueFields struct {
	Summary              string       `json:"summary"`
	Status               *NamedRef    `json:"status"`
	Assignee             *UserRef     `json:"assignee"`
	Created              string       `json:"created"`
	TimeOriginalEstimate *float64     `json:"timeoriginalestimate"` // seconds
	FixVersions          []NamedRef   `json:"fixVersions"`
	IssueType            *NamedRef    `json:"issuetype"`
	Labels               []string     `json:"labels"`
	Parent               *IssueKeyRef `json:"parent"`
}

// NamedRef is any Jira object referenced by name (status, issue type, version).
type NamedRef struct {
	Name string `json:"name"`
}

// UserRef identifies a Jira user as rendered to humans.
type UserRef struct {
	DisplayName string `json:"displayName"`
}

// IssueKeyRef points at another issue by key.
type IssueKeyRef struct {
	Key string `json:"key"`
}
