package jiratools

import (
	"math"
	"strconv"
	"strings"

	"github.com/i2y/jira-mcp/internal/domain"
)

const csvHeader = "Key,Summary,Type,Status,Assignee,Created,Original Estimate (hours),Fix Versions,Hotfix,Parent ID"

// renderIssuesCSV renders the header and one row per issue, newline separated
// and without a trailing newline.
func renderIssuesCSV(issues []domain.SprintIssue) string {
	lines := make([]string, 0, len(issues)+1)
	lines = append(lines, csvHeader)
	for _, issue := range issues {
		lines = append(lines, issueRow(issue))
	}
	return strings.Join(lines, "\n")
}

func issueRow(issue domain.SprintIssue) string {
	f := issue.Fields

	var typeName, status, assignee, parent string
	if f.IssueType != nil {
		typeName = f.IssueType.Name
	}
	if f.Status != nil {
		status = f.Status.Name
	}
	if f.Assignee != nil {
		assignee = f.Assignee.DisplayName
	}
	if f.Parent != nil {
		parent = f.Parent.Key
	}

	var fixVersions string
	if len(f.FixVersions) > 0 {
		names := make([]string, len(f.FixVersions))
		for i, v := range f.FixVersions {
			names[i] = v.Name
		}
		fixVersions = strings.Join(names, "; ")
	}

	return strings.Join([]string{
		escapeCSV(issue.Key),
		escapeCSV(f.Summary),
		escapeCSV(typeName),
		escapeCSV(status),
		escapeCSV(assignee),
		escapeCSV(f.Created),
		formatHours(f.TimeOriginalEstimate),
		escapeCSV(fixVersions),
		hotfixFlag(f.Labels),
		escapeCSV(parent),
	}, ",")
}

// escapeCSV quotes values containing a comma, a double quote or a newline,
// doubling inner quotes. Other values are returned unchanged.
func escapeCSV(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// formatHours converts an estimate in seconds to hours with two decimals.
// A missing or zero estimate renders empty.
func formatHours(seconds *float64) string {
	if seconds == nil || *seconds == 0 {
		return ""
	}
	hours := *seconds / 3600
	// Exact ties at the third decimal (x.125, x.375, x.625, x.875) round away
	// from zero; FormatFloat alone would round them to even.
	if eighths := hours * 8; eighths == math.Trunc(eighths) && math.Mod(eighths, 2) != 0 {
		hours = math.Copysign(math.Ceil(math.Abs(hours)*100), hours) / 100
	}
	return strconv.FormatFloat(hours, 'f', 2, 64)
}

func hotfixFlag(labels []string) string {
	for _, label := range labels {
		if strings.EqualFold(label, "hotfix") {
			return "1"
		}
	}
	return "0"
}
