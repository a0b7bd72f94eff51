package jiratools

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const maxResultsDescription = "The maximum number of results to return, (default: 50, max: 100)"

// pagination is embedded by every list input.
type pagination struct {
	StartAt    int `json:"startAt"`
	MaxResults int `json:"maxResults"`
}

// apply copies the non-zero controls into query, startAt first.
func (p pagination) apply(query url.Values) {
	setInt(query, "startAt", p.StartAt)
	setInt(query, "maxResults", p.MaxResults)
}

// withPagination adds optional startAt and maxResults properties to schema.
// Both are bounded to the int32 range Jira accepts so that any value passing
// validation also binds to pagination.
func withPagination(schema *openapi3.Schema, startAtDescription string) *openapi3.Schema {
	return schema.
		WithProperty("maxResults", describe(paginationSchema(), maxResultsDescription)).
		WithProperty("startAt", describe(paginationSchema(), startAtDescription))
}

func paginationSchema() *openapi3.Schema {
	return openapi3.NewIntegerSchema().WithMin(0).WithMax(math.MaxInt32)
}

// setInt attaches value only when it is non-zero.
func setInt(query url.Values, key string, value int) {
	if value != 0 {
		query.Set(key, strconv.Itoa(value))
	}
}

// setString attaches value only when it is non-empty.
func setString(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}

// boardPath prefixes segments with the agile board resource.
func boardPath(segments ...string) []string {
	return append([]string{"rest", "agile", "1.0", "board"}, segments...)
}

// endpoint appends path segments to the base URL. Segments are escaped
// individually and never cleaned, so an identifier like ".." or "a/b" stays a
// single path element.
func (g *ToolGenerator) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}

	u := *g.baseURL
	u.Path = strings.TrimSuffix(g.baseURL.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimSuffix(g.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.RawQuery = query.Encode()
	u.Fragment = ""
	return u.String()
}
