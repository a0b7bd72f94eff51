package mcphttp_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/jira-mcp/internal/adapter/inbound/mcphttp"
	"github.com/i2y/jira-mcp/internal/adapter/outbound/memrepo"
	"github.com/i2y/jira-mcp/internal/domain"
	"github.com/i2y/jira-mcp/internal/usecase"
	"github.com/i2y/jira-mcp/pkg/shared/mcpjsonrpc"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	repo := memrepo.NewInMemoryToolRepository(logger)
	err := repo.Save(context.Background(),
		[]domain.Tool{
			{Name: "list_boards", Description: "List boards", ReadOnly: true},
			{Name: "create_issue", Description: "Create an issue"},
		},
		[]usecase.ToolBinding{
			{
				Validate: func(args map[string]any) error {
					if v, ok := args["maxResults"]; ok {
						if _, isNumber := v.(float64); !isNumber {
							return errors.New("maxResults must be a number")
						}
					}
					return nil
				},
				Handle: func(context.Context, map[string]any) (any, error) {
					return json.RawMessage(`{"values":[]}`), nil
				},
			},
			{
				Validate: func(map[string]any) error { return nil },
				Handle: func(context.Context, map[string]any) (any, error) {
					return nil, errors.New("HTTP 403: forbidden for user jane")
				},
			},
		})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mcphttp.NewHandlers(
		usecase.NewInvokeToolUseCase(repo, logger),
		usecase.NewServeToolsUseCase(repo, logger),
		logger,
	).RegisterAdminRoutes(mux)
	return mux
}

func TestHandlers_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandlers_ListTools(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/tools", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Tools []domain.Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tools, 2)
	assert.Equal(t, "list_boards", body.Tools[0].Name)
	assert.Equal(t, "create_issue", body.Tools[1].Name)
}

func TestHandlers_Invoke(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantResult *mcpjsonrpc.InvokeToolResult
		wantCode   int
	}{
		{
			name:       "Success",
			body:       `{"jsonrpc":"2.0","id":1,"method":"invokeTool","params":{"name":"list_boards","arguments":{"maxResults":5}}}`,
			wantResult: &mcpjsonrpc.InvokeToolResult{Text: "{\n  \"values\": []\n}"},
		},
		{
			name:       "Invalid input",
			body:       `{"jsonrpc":"2.0","id":2,"method":"invokeTool","params":{"name":"list_boards","arguments":{"maxResults":"5"}}}`,
			wantResult: &mcpjsonrpc.InvokeToolResult{Text: "Invalid input", IsError: true},
		},
		{
			name:       "Unknown tool",
			body:       `{"jsonrpc":"2.0","id":3,"method":"invokeTool","params":{"name":"drop_project","arguments":{}}}`,
			wantResult: &mcpjsonrpc.InvokeToolResult{Text: "An error occurred", IsError: true},
		},
		{
			name:       "Missing arguments",
			body:       `{"jsonrpc":"2.0","id":4,"method":"invokeTool","params":{"name":"list_boards"}}`,
			wantResult: &mcpjsonrpc.InvokeToolResult{Text: "An error occurred", IsError: true},
		},
		{
			name:       "Handler failure is opaque",
			body:       `{"jsonrpc":"2.0","id":5,"method":"invokeTool","params":{"name":"create_issue","arguments":{}}}`,
			wantResult: &mcpjsonrpc.InvokeToolResult{Text: "An error occurred", IsError: true},
		},
		{
			name:     "Malformed JSON",
			body:     `{"jsonrpc":`,
			wantCode: mcpjsonrpc.CodeParseError,
		},
		{
			name:     "Wrong version",
			body:     `{"jsonrpc":"1.0","id":6,"method":"invokeTool","params":{"name":"list_boards","arguments":{}}}`,
			wantCode: mcpjsonrpc.CodeInvalidRequest,
		},
		{
			name:     "Unknown method",
			body:     `{"jsonrpc":"2.0","id":7,"method":"tools/delete","params":{}}`,
			wantCode: mcpjsonrpc.CodeMethodNotFound,
		},
		{
			name:     "Missing tool name",
			body:     `{"jsonrpc":"2.0","id":8,"method":"invokeTool","params":{"arguments":{}}}`,
			wantCode: mcpjsonrpc.CodeInvalidParams,
		},
		{
			name:     "Missing params",
			body:     `{"jsonrpc":"2.0","id":9,"method":"invokeTool"}`,
			wantCode: mcpjsonrpc.CodeInvalidParams,
		},
	}

	mux := newTestMux(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/invoke", strings.NewReader(tt.body))
			mux.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal("application/json", rec.Header().Get("Content-Type"))
			assert.NotContains(rec.Body.String(), "jane")

			var resp struct {
				Version string                       `json:"jsonrpc"`
				Result  *mcpjsonrpc.InvokeToolResult `json:"result"`
				Error   *mcpjsonrpc.Error            `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal("2.0", resp.Version)

			if tt.wantResult != nil {
				assert.Nil(resp.Error)
				assert.Equal(tt.wantResult, resp.Result)
				return
			}
			assert.Nil(resp.Result)
			require.NotNil(t, resp.Error)
			assert.Equal(tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandlers_Invoke_WrongMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/invoke", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlers_DescribeTool(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/tools/create_issue", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var tool domain.Tool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tool))
	assert.Equal(t, "create_issue", tool.Name)
	assert.False(t, tool.ReadOnly)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/tools/drop_project", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
