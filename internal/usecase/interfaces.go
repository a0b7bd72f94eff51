package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/i2y/jira-mcp/internal/domain"
	// Import mcp types needed for the adapter interface
	"github.com/mark3labs/mcp-go/mcp"
	// Import server type for the handler function
	mcpGoServer "github.com/mark3labs/mcp-go/server"
)

// Standard errors returned by use cases and adapters.
var (
	ErrToolNotFound = errors.New("tool not found")
	ErrNoArguments  = errors.New("no arguments provided")
)

// --- Tool Definition Related ---

// ToolBinding is the executable half of a tool: it validates raw arguments
// against the tool's declared input shape and runs the tool's request/response logic.
// Handle returns either a value or an error, never both.
type ToolBinding struct {
	// Validate checks raw arguments against the declared input shape.
	Validate func(args map[string]any) error
	// Handle performs the single upstream call for already validated arguments.
	Handle func(ctx context.Context, args map[string]any) (any, error)
}

// ToolGenerator defines the interface for producing Tools and their ToolBindings.
// The slices correspond by index and their order is the catalog order.
type ToolGenerator interface {
	Generate() ([]domain.Tool, []ToolBinding, error)
}

// ToolRepository defines the contract for storing and retrieving Tools
// and their bindings.
type ToolRepository interface {
	// Save stores a list of tools and their associated bindings.
	// Tools and bindings correspond by index.
	Save(ctx context.Context, tools []domain.Tool, bindings []ToolBinding) error

	// List retrieves all currently stored tools in catalog order.
	List(ctx context.Context) ([]domain.Tool, error)

	// FindToolByName retrieves a specific tool definition by its unique name.
	FindToolByName(ctx context.Context, name string) (*domain.Tool, error)

	// FindBindingByName retrieves the binding for a specific tool by name.
	FindBindingByName(ctx context.Context, name string) (*ToolBinding, error)
}

// --- Upstream (Jira) Related ---

// JiraFetcher performs a single HTTP call against a fully formed Jira URL and
// returns the raw JSON body of a successful (2xx) response.
type JiraFetcher interface {
	GetJSON(ctx context.Context, url string) (json.RawMessage, error)
	PostJSON(ctx context.Context, url string, body any) (json.RawMessage, error)
}

// --- MCP Server Abstraction ---

// MCPServerAdapter defines the interface required by the RegisterToolsUseCase
// to interact with the underlying MCP server (like mcp-go).
type MCPServerAdapter interface {
	// AddTool registers a tool and its handler with the server.
	AddTool(tool mcp.Tool, handlerFunc mcpGoServer.ToolHandlerFunc)
}
