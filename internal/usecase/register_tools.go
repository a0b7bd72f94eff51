package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/i2y/jira-mcp/internal/domain"
)

// RegisterToolsUseCase orchestrates generating the tool catalog, storing it,
// and registering every tool with the MCP server so that calls are routed
// through the InvokeToolUseCase.
type RegisterToolsUseCase struct {
	generator  ToolGenerator
	repository ToolRepository
	server     MCPServerAdapter
	invoker    *InvokeToolUseCase
	logger     *slog.Logger
}

// NewRegisterToolsUseCase creates a new RegisterToolsUseCase.
func NewRegisterToolsUseCase(
	generator ToolGenerator,
	repository ToolRepository,
	server MCPServerAdapter,
	invoker *InvokeToolUseCase,
	logger *slog.Logger,
) *RegisterToolsUseCase {
	return &RegisterToolsUseCase{
		generator:  generator,
		repository: repository,
		server:     server,
		invoker:    invoker,
		logger:     logger.With("usecase", "RegisterTools"),
	}
}

// Execute generates tools and bindings, saves them to the repository and adds
// each tool to the MCP server.
func (uc *RegisterToolsUseCase) Execute(ctx context.Context) error {
	log := uc.logger
	log.Info("Starting tool registration")

	// 1. Generate Tools and Bindings
	tools, bindings, err := uc.generator.Generate()
	if err != nil {
		log.Error("Failed to generate tools", slog.Any("error", err))
		return fmt.Errorf("failed to generate tools: %w", err)
	}

	// 2. Save Tools and Bindings
	if err := uc.repository.Save(ctx, tools, bindings); err != nil {
		log.Error("Failed to save generated tools", slog.Any("error", err))
		return fmt.Errorf("failed to save generated tools: %w", err)
	}

	// 3. Register with the MCP server
	for _, tool := range tools {
		uc.server.AddTool(toMCPTool(tool), uc.handleCall)
		log.Debug("Registered tool", slog.String("tool_name", tool.Name))
	}

	log.Info("Successfully registered tools", slog.Int("tool_count", len(tools)))
	return nil
}

// OrderTools is an mcp-go tool filter restoring catalog order, since the
// server lists tools sorted by name.
func (uc *RegisterToolsUseCase) OrderTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	catalog, err := uc.repository.List(ctx)
	if err != nil {
		uc.logger.Warn("Failed to read catalog order, keeping server order", slog.Any("error", err))
		return tools
	}

	byName := make(map[string]mcp.Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	ordered := make([]mcp.Tool, 0, len(tools))
	for _, entry := range catalog {
		if tool, ok := byName[entry.Name]; ok {
			ordered = append(ordered, tool)
			delete(byName, entry.Name)
		}
	}
	// Tools the catalog doesn't know about keep their relative server order.
	for _, tool := range tools {
		if _, ok := byName[tool.Name]; ok {
			ordered = append(ordered, tool)
		}
	}
	return ordered
}

// CallUnregistered answers a tools/call whose name has no registered handler,
// which the server would otherwise reject with a protocol error. It reports
// false when the name is registered and the server should dispatch the call.
func (uc *RegisterToolsUseCase) CallUnregistered(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, bool) {
	if _, err := uc.repository.FindToolByName(ctx, req.Params.Name); err == nil {
		return nil, false
	}
	result, _ := uc.handleCall(ctx, req)
	return result, true
}

func (uc *RegisterToolsUseCase) handleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Arguments that are absent, null or not an object all arrive here as nil.
	args, _ := req.Params.Arguments.(map[string]any)
	return toCallToolResult(uc.invoker.Execute(ctx, req.Params.Name, args)), nil
}

func toCallToolResult(envelope domain.Envelope) *mcp.CallToolResult {
	if envelope.IsError {
		return mcp.NewToolResultError(envelope.Text)
	}
	return mcp.NewToolResultText(envelope.Text)
}

func toMCPTool(tool domain.Tool) mcp.Tool {
	properties := make(map[string]any, len(tool.InputSchema.Properties))
	for name, prop := range tool.InputSchema.Properties {
		properties[name] = prop
	}

	return mcp.Tool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   tool.InputSchema.Required,
		},
		Annotations: mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(tool.ReadOnly),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(tool.ReadOnly),
			OpenWorldHint:   mcp.ToBoolPtr(true),
		},
	}
}
