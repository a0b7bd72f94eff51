package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i2y/jira-mcp/internal/domain"
)

// ServeToolsUseCase exposes the registered Jira tool catalog to inbound adapters.
type ServeToolsUseCase struct {
	repository ToolRepository
	logger     *slog.Logger
}

// NewServeToolsUseCase creates a new ServeToolsUseCase.
func NewServeToolsUseCase(repository ToolRepository, logger *slog.Logger) *ServeToolsUseCase {
	return &ServeToolsUseCase{
		repository: repository,
		logger:     logger.With("usecase", "ServeTools"),
	}
}

// Execute returns the catalog in registration order.
func (uc *ServeToolsUseCase) Execute(ctx context.Context) ([]domain.Tool, error) {
	tools, err := uc.repository.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list tools from repository", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list tools from repository: %w", err)
	}
	uc.logger.Debug("Listed tools", slog.Int("count", len(tools)))
	return tools, nil
}

// Describe returns the descriptor of a single tool. Unknown names yield
// ErrToolNotFound.
func (uc *ServeToolsUseCase) Describe(ctx context.Context, name string) (*domain.Tool, error) {
	tool, err := uc.repository.FindToolByName(ctx, name)
	if err != nil {
		if !errors.Is(err, ErrToolNotFound) {
			uc.logger.Error("Failed to look up tool", slog.String("tool_name", name), slog.Any("error", err))
		}
		return nil, fmt.Errorf("describe tool %q: %w", name, err)
	}
	return tool, nil
}
