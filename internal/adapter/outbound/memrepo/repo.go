package memrepo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/i2y/jira-mcp/internal/domain"
	"github.com/i2y/jira-mcp/internal/usecase"
)

// InMemoryToolRepository provides an in-memory implementation of the ToolRepository.
// It remembers insertion order so the catalog is listed the way it was declared.
type InMemoryToolRepository struct {
	mu       sync.RWMutex
	order    []string                       // Tool names in catalog order
	tools    map[string]domain.Tool         // Map tool name to Tool definition
	bindings map[string]usecase.ToolBinding // Map tool name to its binding
	logger   *slog.Logger
}

// NewInMemoryToolRepository creates a new in-memory repository.
func NewInMemoryToolRepository(logger *slog.Logger) *InMemoryToolRepository {
	return &InMemoryToolRepository{
		tools:    make(map[string]domain.Tool),
		bindings: make(map[string]usecase.ToolBinding),
		logger:   logger.With("component", "mem_repo"),
	}
}

// Save stores the given tools and their corresponding bindings.
// Tool names must be non-empty and unique across the whole repository;
// a batch violating that is rejected without storing anything.
func (r *InMemoryToolRepository) Save(ctx context.Context, tools []domain.Tool, bindings []usecase.ToolBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(tools) != len(bindings) {
		msg := fmt.Sprintf("mismatch between number of tools (%d) and bindings (%d)", len(tools), len(bindings))
		r.logger.Error("Failed to save tools and bindings", slog.String("reason", msg))
		return fmt.Errorf("save failed: %s", msg)
	}

	seen := make(map[string]struct{}, len(tools))
	for i, tool := range tools {
		if tool.Name == "" {
			return fmt.Errorf("save failed: tool at index %d has an empty name", i)
		}
		if _, dup := seen[tool.Name]; dup {
			return fmt.Errorf("save failed: duplicate tool name %q", tool.Name)
		}
		if _, exists := r.tools[tool.Name]; exists {
			return fmt.Errorf("save failed: tool %q is already registered", tool.Name)
		}
		if bindings[i].Validate == nil || bindings[i].Handle == nil {
			return fmt.Errorf("save failed: tool %q has an incomplete binding", tool.Name)
		}
		seen[tool.Name] = struct{}{}
	}

	for i, tool := range tools {
		r.order = append(r.order, tool.Name)
		r.tools[tool.Name] = tool
		r.bindings[tool.Name] = bindings[i]
	}
	r.logger.Info("Saved tools and bindings", slog.Int("count", len(tools)), slog.Int("total_tools", len(r.tools)))
	return nil
}

// List returns all tools currently stored in memory, in the order they were saved.
func (r *InMemoryToolRepository) List(ctx context.Context) ([]domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]domain.Tool, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tools[name])
	}
	r.logger.Debug("Listed tools from repository", slog.Int("count", len(list)))
	return list, nil
}

// FindToolByName retrieves a tool definition by its name.
func (r *InMemoryToolRepository) FindToolByName(ctx context.Context, name string) (*domain.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		r.logger.Warn("Tool definition not found", slog.String("tool_name", name))
		return nil, usecase.ErrToolNotFound
	}
	return &tool, nil
}

// FindBindingByName retrieves the binding for a tool by name.
func (r *InMemoryToolRepository) FindBindingByName(ctx context.Context, name string) (*usecase.ToolBinding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, ok := r.bindings[name]
	if !ok {
		r.logger.Warn("Tool binding not found", slog.String("tool_name", name))
		return nil, usecase.ErrToolNotFound
	}
	return &binding, nil
}
