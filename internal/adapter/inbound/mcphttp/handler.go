package mcphttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/i2y/jira-mcp/internal/domain"
	"github.com/i2y/jira-mcp/internal/usecase"
	"github.com/i2y/jira-mcp/pkg/shared/mcpjsonrpc"
)

// maxRequestBytes bounds the size of an admin request body.
const maxRequestBytes = 1 << 20

// Handlers struct holds dependencies for the HTTP handlers.
type Handlers struct {
	invokeToolUseCase *usecase.InvokeToolUseCase
	serveToolsUseCase *usecase.ServeToolsUseCase
	logger            *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(
	invokeUC *usecase.InvokeToolUseCase,
	serveUC *usecase.ServeToolsUseCase,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		invokeToolUseCase: invokeUC,
		serveToolsUseCase: serveUC,
		logger:            logger.With("component", "mcphttp_handler"),
	}
}

// RegisterAdminRoutes sets up the HTTP routes for admin endpoints.
func (h *Handlers) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /admin/tools", h.handleListTools)
	mux.HandleFunc("GET /admin/tools/{name}", h.handleDescribeTool)
	mux.HandleFunc("POST /admin/invoke", h.handleInvoke)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTools implements GET /admin/tools, returning the catalog in order.
func (h *Handlers) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.serveToolsUseCase.Execute(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tools", slog.Any("error", err))
		http.Error(w, domain.MessageGenericError, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Tool{"tools": tools})
}

// handleDescribeTool implements GET /admin/tools/{name}.
func (h *Handlers) handleDescribeTool(w http.ResponseWriter, r *http.Request) {
	tool, err := h.serveToolsUseCase.Describe(r.Context(), r.PathValue("name"))
	switch {
	case errors.Is(err, usecase.ErrToolNotFound):
		http.Error(w, "tool not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, domain.MessageGenericError, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// handleInvoke implements POST /admin/invoke as a JSON-RPC 2.0 endpoint with
// a single method, invokeTool. Protocol errors become JSON-RPC errors; tool
// failures are reported in the result like any MCP client would see them.
func (h *Handlers) handleInvoke(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req mcpjsonrpc.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("Failed to decode invoke request body", slog.Any("error", err))
		writeJSON(w, http.StatusOK, mcpjsonrpc.NewError(nil, mcpjsonrpc.CodeParseError, "Parse error"))
		return
	}

	if req.Version != mcpjsonrpc.Version {
		writeJSON(w, http.StatusOK, mcpjsonrpc.NewError(req.ID, mcpjsonrpc.CodeInvalidRequest, "Invalid Request"))
		return
	}
	if req.Method != mcpjsonrpc.MethodInvokeTool {
		writeJSON(w, http.StatusOK, mcpjsonrpc.NewError(req.ID, mcpjsonrpc.CodeMethodNotFound, "Method not found"))
		return
	}

	var params mcpjsonrpc.InvokeToolParams
	if len(bytes.TrimSpace(req.Params)) == 0 || json.Unmarshal(req.Params, &params) != nil || params.Name == "" {
		writeJSON(w, http.StatusOK, mcpjsonrpc.NewError(req.ID, mcpjsonrpc.CodeInvalidParams, "Invalid params"))
		return
	}

	h.logger.Info("Received invoke request", slog.String("tool_name", params.Name))
	envelope := h.invokeToolUseCase.Execute(r.Context(), params.Name, params.Arguments)
	writeJSON(w, http.StatusOK, mcpjsonrpc.NewResult(req.ID, mcpjsonrpc.InvokeToolResult{
		Text:    envelope.Text,
		IsError: envelope.IsError,
	}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
