// Package mcpstdio serves the MCP server over newline-delimited JSON-RPC on
// stdin/stdout.
package mcpstdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpGoServer "github.com/mark3labs/mcp-go/server"

	"github.com/i2y/jira-mcp/internal/usecase"
)

// Server runs mcp-go's stdio transport behind a line router. Calls to tool
// names the MCP server has no handler for are answered with the usual tool
// failure result instead of a JSON-RPC error; every other message is passed
// through unchanged.
type Server struct {
	mcpServer  *mcpGoServer.MCPServer
	registerUC *usecase.RegisterToolsUseCase
	logger     *slog.Logger
}

// NewServer creates a new Server.
func NewServer(mcpServer *mcpGoServer.MCPServer, registerUC *usecase.RegisterToolsUseCase, logger *slog.Logger) *Server {
	return &Server{
		mcpServer:  mcpServer,
		registerUC: registerUC,
		logger:     logger.With("component", "mcp_stdio"),
	}
}

// Listen reads JSON-RPC messages from in and writes responses to out until in
// is exhausted or ctx is cancelled.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &syncWriter{w: out}
	pr, pw := io.Pipe()
	defer pr.Close()

	stdio := mcpGoServer.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	done := make(chan error, 1)
	go func() {
		done <- stdio.Listen(ctx, pr, w)
	}()

	// The router exits once in is closed or the stdio server stops reading.
	go func() {
		err := s.route(ctx, bufio.NewReader(in), pw, w)
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			s.logger.Error("Failed to read input", slog.Any("error", err))
		}
		_ = pw.CloseWithError(err)
	}()

	return <-done
}

// route copies lines from in to forward, answering the ones intercept claims
// directly on out.
func (s *Server) route(ctx context.Context, in *bufio.Reader, forward io.Writer, out io.Writer) error {
	for {
		line, readErr := in.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			if resp := s.intercept(ctx, line); resp != nil {
				if err := writeMessage(out, resp); err != nil {
					return fmt.Errorf("failed to write response: %w", err)
				}
			} else {
				if line[len(line)-1] != '\n' {
					line = append(line, '\n')
				}
				if _, err := forward.Write(line); err != nil {
					return err
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

// intercept returns the response for a tools/call naming an unregistered
// tool, or nil when the message belongs to the MCP server.
func (s *Server) intercept(ctx context.Context, line []byte) mcp.JSONRPCMessage {
	var base struct {
		JSONRPC string        `json:"jsonrpc"`
		Method  mcp.MCPMethod `json:"method"`
		ID      any           `json:"id,omitempty"`
	}
	if err := json.Unmarshal(line, &base); err != nil {
		return nil
	}
	if base.JSONRPC != mcp.JSONRPC_VERSION || base.Method != mcp.MethodToolsCall || base.ID == nil {
		return nil
	}

	var req mcp.CallToolRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return nil
	}

	result, handled := s.registerUC.CallUnregistered(ctx, req)
	if !handled {
		return nil
	}
	s.logger.Debug("Answered call to unregistered tool", slog.String("tool_name", req.Params.Name))
	return mcp.JSONRPCResponse{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      mcp.NewRequestId(base.ID),
		Result:  result,
	}
}

func writeMessage(w io.Writer, msg mcp.JSONRPCMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// syncWriter serializes whole-message writes from the router and the stdio
// server onto one stream.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
