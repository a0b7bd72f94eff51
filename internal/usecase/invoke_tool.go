package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/jira-mcp/internal/domain"
)

const instrumentationName = "github.com/i2y/jira-mcp/internal/usecase"

// Outcome labels recorded on the tool call counter.
const (
	outcomeOK           = "ok"
	outcomeInvalidInput = "invalid_input"
	outcomeError        = "error"
	outcomePanic        = "panic"
)

// InvokeToolUseCase dispatches a tool invocation by name and maps its outcome
// to a domain.Envelope. It never lets an error or panic escape to the caller.
type InvokeToolUseCase struct {
	repository ToolRepository
	logger     *slog.Logger
	tracer     trace.Tracer
	calls      metric.Int64Counter
}

// NewInvokeToolUseCase creates a new InvokeToolUseCase.
func NewInvokeToolUseCase(repo ToolRepository, logger *slog.Logger) *InvokeToolUseCase {
	logger = logger.With("usecase", "InvokeTool")

	calls, err := otel.Meter(instrumentationName).Int64Counter(
		"jira_mcp.tool.calls",
		metric.WithDescription("Number of tool invocations by tool and outcome."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		logger.Warn("Failed to create tool call counter, metrics disabled", slog.Any("error", err))
		calls, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("jira_mcp.tool.calls")
	}

	return &InvokeToolUseCase{
		repository: repo,
		logger:     logger,
		tracer:     otel.Tracer(instrumentationName),
		calls:      calls,
	}
}

// Execute finds the tool binding, validates the raw arguments, runs the handler
// and renders its value. Callers only ever see the handler's payload or one of
// the fixed failure messages.
func (uc *InvokeToolUseCase) Execute(ctx context.Context, toolName string, args map[string]any) (envelope domain.Envelope) {
	log := uc.logger.With(slog.String("tool_name", toolName), slog.String("call_id", uuid.NewString()))

	ctx, span := uc.tracer.Start(ctx, "tool "+toolName, trace.WithAttributes(attribute.String("mcp.tool.name", toolName)))
	defer span.End()

	outcome := outcomeError
	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic during tool invocation", slog.Any("panic", r))
			outcome = outcomePanic
			envelope = domain.ErrorEnvelope(domain.MessageGenericError)
		}
		if envelope.IsError {
			span.SetStatus(codes.Error, outcome)
		}
		uc.calls.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", toolName),
			attribute.String("outcome", outcome),
		))
	}()

	log.Info("Executing tool invocation")

	// 1. Arguments must be present
	if args == nil {
		log.Warn("Rejecting tool invocation", slog.Any("error", ErrNoArguments))
		return domain.ErrorEnvelope(domain.MessageGenericError)
	}

	// 2. Find binding
	binding, err := uc.repository.FindBindingByName(ctx, toolName)
	if err != nil {
		log.Warn("Tool binding not found", slog.Any("error", err))
		return domain.ErrorEnvelope(domain.MessageGenericError)
	}

	// 3. Validate input before anything leaves the process
	if err := binding.Validate(args); err != nil {
		log.Debug("Invalid input parameters", slog.Any("error", err))
		outcome = outcomeInvalidInput
		return domain.ErrorEnvelope(domain.MessageInvalidInput)
	}

	// 4. Invoke the handler
	result, err := binding.Handle(ctx, args)
	if err != nil {
		log.Error("Tool handler failed", slog.String("error", err.Error()))
		span.RecordError(err)
		return domain.ErrorEnvelope(domain.MessageGenericError)
	}

	// 5. Render the value
	text, err := renderResult(result)
	if err != nil {
		log.Error("Failed to render tool result", slog.Any("error", err))
		span.RecordError(err)
		return domain.ErrorEnvelope(domain.MessageGenericError)
	}

	outcome = outcomeOK
	log.Info("Tool invocation successful", slog.Int("result_bytes", len(text)))
	return domain.TextEnvelope(text)
}

// renderResult returns preformatted text verbatim and serializes anything else
// as two-space indented JSON.
func renderResult(result any) (string, error) {
	switch v := result.(type) {
	case string:
		return v, nil
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Indent(&buf, v, "", "  "); err != nil {
			return "", fmt.Errorf("failed to indent JSON result: %w", err)
		}
		return buf.String(), nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return "", fmt.Errorf("failed to marshal result: %w", err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	}
}
