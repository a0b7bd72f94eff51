package httpinvoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/i2y/jira-mcp/internal/adapter/outbound/httpinvoker"

// maxErrorBodyBytes bounds how much of a failed response ends up in the error.
const maxErrorBodyBytes = 1024

// Credentials authenticate requests against Jira. With an Email set the
// APIToken is sent as basic auth (Jira Cloud); otherwise it is sent as a
// bearer personal access token (Jira Server/Data Center).
type Credentials struct {
	Email    string
	APIToken string
}

// Invoker implements the usecase.JiraFetcher interface using standard net/http.
type Invoker struct {
	client      *http.Client
	credentials Credentials
	headers     map[string]string
	logger      *slog.Logger
	tracer      trace.Tracer
}

// New creates a new HTTP Invoker. Headers are added to every request.
func New(client *http.Client, credentials Credentials, headers map[string]string, logger *slog.Logger) *Invoker {
	if client == nil {
		client = http.DefaultClient
	}
	return &Invoker{
		client:      client,
		credentials: credentials,
		headers:     headers,
		logger:      logger.With("component", "http_invoker"),
		tracer:      otel.Tracer(instrumentationName),
	}
}

// GetJSON performs a GET against rawURL and returns the JSON body.
func (i *Invoker) GetJSON(ctx context.Context, rawURL string) (json.RawMessage, error) {
	return i.do(ctx, http.MethodGet, rawURL, nil)
}

// PostJSON marshals body, POSTs it to rawURL and returns the JSON body of the response.
func (i *Invoker) PostJSON(ctx context.Context, rawURL string, body any) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return i.do(ctx, http.MethodPost, rawURL, data)
}

func (i *Invoker) do(ctx context.Context, method, rawURL string, body []byte) (json.RawMessage, error) {
	log := i.logger.With(slog.String("method", method), slog.String("url", rawURL))

	ctx, span := i.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", rawURL),
		),
	)
	defer span.End()

	// --- 1. Create HTTP Request --- //
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		span.SetStatus(codes.Error, "invalid url")
		return nil, fmt.Errorf("invalid request URL %q: %w", rawURL, err)
	}

	var requestBody io.Reader
	if body != nil {
		requestBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, requestBody)
	if err != nil {
		span.SetStatus(codes.Error, "request creation failed")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range i.headers {
		req.Header.Set(key, value)
	}
	i.authorize(req)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	// --- 2. Execute Request --- //
	log.Debug("Executing HTTP request")
	resp, err := i.client.Do(req)
	if err != nil {
		log.Error("HTTP request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "request execution failed")
		return nil, fmt.Errorf("request execution failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log = log.With(slog.Int("status_code", resp.StatusCode))

	// --- 3. Process Response --- //
	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", slog.Any("error", err))
		span.SetStatus(codes.Error, "read body failed")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Received non-success status code")
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(respBodyBytes, maxErrorBodyBytes))
	}

	if !json.Valid(respBodyBytes) {
		log.Warn("Response body is not valid JSON", slog.Int("size", len(respBodyBytes)))
		span.SetStatus(codes.Error, "invalid json")
		return nil, fmt.Errorf("HTTP %d: response body is not valid JSON", resp.StatusCode)
	}

	log.Debug("Received HTTP response", slog.Int("size", len(respBodyBytes)))
	return json.RawMessage(respBodyBytes), nil
}

func (i *Invoker) authorize(req *http.Request) {
	switch {
	case i.credentials.Email != "":
		req.SetBasicAuth(i.credentials.Email, i.credentials.APIToken)
	case i.credentials.APIToken != "":
		req.Header.Set("Authorization", "Bearer "+i.credentials.APIToken)
	}
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
