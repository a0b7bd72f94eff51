package openapi

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/i2y/jira-mcp/internal/domain"
)

// ErrSchemaMismatch is returned when a value does not satisfy its schema.
var ErrSchemaMismatch = errors.New("value does not match schema")

// SchemaConverter turns kin-openapi schemas into the JSON Schema shape
// advertised for tool inputs.
type SchemaConverter struct {
	logger *slog.Logger
}

// NewSchemaConverter creates a new SchemaConverter.
func NewSchemaConverter(logger *slog.Logger) *SchemaConverter {
	return &SchemaConverter{
		logger: logger.With("component", "openapi_schema"),
	}
}

// Convert converts an object schema into a domain.JSONSchemaProps.
func (c *SchemaConverter) Convert(schema *openapi3.Schema) (*domain.JSONSchemaProps, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	return c.convertSchemaRef(c.logger, openapi3.NewSchemaRef("", schema))
}

// Validate checks value (as decoded by encoding/json) against schema.
// All violations are reported, wrapped in ErrSchemaMismatch.
func Validate(schema *openapi3.Schema, value any) error {
	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}

// Validator binds Validate to a schema for use as a tool argument check.
func Validator(schema *openapi3.Schema) func(args map[string]any) error {
	return func(args map[string]any) error {
		return Validate(schema, args)
	}
}

// convertSchemaRef converts an openapi3.SchemaRef into a domain.JSONSchemaProps.
// This is recursive and handles basic types, objects, arrays, and enums.
func (c *SchemaConverter) convertSchemaRef(log *slog.Logger, ref *openapi3.SchemaRef) (*domain.JSONSchemaProps, error) {
	if ref == nil || ref.Value == nil {
		log.Debug("Converting nil schema reference to empty object schema")
		return &domain.JSONSchemaProps{Type: "object", Properties: map[string]domain.JSONSchemaProps{}}, nil
	}
	schema := ref.Value

	// Handle Type field (*openapi3.Types which is *[]string)
	var schemaType string
	if schema.Type != nil && len(*schema.Type) > 0 {
		// Take the first type if multiple are specified
		schemaType = (*schema.Type)[0]
		if len(*schema.Type) > 1 {
			log.Warn("Multiple schema types found", slog.Any("types", *schema.Type), slog.String("using_type", schemaType))
		}
	}

	props := domain.JSONSchemaProps{
		Type:        schemaType,
		Description: schema.Description,
		Format:      schema.Format,
		Enum:        schema.Enum,
		Minimum:     schema.Min,
		Maximum:     schema.Max,
	}

	switch schemaType {
	case "object":
		props.Properties = make(map[string]domain.JSONSchemaProps, len(schema.Properties))
		props.Required = schema.Required
		for name, propRef := range schema.Properties {
			if propRef == nil {
				continue
			}
			propSchema, err := c.convertSchemaRef(log, propRef)
			if err != nil {
				return nil, fmt.Errorf("error converting property '%s': %w", name, err)
			}
			props.Properties[name] = *propSchema
		}
	case "array":
		if schema.Items == nil {
			return nil, fmt.Errorf("array schema without 'items' definition")
		}
		itemSchema, err := c.convertSchemaRef(log, schema.Items)
		if err != nil {
			return nil, fmt.Errorf("error converting array items: %w", err)
		}
		props.Items = itemSchema
	case "string", "number", "integer", "boolean":
		// Basic types, already handled by setting props.Type
	case "":
		// Omitting 'type' accepts any value.
	default:
		return nil, fmt.Errorf("unsupported schema type %q", schemaType)
	}

	return &props, nil
}
