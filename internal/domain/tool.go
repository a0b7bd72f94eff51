package domain

// Tool represents a callable Jira operation exposed over the Model Context Protocol (MCP).
// Based on MCP Spec 2025-03-26: https://modelcontextprotocol.io/specification/2025-03-26
type Tool struct {
	// Name is the identifier callers dispatch on, e.g. "list_boards".
	// It MUST be unique within the MCP server.
	Name string `json:"name"`

	// Description provides a natural language explanation of what the tool does.
	// This is crucial for the LLM to understand when to use the tool.
	Description string `json:"description"`

	// InputSchema defines the structure of the data the tool expects.
	// Uses JSON Schema format.
	InputSchema JSONSchemaProps `json:"input_schema"`

	// ReadOnly marks tools that never modify Jira state.
	ReadOnly bool `json:"read_only"`
}

// JSONSchemaProps represents the properties of a JSON schema,
// used for the discoverable input shape of a tool.
type JSONSchemaProps struct {
	Type        string                     `json:"type,omitempty"`        // e.g., "object", "string", "number", "integer", "boolean", "array"
	Description string                     `json:"description,omitempty"` // Shown to the caller next to the field
	Properties  map[string]JSONSchemaProps `json:"properties,omitempty"`  // For type "object"
	Required    []string                   `json:"required,omitempty"`    // For type "object"
	Items       *JSONSchemaProps           `json:"items,omitempty"`       // For type "array"
	Format      string                     `json:"format,omitempty"`      // e.g., "date-time", "email"
	Enum        []interface{}              `json:"enum,omitempty"`        // Possible values
	Minimum     *float64                   `json:"minimum,omitempty"`
	Maximum     *float64                   `json:"maximum,omitempty"`
}
