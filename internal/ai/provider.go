package ai

import "context"

// Type is a schema value type as understood by the Gemini API.
type Type string

const (
	TypeString  Type = "STRING"
	TypeNumber  Type = "NUMBER"
	TypeInteger Type = "INTEGER"
	TypeBoolean Type = "BOOLEAN"
	TypeArray   Type = "ARRAY"
	TypeObject  Type = "OBJECT"
)

// Schema is the subset of the OpenAPI schema accepted as a structured-output
// constraint.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Request is a single generate-content call.
type Request struct {
	Model  string
	Prompt string
	// Schema, when set, asks for JSON output matching it.
	Schema *Schema
	// Search enables the Google Search grounding tool.
	Search bool
	// AspectRatio is only meaningful for image-capable models.
	AspectRatio string
	// APIKey overrides the provider's default credential.
	APIKey string
}

// InlineData is a binary part of a response, base64 encoded.
type InlineData struct {
	MIMEType string
	Data     string
}

// Response is the useful part of a generate-content reply.
type Response struct {
	Text   string
	Images []InlineData
}

// Provider issues generate-content calls against a model backend.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
