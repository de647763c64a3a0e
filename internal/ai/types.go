package ai

import (
	"fmt"
	"time"
)

// Part is one piece of user content: text or inline bytes with a media type
type Part struct {
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"-"`
}

// IsInline reports whether the part carries bytes rather than text
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// GenerateRequest is a single structured-output call
type GenerateRequest struct {
	// SystemPrompt provides system-level instructions
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Parts is the user turn, in order
	Parts []Part `json:"parts"`

	// ResponseSchema constrains the reply to JSON of this shape.
	// It uses the JSON Schema vocabulary.
	ResponseSchema map[string]any `json:"response_schema,omitempty"`

	// Model overrides the provider default
	Model string `json:"model,omitempty"`

	// RequestID for request tracking
	RequestID string `json:"request_id,omitempty"`
}

// GenerateResponse is the raw reply of a GenerateRequest
type GenerateResponse struct {
	// Content is the generated text
	Content string `json:"content"`

	// FinishReason indicates why the generation stopped
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage contains token usage information
	Usage *TokenUsage `json:"usage,omitempty"`

	// Model indicates which model version answered
	Model string `json:"model"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderConfig contains configuration for a provider
type ProviderConfig struct {
	// Name is the provider identifier
	Name string `json:"name"`

	// APIKey for authentication
	APIKey string `json:"api_key,omitempty"`

	// BaseURL overrides the service endpoint
	BaseURL string `json:"base_url,omitempty"`

	// DefaultModel is the default model to use
	DefaultModel string `json:"default_model,omitempty"`

	// Timeout bounds one request; zero means no limit
	Timeout time.Duration `json:"timeout,omitempty"`

	// Provider-specific options
	Options map[string]any `json:"options,omitempty"`
}

// ValidateGenerateRequest checks a request before it is sent
func ValidateGenerateRequest(req *GenerateRequest) error {
	if req == nil {
		return NewInputError("request", "", "request is required")
	}
	if len(req.Parts) == 0 {
		return NewInputError("parts", "", "at least one content part is required")
	}
	for i, p := range req.Parts {
		if p.Text == "" && !p.IsInline() {
			return NewInputError("parts", "", fmt.Sprintf("part %d is empty", i))
		}
		if p.IsInline() && p.MIMEType == "" {
			return NewInputError("parts.mime_type", "", "inline data requires a media type")
		}
	}
	return nil
}
