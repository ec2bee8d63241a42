package ai

import "time"

// CompletionRequest represents a request for text completion/analysis
type CompletionRequest struct {
	// Prompt is the input text for completion
	Prompt string `json:"prompt"`

	// SystemPrompt provides system-level instructions. Providers that have
	// no separate system channel prepend it to the prompt.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Metadata for request tracking
	RequestID string `json:"request_id,omitempty"`
}

// CompletionResponse represents the response from a completion request
type CompletionResponse struct {
	// Content is the generated text
	Content string `json:"content"`

	// Model indicates which backend produced the content
	Model string `json:"model"`

	// RequestID matches the original request
	RequestID string `json:"request_id,omitempty"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`
}
