package model

import (
	"context"

	"github.com/chronosynth/chronosynth/core"
)

// Request captures one normalized model call produced by the prompt layer.
// The deadline travels on the context, not in the request.
type Request struct {
	Role   core.Role `json:"role"`
	System string    `json:"system,omitempty"`
	Prompt string    `json:"prompt"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completion returned by an Invoker.
type Response struct {
	Text  string      `json:"text"`
	Model string      `json:"model"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "groq", "mock", ...
}

// Invoker is the minimal capability agents need from a language model: one
// blocking call that returns generated text or a typed error. Failures are
// classified via InvocationError; context deadlines surface as timeout
// errors.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Embedder produces vector embeddings for text. Implemented by providers
// that expose an embeddings API; consumed by the long-term memory recall
// path.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
