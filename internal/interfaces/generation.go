package interfaces

import "context"

// ProviderType identifies a generation backend.
type ProviderType string

const (
	// ProviderClaude uses the Anthropic Claude API.
	ProviderClaude ProviderType = "claude"
	// ProviderGemini uses the Google Gemini API.
	ProviderGemini ProviderType = "gemini"
)

// GenerationRequest is a provider-agnostic content generation request.
type GenerationRequest struct {
	Question     string
	Context      string // Assembled context block, may be empty
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

// GenerationResponse is a provider-agnostic generation response.
type GenerationResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// GenerationProvider defines the contract for answer generation backends.
// Implementations are constructed once at process start by the provider
// factory and passed by reference into the synthesizer; request-handling
// code never consults the environment to pick a provider.
type GenerationProvider interface {
	// GenerateContent produces answer text for the request. Transient
	// failures should be returned as *synthesis.ProviderError with
	// Retryable set so the synthesizer can apply its backoff policy.
	GenerateContent(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)

	// Available reports whether the backend can be reached at all. The
	// pipeline short-circuits to a zero-confidence answer when this
	// fails, without attempting generation.
	Available(ctx context.Context) error

	// ProviderType identifies the backend.
	ProviderType() ProviderType

	// Close releases client resources.
	Close() error
}
