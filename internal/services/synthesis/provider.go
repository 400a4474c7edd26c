package synthesis

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// ProviderError is a classified generation failure. Retryable errors
// (rate limits, transient 5xx, timeouts) are retried with backoff;
// everything else surfaces immediately.
type ProviderError struct {
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

// retryableStatus reports whether an HTTP status from a provider is
// worth retrying.
func retryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504, 529:
		return true
	}
	return false
}

// isTransientMessage matches provider error strings that indicate a
// transient condition when no status code is available.
func isTransientMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{
		"429",
		"resource_exhausted",
		"quota",
		"rate limit",
		"overloaded",
		"unavailable",
		"deadline exceeded",
		"connection refused",
		"connection reset",
		"timeout",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// NewProvider creates the configured generation provider. The provider
// is selected once at startup; request paths never consult config or
// environment.
func NewProvider(config *common.Config, logger arbor.ILogger) (interfaces.GenerationProvider, error) {
	switch interfaces.ProviderType(config.LLM.Provider) {
	case interfaces.ProviderClaude:
		return NewClaudeProvider(&config.Claude, logger)
	case interfaces.ProviderGemini:
		return NewGeminiProvider(&config.Gemini, logger)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s (must be 'claude' or 'gemini')", config.LLM.Provider)
	}
}

// buildUserPrompt renders the grounded question handed to the model.
func buildUserPrompt(req *interfaces.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the regulatory documents below.\n\n")
	b.WriteString("DOCUMENTS:\n")
	b.WriteString(req.Context)
	b.WriteString("\n\nQUESTION: ")
	b.WriteString(req.Question)
	return b.String()
}

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = `You are a legal research assistant. Answer questions strictly from the provided regulatory documents.
Cite every claim with the source document in the form [Title, Section X].
If the documents do not contain the answer, say so plainly instead of guessing.
Quote exact thresholds, amounts, and time limits when they appear in the documents.`
