package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

// ClaudeProvider implements GenerationProvider on the Anthropic API.
type ClaudeProvider struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  *anthropic.Client
	timeout time.Duration
}

// NewClaudeProvider creates a Claude generation provider
func NewClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}
	timeout := common.ParseDuration(config.Timeout, 60*time.Second)

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	logger.Debug().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Claude generation provider initialized")

	return &ClaudeProvider{
		config:  config,
		logger:  logger,
		client:  &client,
		timeout: timeout,
	}, nil
}

// ProviderType identifies this provider
func (p *ClaudeProvider) ProviderType() interfaces.ProviderType {
	return interfaces.ProviderClaude
}

// GenerateContent runs one generation call. Failures come back as
// *ProviderError so the synthesizer can decide on retry.
func (p *ClaudeProvider) GenerateContent(ctx context.Context, req *interfaces.GenerationRequest) (*interfaces.GenerationResponse, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserPrompt(req))),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	resp, err := p.client.Messages.New(timeoutCtx, params)
	if err != nil {
		return nil, p.classifyError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &ProviderError{Message: "empty response from Claude API", Retryable: true}
	}

	return &interfaces.GenerationResponse{
		Text:     text.String(),
		Provider: interfaces.ProviderClaude,
		Model:    p.config.Model,
	}, nil
}

// Available reports whether the provider can serve requests
func (p *ClaudeProvider) Available(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("Claude client is not initialized")
	}
	if p.config.APIKey == "" {
		return fmt.Errorf("Anthropic API key is not configured")
	}
	return nil
}

// Close releases provider resources
func (p *ClaudeProvider) Close() error {
	p.client = nil
	return nil
}

func (p *ClaudeProvider) classifyError(err error) *ProviderError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
			Retryable:  retryableStatus(apiErr.StatusCode),
		}
	}
	return &ProviderError{
		Message:   err.Error(),
		Retryable: isTransientMessage(err.Error()),
	}
}
