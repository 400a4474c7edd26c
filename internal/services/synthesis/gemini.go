package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiProvider implements GenerationProvider on the Google Gemini API.
type GeminiProvider struct {
	config *common.GeminiConfig
	logger arbor.ILogger
	client *genai.Client
}

// NewGeminiProvider creates a Gemini generation provider
func NewGeminiProvider(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini.api_key in config)")
	}

	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", config.Model).
		Msg("Gemini generation provider initialized")

	return &GeminiProvider{
		config: config,
		logger: logger,
		client: client,
	}, nil
}

// ProviderType identifies this provider
func (p *GeminiProvider) ProviderType() interfaces.ProviderType {
	return interfaces.ProviderGemini
}

// GenerateContent runs one generation call. Failures come back as
// *ProviderError so the synthesizer can decide on retry.
func (p *GeminiProvider) GenerateContent(ctx context.Context, req *interfaces.GenerationRequest) (*interfaces.GenerationResponse, error) {
	genConfig := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(req.Temperature)
	}
	if req.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildUserPrompt(req), genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, contents, genConfig)
	if err != nil {
		// The genai SDK does not expose a stable typed error; classify
		// from the message the way Gemini reports 429/RESOURCE_EXHAUSTED.
		return nil, &ProviderError{
			Message:   err.Error(),
			Retryable: isTransientMessage(err.Error()),
		}
	}

	// Iterate candidates until non-empty text is found.
	var text strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}
	if text.Len() == 0 {
		return nil, &ProviderError{Message: "empty response from Gemini API", Retryable: true}
	}

	return &interfaces.GenerationResponse{
		Text:     text.String(),
		Provider: interfaces.ProviderGemini,
		Model:    p.config.Model,
	}, nil
}

// Available reports whether the provider can serve requests
func (p *GeminiProvider) Available(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("Gemini client is not initialized")
	}
	if p.config.APIKey == "" {
		return fmt.Errorf("Gemini API key is not configured")
	}
	return nil
}

// Close releases provider resources
func (p *GeminiProvider) Close() error {
	p.client = nil
	return nil
}
