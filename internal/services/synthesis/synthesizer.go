package synthesis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"golang.org/x/time/rate"
)

// Synthesizer drives answer generation: it rate-limits calls to the
// provider, retries transient failures with exponential backoff, and
// surfaces non-retryable failures immediately.
type Synthesizer struct {
	provider          interfaces.GenerationProvider
	limiter           *rate.Limiter
	maxRetries        int
	baseDelay         time.Duration
	backoffMultiplier float64
	systemPrompt      string
	temperature       float32
	maxTokens         int
	logger            arbor.ILogger
}

// NewSynthesizer creates a synthesizer around the given provider
func NewSynthesizer(provider interfaces.GenerationProvider, config *common.LLMConfig, logger arbor.ILogger) *Synthesizer {
	systemPrompt := config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	perMinute := config.RatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}

	return &Synthesizer{
		provider:          provider,
		limiter:           rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		maxRetries:        config.MaxRetries,
		baseDelay:         common.ParseDuration(config.BaseDelay, time.Second),
		backoffMultiplier: config.BackoffMultiplier,
		systemPrompt:      systemPrompt,
		temperature:       config.Temperature,
		maxTokens:         config.MaxTokens,
		logger:            logger,
	}
}

// Provider returns the underlying generation provider
func (s *Synthesizer) Provider() interfaces.GenerationProvider {
	return s.provider
}

// Close releases the underlying provider's resources
func (s *Synthesizer) Close() error {
	return s.provider.Close()
}

// Available reports whether the generation backend can serve requests
func (s *Synthesizer) Available(ctx context.Context) error {
	return s.provider.Available(ctx)
}

// Synthesize generates answer text for the question over the assembled
// context block. Temperature and maxTokens override the configured
// defaults when positive.
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextBlock string, temperature float32, maxTokens int) (*interfaces.GenerationResponse, error) {
	if temperature <= 0 {
		temperature = s.temperature
	}
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	req := &interfaces.GenerationRequest{
		Question:     question,
		Context:      contextBlock,
		SystemPrompt: s.systemPrompt,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	}

	delay := s.baseDelay
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying generation after transient failure")
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
			delay = time.Duration(float64(delay) * s.backoffMultiplier)
		}

		// The backend is quota-constrained; every attempt counts against
		// the shared budget.
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := s.provider.GenerateContent(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var provErr *ProviderError
		if errors.As(err, &provErr) && !provErr.Retryable {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("generation failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
