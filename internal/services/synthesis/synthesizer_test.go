package synthesis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

type mockProvider struct {
	responses []func() (*interfaces.GenerationResponse, error)
	calls     int
	available error
}

func (m *mockProvider) GenerateContent(ctx context.Context, req *interfaces.GenerationRequest) (*interfaces.GenerationResponse, error) {
	idx := m.calls
	m.calls++
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx]()
}

func (m *mockProvider) Available(ctx context.Context) error   { return m.available }
func (m *mockProvider) ProviderType() interfaces.ProviderType { return interfaces.ProviderClaude }
func (m *mockProvider) Close() error                          { return nil }

func success(text string) func() (*interfaces.GenerationResponse, error) {
	return func() (*interfaces.GenerationResponse, error) {
		return &interfaces.GenerationResponse{Text: text, Provider: interfaces.ProviderClaude}, nil
	}
}

func failure(err error) func() (*interfaces.GenerationResponse, error) {
	return func() (*interfaces.GenerationResponse, error) { return nil, err }
}

func newTestSynthesizer(provider interfaces.GenerationProvider) *Synthesizer {
	return NewSynthesizer(provider, &common.LLMConfig{
		MaxRetries:        3,
		BaseDelay:         "1ms",
		BackoffMultiplier: 2,
		RatePerMinute:     6000,
		Temperature:       0.3,
		MaxTokens:         512,
	}, common.GetLogger())
}

func TestSynthesize_Success(t *testing.T) {
	provider := &mockProvider{responses: []func() (*interfaces.GenerationResponse, error){success("answer text")}}

	resp, err := newTestSynthesizer(provider).Synthesize(context.Background(), "q", "ctx", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, "answer text", resp.Text)
	assert.Equal(t, 1, provider.calls)
}

func TestSynthesize_RetriesTransientThenSucceeds(t *testing.T) {
	provider := &mockProvider{responses: []func() (*interfaces.GenerationResponse, error){
		failure(&ProviderError{StatusCode: 429, Message: "rate limited", Retryable: true}),
		failure(&ProviderError{StatusCode: 503, Message: "overloaded", Retryable: true}),
		success("eventually"),
	}}

	resp, err := newTestSynthesizer(provider).Synthesize(context.Background(), "q", "ctx", 0, 0)

	require.NoError(t, err)
	assert.Equal(t, "eventually", resp.Text)
	assert.Equal(t, 3, provider.calls)
}

func TestSynthesize_NonRetryableSurfacesImmediately(t *testing.T) {
	provider := &mockProvider{responses: []func() (*interfaces.GenerationResponse, error){
		failure(&ProviderError{StatusCode: 401, Message: "bad key", Retryable: false}),
	}}

	_, err := newTestSynthesizer(provider).Synthesize(context.Background(), "q", "ctx", 0, 0)

	require.Error(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestSynthesize_ExhaustsRetries(t *testing.T) {
	provider := &mockProvider{responses: []func() (*interfaces.GenerationResponse, error){
		failure(&ProviderError{StatusCode: 503, Message: "down", Retryable: true}),
	}}

	_, err := newTestSynthesizer(provider).Synthesize(context.Background(), "q", "ctx", 0, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.Equal(t, 4, provider.calls)
}

func TestSynthesize_CancelledContextStopsRetries(t *testing.T) {
	provider := &mockProvider{responses: []func() (*interfaces.GenerationResponse, error){
		failure(&ProviderError{StatusCode: 503, Message: "down", Retryable: true}),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	s := NewSynthesizer(provider, &common.LLMConfig{
		MaxRetries:        5,
		BaseDelay:         "50ms",
		BackoffMultiplier: 2,
		RatePerMinute:     6000,
	}, common.GetLogger())

	_, err := s.Synthesize(ctx, "q", "ctx", 0, 0)

	require.Error(t, err)
	assert.Less(t, provider.calls, 6)
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, retryableStatus(429))
	assert.True(t, retryableStatus(503))
	assert.True(t, retryableStatus(529))
	assert.False(t, retryableStatus(400))
	assert.False(t, retryableStatus(401))
	assert.False(t, retryableStatus(404))
}

func TestIsTransientMessage(t *testing.T) {
	assert.True(t, isTransientMessage("Error 429: RESOURCE_EXHAUSTED, quota exceeded"))
	assert.True(t, isTransientMessage("context deadline exceeded"))
	assert.False(t, isTransientMessage("invalid request: missing field"))
}
