package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/services/answercache"
	"github.com/ternarybob/respondeo/internal/services/assembler"
	"github.com/ternarybob/respondeo/internal/services/citations"
	"github.com/ternarybob/respondeo/internal/services/scoring"
	"github.com/ternarybob/respondeo/internal/services/synthesis"
)

var _ interfaces.AnswerService = (*Service)(nil)

type fakeParser struct{}

func (fakeParser) Parse(ctx context.Context, question string) models.QueryContext {
	return models.QueryContext{
		RawQuestion:      question,
		Normalized:       models.NormalizeQuestion(question),
		Intent:           "eligibility",
		IntentConfidence: 0.8,
	}
}

type fakeRetriever struct {
	docs  []*models.Document
	tier  models.TierSource
	calls int
	panic bool
}

func (f *fakeRetriever) Retrieve(ctx context.Context, qc models.QueryContext, limit int) ([]*models.Document, models.TierSource) {
	f.calls++
	if f.panic {
		panic("retriever exploded")
	}
	return f.docs, f.tier
}

type stubProvider struct {
	text      string
	err       error
	available error
	calls     int
}

func (p *stubProvider) GenerateContent(ctx context.Context, req *interfaces.GenerationRequest) (*interfaces.GenerationResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &interfaces.GenerationResponse{Text: p.text, Provider: interfaces.ProviderClaude, Model: "test"}, nil
}

func (p *stubProvider) Available(ctx context.Context) error   { return p.available }
func (p *stubProvider) ProviderType() interfaces.ProviderType { return interfaces.ProviderClaude }
func (p *stubProvider) Close() error                          { return nil }

func contextDocs() []*models.Document {
	return []*models.Document{
		{ID: "doc_1", Title: "Employment Insurance Act", Content: "Benefits are payable to eligible claimants.", SectionNumber: "7", Score: 0.9, TierSource: models.TierHybrid},
		{ID: "doc_2", Title: "Employment Insurance Regulations", Content: "A claimant must serve a waiting period.", SectionNumber: "14", Score: 0.7, TierSource: models.TierHybrid},
	}
}

func newTestService(retriever interfaces.Retriever, provider interfaces.GenerationProvider) *Service {
	logger := common.GetLogger()
	config := common.NewDefaultConfig()

	return NewService(
		fakeParser{},
		retriever,
		assembler.NewAssembler(&config.Assembler, logger),
		synthesis.NewSynthesizer(provider, &common.LLMConfig{
			MaxRetries:        1,
			BaseDelay:         "1ms",
			BackoffMultiplier: 2,
			RatePerMinute:     6000,
			Temperature:       0.3,
			MaxTokens:         512,
		}, logger),
		citations.NewExtractor(logger),
		scoring.NewScorer(logger),
		answercache.NewCache(&config.Cache, logger),
		nil,
		config,
		logger,
	)
}

const answerText = "[Employment Insurance Act, Section 7] states benefits are payable."

func TestAnswerQuestion_FullPipeline(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	provider := &stubProvider{text: answerText}
	svc := newTestService(retriever, provider)

	ans := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible for benefits?"})

	require.NotNil(t, ans)
	assert.False(t, ans.Failed())
	assert.True(t, strings.HasPrefix(ans.ID, "ans_"))
	assert.Equal(t, answerText, ans.Answer)
	assert.False(t, ans.Cached)
	assert.Equal(t, "hybrid", ans.Metadata[models.MetaMethod])
	assert.Equal(t, "claude", ans.Metadata[models.MetaProvider])
	assert.Len(t, ans.SourceDocuments, 2)

	require.Len(t, ans.Citations, 1)
	assert.Equal(t, "doc_1", ans.Citations[0].DocumentID)

	assert.GreaterOrEqual(t, ans.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, ans.ConfidenceScore, 1.0)
	assert.Greater(t, ans.ConfidenceScore, 0.0)
}

func TestAnswerQuestion_CitationsReferenceSourceDocuments(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	svc := newTestService(retriever, &stubProvider{text: answerText})

	ans := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible for benefits?"})

	ids := make(map[string]bool)
	for _, doc := range ans.SourceDocuments {
		ids[doc.ID] = true
	}
	for _, c := range ans.Citations {
		if c.Resolved() {
			assert.True(t, ids[c.DocumentID], "resolved citation must point into source documents")
		}
	}
}

func TestAnswerQuestion_NoContextTerminalState(t *testing.T) {
	retriever := &fakeRetriever{tier: models.TierNone}
	provider := &stubProvider{text: answerText}
	svc := newTestService(retriever, provider)

	ans := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Martian colonization regulations"})

	assert.Equal(t, models.ErrNoContextFound, ans.Metadata[models.MetaError])
	assert.Equal(t, 0.0, ans.ConfidenceScore)
	assert.Empty(t, ans.SourceDocuments)
	assert.True(t, strings.HasPrefix(ans.ID, "ans_"))
	assert.Equal(t, 0, provider.calls, "generation must not be invoked without context")
}

func TestAnswerQuestion_GenerationUnavailable(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	provider := &stubProvider{text: answerText, available: errors.New("no api key")}
	svc := newTestService(retriever, provider)

	ans := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible for benefits?"})

	assert.Equal(t, models.ErrGenerationUnavailable, ans.Metadata[models.MetaError])
	assert.Equal(t, 0.0, ans.ConfidenceScore)
	assert.Empty(t, ans.SourceDocuments)
	assert.Equal(t, 0, provider.calls)
}

func TestAnswerQuestion_GenerationFailureSurfacesAsUnavailable(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	provider := &stubProvider{err: &synthesis.ProviderError{StatusCode: 401, Message: "bad key", Retryable: false}}
	svc := newTestService(retriever, provider)

	ans := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible for benefits?"})

	assert.Equal(t, models.ErrGenerationUnavailable, ans.Metadata[models.MetaError])
	assert.Equal(t, 0.0, ans.ConfidenceScore)
}

func TestAnswerQuestion_CacheHitIdenticalContent(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	provider := &stubProvider{text: answerText}
	svc := newTestService(retriever, provider)

	first := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible for EI?"})
	second := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "  am i ELIGIBLE for ei?  "})

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, first.Citations, second.Citations)
	assert.Equal(t, "hybrid", first.Metadata[models.MetaMethod])
	assert.Equal(t, "cache", second.Metadata[models.MetaMethod])
	assert.Equal(t, 1, provider.calls, "cache hit must not regenerate")
	assert.Equal(t, 1, retriever.calls, "cache hit must not re-retrieve")
}

func TestAnswerQuestion_UseCacheFalseBypassesCache(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	provider := &stubProvider{text: answerText}
	svc := newTestService(retriever, provider)

	noCache := false
	svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible?", UseCache: &noCache})
	second := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible?", UseCache: &noCache})

	assert.False(t, second.Cached)
	assert.Equal(t, 2, provider.calls)
}

func TestAnswerQuestion_ClearCacheForcesRecompute(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	provider := &stubProvider{text: answerText}
	svc := newTestService(retriever, provider)

	svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible?"})
	svc.ClearCache()
	repeat := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible?"})

	assert.False(t, repeat.Cached)
	assert.Equal(t, 2, provider.calls)
}

func TestAnswerQuestion_InvalidRequest(t *testing.T) {
	svc := newTestService(&fakeRetriever{}, &stubProvider{text: answerText})

	ans := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "ab"})

	assert.True(t, ans.Failed())
	assert.Equal(t, 0.0, ans.ConfidenceScore)
	assert.Contains(t, ans.Metadata[models.MetaError], "invalid request")
}

func TestAnswerQuestion_PanicRecovered(t *testing.T) {
	retriever := &fakeRetriever{panic: true}
	svc := newTestService(retriever, &stubProvider{text: answerText})

	ans := svc.AnswerQuestion(context.Background(), &interfaces.AnswerRequest{Question: "Am I eligible?"})

	require.NotNil(t, ans)
	assert.True(t, ans.Failed())
	assert.Contains(t, ans.Metadata[models.MetaError], "internal error")
	assert.Equal(t, 0.0, ans.ConfidenceScore)
}

func TestAnswerBatch_PreservesOrder(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	svc := newTestService(retriever, &stubProvider{text: answerText})

	answers := svc.AnswerBatch(context.Background(), &interfaces.BatchRequest{
		Questions: []string{"First question here?", "Second question here?", "Third question here?"},
	})

	require.Len(t, answers, 3)
	assert.Equal(t, "First question here?", answers[0].Question)
	assert.Equal(t, "Second question here?", answers[1].Question)
	assert.Equal(t, "Third question here?", answers[2].Question)
}

func TestSearchBatch_PreservesOrder(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	svc := newTestService(retriever, &stubProvider{text: answerText})

	results := svc.SearchBatch(context.Background(), &interfaces.BatchSearchRequest{
		Queries: []string{"benefits", "waiting period", "parental leave"},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "benefits", results[0].Query)
	assert.Equal(t, "waiting period", results[1].Query)
	assert.Equal(t, "parental leave", results[2].Query)
	for _, r := range results {
		assert.Equal(t, models.TierHybrid, r.Tier)
		assert.Len(t, r.Documents, 2)
	}
}

func TestSearch_ReturnsTierResults(t *testing.T) {
	retriever := &fakeRetriever{docs: contextDocs(), tier: models.TierHybrid}
	svc := newTestService(retriever, &stubProvider{text: answerText})

	docs, tier := svc.Search(context.Background(), &interfaces.SearchRequest{Query: "benefits"})

	assert.Len(t, docs, 2)
	assert.Equal(t, models.TierHybrid, tier)
}

func TestHealthCheck_ReportsGenerationStatus(t *testing.T) {
	svc := newTestService(&fakeRetriever{}, &stubProvider{available: errors.New("key missing")})

	report := svc.HealthCheck(context.Background())

	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "error", report.Components["generation"].Status)
	assert.Equal(t, "ok", report.Components["cache"].Status)
}
