package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// AnswerRequest carries one question through the pipeline.
type AnswerRequest struct {
	Question       string              `json:"question" validate:"required,min=3"`
	Filters        map[string][]string `json:"filters,omitempty"`
	NumContextDocs int                 `json:"num_context_docs,omitempty" validate:"omitempty,min=1,max=20"`
	UseCache       *bool               `json:"use_cache,omitempty"` // nil = true
	Temperature    float32             `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	MaxTokens      int                 `json:"max_tokens,omitempty" validate:"omitempty,min=1,max=8192"`
}

// CacheEnabled resolves the UseCache default.
func (r *AnswerRequest) CacheEnabled() bool {
	return r.UseCache == nil || *r.UseCache
}

// BatchRequest answers several questions concurrently under a bounded
// worker pool (the generation backend is rate-limited).
type BatchRequest struct {
	Questions []string            `json:"questions" validate:"required,min=1,max=50,dive,min=3"`
	Filters   map[string][]string `json:"filters,omitempty"`
	UseCache  *bool               `json:"use_cache,omitempty"`
}

// SearchRequest is a retrieval-only operation (no generation).
type SearchRequest struct {
	Query   string              `json:"query" validate:"required,min=2"`
	Filters map[string][]string `json:"filters,omitempty"`
	Limit   int                 `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// BatchSearchRequest runs several retrieval-only queries concurrently.
// Search never generates, so its worker pool is wider than the answer
// pool.
type BatchSearchRequest struct {
	Queries []string            `json:"queries" validate:"required,min=1,max=100,dive,min=2"`
	Filters map[string][]string `json:"filters,omitempty"`
	Limit   int                 `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// SearchResult pairs one query with its retrieval outcome.
type SearchResult struct {
	Query     string             `json:"query"`
	Tier      models.TierSource  `json:"tier"`
	Documents []*models.Document `json:"documents"`
}

// AnswerService is the operation surface this core exposes to routing
// layers. AnswerQuestion never returns an error: every failure mode is
// folded into a well-formed Answer with metadata.error set.
type AnswerService interface {
	AnswerQuestion(ctx context.Context, req *AnswerRequest) *models.Answer
	AnswerBatch(ctx context.Context, req *BatchRequest) []*models.Answer
	Search(ctx context.Context, req *SearchRequest) ([]*models.Document, models.TierSource)
	SearchBatch(ctx context.Context, req *BatchSearchRequest) []*SearchResult
	ClearCache()
	CacheStats() models.CacheStats
	HealthCheck(ctx context.Context) models.HealthReport
}
