package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/ternarybob/respondeo/internal/services/answercache"
	"github.com/ternarybob/respondeo/internal/services/assembler"
	"github.com/ternarybob/respondeo/internal/services/citations"
	"github.com/ternarybob/respondeo/internal/services/scoring"
	"github.com/ternarybob/respondeo/internal/services/synthesis"
)

// Service runs the full question-answering pipeline: parse, retrieve,
// assemble, synthesize, extract citations, score, cache. AnswerQuestion
// never returns an error; every failure mode is folded into a
// well-formed Answer with metadata.error set.
type Service struct {
	parser      interfaces.QueryParser
	retriever   interfaces.Retriever
	assembler   *assembler.Assembler
	synthesizer *synthesis.Synthesizer
	extractor   *citations.Extractor
	scorer      *scoring.Scorer
	cache       interfaces.AnswerCache
	storage     interfaces.StorageManager
	config      *common.Config
	validate    *validator.Validate
	probes      map[string]func(context.Context) error
	logger      arbor.ILogger
}

// NewService wires the pipeline together
func NewService(
	parser interfaces.QueryParser,
	retriever interfaces.Retriever,
	asm *assembler.Assembler,
	synthesizer *synthesis.Synthesizer,
	extractor *citations.Extractor,
	scorer *scoring.Scorer,
	cache interfaces.AnswerCache,
	storage interfaces.StorageManager,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		parser:      parser,
		retriever:   retriever,
		assembler:   asm,
		synthesizer: synthesizer,
		extractor:   extractor,
		scorer:      scorer,
		cache:       cache,
		storage:     storage,
		config:      config,
		validate:    validator.New(),
		probes:      make(map[string]func(context.Context) error),
		logger:      logger,
	}
}

// RegisterProbe adds a named backend probe to the health check.
func (s *Service) RegisterProbe(name string, probe func(context.Context) error) {
	s.probes[name] = probe
}

// AnswerQuestion runs one question through the pipeline. It always
// returns a well-formed Answer; unexpected panics are converted into a
// zero-confidence answer with metadata.error describing the failure.
func (s *Service) AnswerQuestion(ctx context.Context, req *interfaces.AnswerRequest) (ans *models.Answer) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("panic", fmt.Sprint(r)).Msg("Answer pipeline panicked")
			ans = s.failedAnswer(req.Question, "", fmt.Sprintf("internal error: %v", r), start)
		}
	}()

	if err := s.validate.Struct(req); err != nil {
		return s.failedAnswer(req.Question, "", fmt.Sprintf("invalid request: %v", err), start)
	}

	qc := s.parser.Parse(ctx, req.Question)
	qc.Filters = mergeFilters(qc.Filters, req.Filters)

	cacheKey := answercache.Key(req.Question, qc.Filters)
	if req.CacheEnabled() {
		if cached, found := s.cache.Get(cacheKey); found {
			s.logger.Debug().Str("key", cacheKey).Msg("Answer cache hit")
			return cachedCopy(cached, start)
		}
	}

	docs, tier := s.retriever.Retrieve(ctx, qc, 0)
	if len(docs) == 0 {
		ans = s.terminalAnswer(req.Question, qc.Intent, models.ErrNoContextFound, start)
		return ans
	}

	// Checked after retrieval: callers still learn whether context
	// exists even when the model is down.
	if err := s.synthesizer.Available(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Generation provider unavailable")
		return s.terminalAnswer(req.Question, qc.Intent, models.ErrGenerationUnavailable, start)
	}

	contextBlock, included := s.assembler.Assemble(docs, req.NumContextDocs)
	if len(included) == 0 {
		return s.terminalAnswer(req.Question, qc.Intent, models.ErrNoContextFound, start)
	}

	resp, err := s.synthesizer.Synthesize(ctx, req.Question, contextBlock, req.Temperature, req.MaxTokens)
	if err != nil {
		s.logger.Error().Err(err).Msg("Answer generation failed")
		return s.terminalAnswer(req.Question, qc.Intent, models.ErrGenerationUnavailable, start)
	}

	extracted := s.extractor.Extract(resp.Text, included)
	confidence := s.scorer.Score(resp.Text, extracted, included, qc.IntentConfidence)

	ans = &models.Answer{
		ID:               common.NewAnswerID(),
		Question:         req.Question,
		Answer:           resp.Text,
		Citations:        extracted,
		ConfidenceScore:  confidence,
		SourceDocuments:  included,
		Intent:           qc.Intent,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Metadata: map[string]string{
			models.MetaMethod:   string(tier),
			models.MetaProvider: string(resp.Provider),
		},
	}

	if req.CacheEnabled() {
		s.cache.Set(cacheKey, ans, 0)
	}

	s.logger.Info().
		Str("tier", string(tier)).
		Float64("confidence", confidence).
		Int("citations", len(extracted)).
		Int64("duration_ms", ans.ProcessingTimeMs).
		Msg("Question answered")

	return ans
}

// Search is the retrieval-only operation: no generation, no caching.
func (s *Service) Search(ctx context.Context, req *interfaces.SearchRequest) ([]*models.Document, models.TierSource) {
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid search request")
		return nil, models.TierNone
	}

	qc := s.parser.Parse(ctx, req.Query)
	qc.Filters = mergeFilters(qc.Filters, req.Filters)

	return s.retriever.Retrieve(ctx, qc, req.Limit)
}

// ClearCache drops every cached answer
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.logger.Info().Msg("Answer cache cleared")
}

// CacheStats reports answer cache statistics
func (s *Service) CacheStats() models.CacheStats {
	return s.cache.Stats()
}

// HealthCheck aggregates component health
func (s *Service) HealthCheck(ctx context.Context) models.HealthReport {
	report := models.HealthReport{
		Status:     "ok",
		Components: make(map[string]models.ComponentStatus),
	}

	record := func(name string, err error) {
		if err != nil {
			report.Status = "degraded"
			report.Components[name] = models.ComponentStatus{Status: "error", Detail: err.Error()}
			return
		}
		report.Components[name] = models.ComponentStatus{Status: "ok"}
	}

	if s.storage != nil {
		docs := s.storage.DocumentStorage()
		if err := docs.Ping(ctx); err != nil {
			record("sqlite", err)
		} else if count, err := docs.CountDocuments(); err != nil {
			record("sqlite", err)
		} else {
			report.Components["sqlite"] = models.ComponentStatus{
				Status: "ok",
				Detail: fmt.Sprintf("%d documents", count),
			}
		}
	}
	record("generation", s.synthesizer.Available(ctx))
	report.Components["cache"] = models.ComponentStatus{
		Status: "ok",
		Detail: fmt.Sprintf("%d entries", s.cache.Stats().TotalEntries),
	}

	for name, probe := range s.probes {
		record(name, probe(ctx))
	}

	return report
}

// terminalAnswer builds the no-context / generation-unavailable shape:
// zero confidence, no source documents, a distinct metadata.error value.
func (s *Service) terminalAnswer(question, intent, errValue string, start time.Time) *models.Answer {
	return &models.Answer{
		ID:               common.NewAnswerID(),
		Question:         question,
		Answer:           "",
		Citations:        []models.Citation{},
		ConfidenceScore:  0,
		SourceDocuments:  []*models.Document{},
		Intent:           intent,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Metadata: map[string]string{
			models.MetaMethod: string(models.TierNone),
			models.MetaError:  errValue,
		},
	}
}

// failedAnswer is the catch-all shape for validation failures and panics.
func (s *Service) failedAnswer(question, intent, detail string, start time.Time) *models.Answer {
	return &models.Answer{
		ID:               common.NewAnswerID(),
		Question:         question,
		Citations:        []models.Citation{},
		ConfidenceScore:  0,
		SourceDocuments:  []*models.Document{},
		Intent:           intent,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Metadata: map[string]string{
			models.MetaMethod: string(models.TierNone),
			models.MetaError:  detail,
		},
	}
}

// cachedCopy returns the cached answer marked as a hit. The stored
// value is never mutated; answer text, citations, and confidence are
// identical to the original write, with method remapped to "cache".
func cachedCopy(cached *models.Answer, start time.Time) *models.Answer {
	copied := *cached
	copied.Cached = true
	copied.ProcessingTimeMs = time.Since(start).Milliseconds()

	metadata := make(map[string]string, len(cached.Metadata))
	for k, v := range cached.Metadata {
		metadata[k] = v
	}
	metadata[models.MetaMethod] = "cache"
	copied.Metadata = metadata

	return &copied
}

// mergeFilters overlays request filters on parsed filters; an explicit
// request filter replaces whatever the parser extracted for that key.
func mergeFilters(parsed, requested map[string][]string) map[string][]string {
	if len(requested) == 0 {
		return parsed
	}

	merged := make(map[string][]string, len(parsed)+len(requested))
	for k, v := range parsed {
		merged[k] = v
	}
	for k, v := range requested {
		if len(v) > 0 {
			merged[k] = v
		}
	}
	return merged
}
