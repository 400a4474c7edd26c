package answer

import (
	"context"
	"sync"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// AnswerBatch answers several questions concurrently under a bounded
// worker pool. Concurrency stays low because every question may reach
// the rate-limited generation backend. Results are returned in question
// order.
func (s *Service) AnswerBatch(ctx context.Context, req *interfaces.BatchRequest) []*models.Answer {
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid batch request")
		return nil
	}

	workers := s.config.Batch.AnswerWorkers
	if workers <= 0 {
		workers = 2
	}
	if workers > len(req.Questions) {
		workers = len(req.Questions)
	}

	s.logger.Info().
		Int("questions", len(req.Questions)).
		Int("workers", workers).
		Msg("Starting batch answering")

	answers := make([]*models.Answer, len(req.Questions))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				answers[idx] = s.AnswerQuestion(ctx, &interfaces.AnswerRequest{
					Question: req.Questions[idx],
					Filters:  req.Filters,
					UseCache: req.UseCache,
				})
			}
		}()
	}

	for idx := range req.Questions {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return answers
}

// SearchBatch runs several retrieval-only queries concurrently. No
// generation happens, so the pool is wider than the answer pool.
// Results are returned in query order.
func (s *Service) SearchBatch(ctx context.Context, req *interfaces.BatchSearchRequest) []*interfaces.SearchResult {
	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid batch search request")
		return nil
	}

	workers := s.config.Batch.SearchWorkers
	if workers <= 0 {
		workers = 8
	}
	if workers > len(req.Queries) {
		workers = len(req.Queries)
	}

	s.logger.Info().
		Int("queries", len(req.Queries)).
		Int("workers", workers).
		Msg("Starting batch search")

	results := make([]*interfaces.SearchResult, len(req.Queries))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				docs, tier := s.Search(ctx, &interfaces.SearchRequest{
					Query:   req.Queries[idx],
					Filters: req.Filters,
					Limit:   req.Limit,
				})
				if docs == nil {
					docs = []*models.Document{}
				}
				results[idx] = &interfaces.SearchResult{
					Query:     req.Queries[idx],
					Tier:      tier,
					Documents: docs,
				}
			}
		}()
	}

	for idx := range req.Queries {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return results
}
