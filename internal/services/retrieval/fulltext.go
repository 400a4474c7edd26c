package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// FullTextTier runs a relational FTS5 search over the document store.
// It takes at most one value per filter key; the FTS backend does not
// support disjunctive metadata filters.
type FullTextTier struct {
	storage interfaces.DocumentStorage
	logger  arbor.ILogger
}

// NewFullTextTier creates the SQLite-backed full-text retrieval tier
func NewFullTextTier(storage interfaces.DocumentStorage, logger arbor.ILogger) *FullTextTier {
	return &FullTextTier{
		storage: storage,
		logger:  logger,
	}
}

// Name identifies this tier in TierSource attribution
func (t *FullTextTier) Name() models.TierSource {
	return models.TierFullText
}

// Retrieve runs the FTS query with the first value of each filter key
func (t *FullTextTier) Retrieve(ctx context.Context, qc models.QueryContext, limit int) models.TierResult {
	if err := ctx.Err(); err != nil {
		return models.TierFailure(err)
	}

	docs, err := t.storage.FullTextSearch(interfaces.FullTextQuery{
		Query:        qc.Normalized,
		Limit:        limit,
		Language:     qc.FirstFilter(models.FilterLanguage),
		Jurisdiction: qc.FirstFilter(models.FilterJurisdiction),
		Program:      qc.FirstFilter(models.FilterProgram),
	})
	if err != nil {
		return models.TierFailure(fmt.Errorf("full-text search failed: %w", err))
	}

	for _, doc := range docs {
		doc.Content = models.TruncateContent(doc.Content)
	}
	return models.TierOK(docs)
}
