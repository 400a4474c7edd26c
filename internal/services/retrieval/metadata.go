package retrieval

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// MetadataTier is the last-resort tier: it ignores the question text and
// looks up documents purely by the extracted filters. With no filters at
// all it returns empty rather than dumping the corpus.
type MetadataTier struct {
	storage interfaces.MetadataStorage
	logger  arbor.ILogger
}

// NewMetadataTier creates the badger-backed metadata retrieval tier
func NewMetadataTier(storage interfaces.MetadataStorage, logger arbor.ILogger) *MetadataTier {
	return &MetadataTier{
		storage: storage,
		logger:  logger,
	}
}

// Name identifies this tier in TierSource attribution
func (t *MetadataTier) Name() models.TierSource {
	return models.TierMetadata
}

// Retrieve looks up documents by filter metadata only
func (t *MetadataTier) Retrieve(ctx context.Context, qc models.QueryContext, limit int) models.TierResult {
	if err := ctx.Err(); err != nil {
		return models.TierFailure(err)
	}

	query := interfaces.MetadataQuery{
		Jurisdiction: qc.FirstFilter(models.FilterJurisdiction),
		Program:      qc.FirstFilter(models.FilterProgram),
		Language:     qc.FirstFilter(models.FilterLanguage),
		Limit:        limit,
	}
	if query.Jurisdiction == "" && query.Program == "" && query.Language == "" {
		return models.TierEmpty()
	}

	docs, err := t.storage.MetadataSearch(query)
	if err != nil {
		return models.TierFailure(fmt.Errorf("metadata search failed: %w", err))
	}

	for _, doc := range docs {
		doc.Content = models.TruncateContent(doc.Content)
	}
	return models.TierOK(docs)
}
