package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MetadataStorage implements interfaces.MetadataStorage on badgerhold.
// It serves the metadata-only retrieval tier: lookups by jurisdiction,
// program, language, and document type with no text matching, so every
// match carries the same fixed low score.
type MetadataStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// metadataMatchScore is assigned to every metadata-only result; the tier
// has no relevance signal of its own.
const metadataMatchScore = 0.3

// NewMetadataStorage creates a badger-backed metadata storage
func NewMetadataStorage(db *BadgerDB, logger arbor.ILogger) *MetadataStorage {
	return &MetadataStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDocument upserts a document into the metadata store
func (s *MetadataStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// MetadataSearch returns documents matching every non-empty field of the
// query, ordered by ID for deterministic output, capped at q.Limit.
func (s *MetadataStorage) MetadataSearch(q interfaces.MetadataQuery) ([]*models.Document, error) {
	query := buildQuery(q)

	var results []models.Document
	if err := s.db.Store().Find(&results, query); err != nil {
		return nil, fmt.Errorf("metadata search failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(results) > limit {
		results = results[:limit]
	}

	docs := make([]*models.Document, 0, len(results))
	for i := range results {
		doc := results[i]
		doc.Score = metadataMatchScore
		doc.TierSource = models.TierMetadata
		docs = append(docs, &doc)
	}
	return docs, nil
}

// Close closes the underlying connection
func (s *MetadataStorage) Close() error {
	return s.db.Close()
}

func buildQuery(q interfaces.MetadataQuery) *badgerhold.Query {
	var query *badgerhold.Query

	and := func(field string, value interface{}) {
		if query == nil {
			query = badgerhold.Where(field).Eq(value)
		} else {
			query = query.And(field).Eq(value)
		}
	}

	if q.Jurisdiction != "" {
		and("Jurisdiction", q.Jurisdiction)
	}
	if q.Language != "" {
		and("Language", q.Language)
	}
	if q.DocumentType != "" {
		and("DocumentType", q.DocumentType)
	}
	if q.Program != "" {
		if query == nil {
			query = badgerhold.Where("Programs").Contains(q.Program)
		} else {
			query = query.And("Programs").Contains(q.Program)
		}
	}

	if query == nil {
		// No filters: match everything (the caller caps the result count).
		query = badgerhold.Where("ID").Ne("")
	}
	return query
}
