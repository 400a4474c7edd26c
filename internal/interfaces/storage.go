package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// FullTextQuery parameterizes a relational full-text search.
type FullTextQuery struct {
	Query        string
	Limit        int
	Language     string
	Jurisdiction string
	Program      string
}

// MetadataQuery parameterizes a metadata-only lookup (no text matching).
type MetadataQuery struct {
	Jurisdiction string
	Program      string
	Language     string
	DocumentType models.DocumentType
	Limit        int
}

// DocumentStorage is the relational (SQLite FTS5) document store consumed
// by the full-text tier. Documents are indexed by an external ingestion
// pipeline; this core reads, and writes only in tests and seed tooling.
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	FullTextSearch(q FullTextQuery) ([]*models.Document, error)
	CountDocuments() (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// MetadataStorage is the badgerhold-backed metadata store consumed by the
// metadata-only tier.
type MetadataStorage interface {
	SaveDocument(doc *models.Document) error
	MetadataSearch(q MetadataQuery) ([]*models.Document, error)
	Close() error
}

// StorageManager aggregates the storage backends owned by this process.
type StorageManager interface {
	DocumentStorage() DocumentStorage
	MetadataStorage() MetadataStorage
	Close() error
}
