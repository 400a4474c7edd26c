package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// DocumentStorage implements interfaces.DocumentStorage on SQLite with an
// FTS5 index. Searches rank with bm25 (title weighted over body) and map
// the rank onto a [0,1) relevance score.
type DocumentStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a SQLite-backed document storage
func NewDocumentStorage(db *SQLiteDB, logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDocument inserts or replaces a document. The FTS index follows via
// triggers.
func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	programs, err := json.Marshal(doc.Programs)
	if err != nil {
		return fmt.Errorf("failed to marshal programs: %w", err)
	}

	_, err = s.db.DB().Exec(`
		INSERT INTO documents (id, title, content, citation, section_number, jurisdiction, programs, language, document_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			citation = excluded.citation,
			section_number = excluded.section_number,
			jurisdiction = excluded.jurisdiction,
			programs = excluded.programs,
			language = excluded.language,
			document_type = excluded.document_type`,
		doc.ID, doc.Title, doc.Content, doc.Citation, doc.SectionNumber,
		doc.Jurisdiction, string(programs), doc.Language, string(doc.DocumentType))
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// GetDocument returns the document with the given ID, or nil if not found
func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	row := s.db.DB().QueryRow(`
		SELECT id, title, content, citation, section_number, jurisdiction, programs, language, document_type
		FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// FullTextSearch runs an FTS5 match with optional metadata filters.
// Results carry a bm25-derived score in [0,1) and are ordered best-first.
func (s *DocumentStorage) FullTextSearch(q interfaces.FullTextQuery) ([]*models.Document, error) {
	match := sanitizeFTSQuery(q.Query)
	if match == "" {
		return []*models.Document{}, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	// Title matches weigh 5x body, citation 2x.
	query := `
		SELECT d.id, d.title, d.content, d.citation, d.section_number, d.jurisdiction, d.programs, d.language, d.document_type,
			bm25(documents_fts, 5.0, 1.0, 2.0) AS rank
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ?`
	args := []interface{}{match}

	if q.Language != "" {
		query += " AND d.language = ?"
		args = append(args, q.Language)
	}
	if q.Jurisdiction != "" {
		query += " AND d.jurisdiction = ?"
		args = append(args, q.Jurisdiction)
	}
	if q.Program != "" {
		// Programs is a JSON array of strings; match the quoted element.
		query += " AND d.programs LIKE ?"
		args = append(args, `%"`+q.Program+`"%`)
	}

	query += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		var programs string
		var docType string
		var rank float64

		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Citation, &doc.SectionNumber,
			&doc.Jurisdiction, &programs, &doc.Language, &docType, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		if err := json.Unmarshal([]byte(programs), &doc.Programs); err != nil {
			doc.Programs = nil
		}
		doc.DocumentType = models.DocumentType(docType)
		doc.Score = bm25ToScore(rank)
		doc.TierSource = models.TierFullText

		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search iteration failed: %w", err)
	}

	return docs, nil
}

// CountDocuments returns the total number of indexed documents
func (s *DocumentStorage) CountDocuments() (int, error) {
	var count int
	if err := s.db.DB().QueryRow("SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Ping verifies the underlying connection is alive
func (s *DocumentStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the underlying connection
func (s *DocumentStorage) Close() error {
	return s.db.Close()
}

// sanitizeFTSQuery quotes each token so user punctuation cannot be
// interpreted as FTS5 query syntax.
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}

// bm25ToScore maps SQLite's bm25 rank (lower is better, typically
// negative) onto [0,1) where higher is better.
func bm25ToScore(rank float64) float64 {
	relevance := -rank
	if relevance < 0 {
		relevance = 0
	}
	return relevance / (relevance + 1)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var programs string
	var docType string

	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Citation, &doc.SectionNumber,
		&doc.Jurisdiction, &programs, &doc.Language, &docType); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(programs), &doc.Programs); err != nil {
		doc.Programs = nil
	}
	doc.DocumentType = models.DocumentType(docType)
	return &doc, nil
}
