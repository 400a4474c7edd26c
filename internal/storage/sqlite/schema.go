package sqlite

import "fmt"

// migrate creates the documents table and its FTS5 index.
// The FTS5 table is an external-content index over documents; triggers
// keep it synchronized on insert, update, and delete.
func (s *SQLiteDB) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			citation TEXT NOT NULL DEFAULT '',
			section_number TEXT NOT NULL DEFAULT '',
			jurisdiction TEXT NOT NULL DEFAULT '',
			programs TEXT NOT NULL DEFAULT '[]',
			language TEXT NOT NULL DEFAULT 'en',
			document_type TEXT NOT NULL DEFAULT 'regulation',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_jurisdiction ON documents(jurisdiction)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_language ON documents(language)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			title,
			content,
			citation,
			content='documents',
			content_rowid='rowid'
		)`,
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO documents_fts(rowid, title, content, citation)
			VALUES (new.rowid, new.title, new.content, new.citation);
		END`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, content, citation)
			VALUES ('delete', old.rowid, old.title, old.content, old.citation);
		END`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
			INSERT INTO documents_fts(documents_fts, rowid, title, content, citation)
			VALUES ('delete', old.rowid, old.title, old.content, old.citation);
			INSERT INTO documents_fts(rowid, title, content, citation)
			VALUES (new.rowid, new.title, new.content, new.citation);
		END`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
