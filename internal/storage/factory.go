package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/storage/badger"
	"github.com/ternarybob/respondeo/internal/storage/sqlite"
)

// Manager owns the document (SQLite FTS) and metadata (Badger) stores.
type Manager struct {
	documents *sqlite.DocumentStorage
	metadata  *badger.MetadataStorage
	logger    arbor.ILogger
}

// NewStorageManager opens both storage backends from config
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	sqliteDB, err := sqlite.NewSQLiteDB(logger, &config.Storage.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
	}

	badgerDB, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("failed to open badger storage: %w", err)
	}

	return &Manager{
		documents: sqlite.NewDocumentStorage(sqliteDB, logger),
		metadata:  badger.NewMetadataStorage(badgerDB, logger),
		logger:    logger,
	}, nil
}

// DocumentStorage returns the relational full-text store
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.documents
}

// MetadataStorage returns the metadata store
func (m *Manager) MetadataStorage() interfaces.MetadataStorage {
	return m.metadata
}

// Close closes all storage backends
func (m *Manager) Close() error {
	var firstErr error
	if err := m.documents.Close(); err != nil {
		firstErr = err
	}
	if err := m.metadata.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
