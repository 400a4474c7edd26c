package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// TierAdapter wraps one retrieval backend behind a uniform contract.
// Adapters never propagate backend failures: internal errors are reported
// through the TierResult tag so the orchestrator can degrade explicitly.
type TierAdapter interface {
	// Name identifies the tier for logging and answer metadata.
	Name() models.TierSource

	// Retrieve queries the backend for documents matching the query
	// context. The returned documents carry backend-native scores
	// normalized to [0,1] and content truncated to models.MaxContentChars.
	// Implementations must honor ctx cancellation.
	Retrieve(ctx context.Context, qc models.QueryContext, limit int) models.TierResult
}

// Retriever is the tier orchestrator contract: try tiers in priority
// order and stop at the first one producing results.
type Retriever interface {
	// Retrieve returns the selected tier's documents (score-descending)
	// and the tier that produced them. An empty slice with TierNone means
	// every tier came back empty or failed.
	Retrieve(ctx context.Context, qc models.QueryContext, limit int) ([]*models.Document, models.TierSource)
}
