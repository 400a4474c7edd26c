package interfaces

import (
	"context"

	"github.com/ternarybob/respondeo/internal/models"
)

// QueryParser turns a raw question into a QueryContext: normalized text,
// detected intent with confidence, and a retrieval filter set
// (jurisdiction, program, language). Parsing must not fail the pipeline;
// implementations fall back to heuristics when the external NLP service
// is unreachable.
type QueryParser interface {
	Parse(ctx context.Context, question string) models.QueryContext
}
