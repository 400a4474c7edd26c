package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// Orchestrator queries the retrieval tiers in strict priority order and
// returns the first tier's non-empty result set. Tiers are never merged:
// each tier's scores are internally consistent but not comparable across
// backends. A failing tier is logged and treated as empty.
type Orchestrator struct {
	tiers        []interfaces.TierAdapter
	desiredCount int
	tierTimeout  time.Duration
	minScore     float64
	logger       arbor.ILogger
}

// NewOrchestrator creates a tier orchestrator. Tier order is priority
// order; the slice is queried front to back.
func NewOrchestrator(tiers []interfaces.TierAdapter, config *common.RetrievalConfig, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		tiers:        tiers,
		desiredCount: config.DesiredCount,
		tierTimeout:  common.ParseDuration(config.TierTimeout, 5*time.Second),
		minScore:     config.MinTierScore,
		logger:       logger,
	}
}

// Retrieve returns the winning tier's documents sorted by score
// descending, and the tier they came from. All tiers empty (or failed)
// returns an empty slice with TierNone.
func (o *Orchestrator) Retrieve(ctx context.Context, qc models.QueryContext, limit int) ([]*models.Document, models.TierSource) {
	if limit <= 0 {
		limit = o.desiredCount
	}

	for _, tier := range o.tiers {
		if ctx.Err() != nil {
			o.logger.Warn().Str("tier", string(tier.Name())).Msg("Retrieval aborted by caller deadline")
			return nil, models.TierNone
		}

		tierCtx, cancel := context.WithTimeout(ctx, o.tierTimeout)
		result := tier.Retrieve(tierCtx, qc, limit)
		cancel()

		switch result.State {
		case models.TierStateErr:
			// Failed tiers degrade to empty so lower tiers still run.
			o.logger.Warn().Err(result.Err).Str("tier", string(tier.Name())).Msg("Tier failed, trying next")
			continue
		case models.TierStateEmpty:
			o.logger.Debug().Str("tier", string(tier.Name())).Msg("Tier returned no documents")
			continue
		}

		docs := result.Docs
		if o.minScore > 0 {
			docs = filterByScore(docs, o.minScore)
			if len(docs) == 0 {
				o.logger.Debug().Str("tier", string(tier.Name())).Msg("Tier results below score floor")
				continue
			}
		}

		sort.SliceStable(docs, func(i, j int) bool {
			return docs[i].Score > docs[j].Score
		})
		if len(docs) > limit {
			docs = docs[:limit]
		}

		o.logger.Info().
			Str("tier", string(tier.Name())).
			Int("count", len(docs)).
			Msg("Tier satisfied retrieval")
		return docs, tier.Name()
	}

	return nil, models.TierNone
}

func filterByScore(docs []*models.Document, minScore float64) []*models.Document {
	kept := docs[:0:0]
	for _, doc := range docs {
		if doc.Score >= minScore {
			kept = append(kept, doc)
		}
	}
	return kept
}
