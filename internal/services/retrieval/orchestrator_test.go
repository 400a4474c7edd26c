package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

type mockTier struct {
	name   models.TierSource
	result models.TierResult
	calls  int
}

func (m *mockTier) Name() models.TierSource {
	return m.name
}

func (m *mockTier) Retrieve(ctx context.Context, qc models.QueryContext, limit int) models.TierResult {
	m.calls++
	return m.result
}

func doc(id string, score float64) *models.Document {
	return &models.Document{ID: id, Title: "Doc " + id, Content: "content", Score: score}
}

func newTestOrchestrator(tiers ...interfaces.TierAdapter) *Orchestrator {
	return NewOrchestrator(tiers, &common.RetrievalConfig{
		DesiredCount: 10,
		TierTimeout:  "1s",
	}, common.GetLogger())
}

func TestRetrieve_FirstNonEmptyTierWins(t *testing.T) {
	tier1 := &mockTier{name: models.TierHybrid, result: models.TierOK([]*models.Document{doc("a", 0.9)})}
	tier2 := &mockTier{name: models.TierGraph, result: models.TierOK([]*models.Document{doc("b", 0.8)})}

	docs, source := newTestOrchestrator(tier1, tier2).Retrieve(context.Background(), models.QueryContext{}, 10)

	assert.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, models.TierHybrid, source)
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 0, tier2.calls, "lower tiers must not be queried once a tier succeeds")
}

func TestRetrieve_EmptyTierFallsThrough(t *testing.T) {
	tier1 := &mockTier{name: models.TierHybrid, result: models.TierEmpty()}
	tier2 := &mockTier{name: models.TierGraph, result: models.TierOK([]*models.Document{doc("b", 0.8)})}

	docs, source := newTestOrchestrator(tier1, tier2).Retrieve(context.Background(), models.QueryContext{}, 10)

	assert.Len(t, docs, 1)
	assert.Equal(t, models.TierGraph, source)
	assert.Equal(t, 1, tier1.calls)
}

func TestRetrieve_FailedTierTreatedAsEmpty(t *testing.T) {
	tier1 := &mockTier{name: models.TierHybrid, result: models.TierFailure(errors.New("connection refused"))}
	tier2 := &mockTier{name: models.TierFullText, result: models.TierOK([]*models.Document{doc("c", 0.5)})}

	docs, source := newTestOrchestrator(tier1, tier2).Retrieve(context.Background(), models.QueryContext{}, 10)

	assert.Len(t, docs, 1)
	assert.Equal(t, models.TierFullText, source)
}

func TestRetrieve_AllTiersEmpty(t *testing.T) {
	tier1 := &mockTier{name: models.TierHybrid, result: models.TierEmpty()}
	tier2 := &mockTier{name: models.TierMetadata, result: models.TierFailure(errors.New("down"))}

	docs, source := newTestOrchestrator(tier1, tier2).Retrieve(context.Background(), models.QueryContext{}, 10)

	assert.Empty(t, docs)
	assert.Equal(t, models.TierNone, source)
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 1, tier2.calls)
}

func TestRetrieve_SortsByScoreDescending(t *testing.T) {
	tier := &mockTier{name: models.TierHybrid, result: models.TierOK([]*models.Document{
		doc("low", 0.2), doc("high", 0.9), doc("mid", 0.5),
	})}

	docs, _ := newTestOrchestrator(tier).Retrieve(context.Background(), models.QueryContext{}, 10)

	assert.Equal(t, []string{"high", "mid", "low"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
}

func TestRetrieve_CapsAtLimit(t *testing.T) {
	tier := &mockTier{name: models.TierHybrid, result: models.TierOK([]*models.Document{
		doc("a", 0.9), doc("b", 0.8), doc("c", 0.7),
	})}

	docs, _ := newTestOrchestrator(tier).Retrieve(context.Background(), models.QueryContext{}, 2)

	assert.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
}

func TestRetrieve_ScoreFloorDisabledByDefault(t *testing.T) {
	tier := &mockTier{name: models.TierHybrid, result: models.TierOK([]*models.Document{doc("weak", 0.01)})}

	docs, source := newTestOrchestrator(tier).Retrieve(context.Background(), models.QueryContext{}, 10)

	assert.Len(t, docs, 1)
	assert.Equal(t, models.TierHybrid, source)
}

func TestRetrieve_ScoreFloorFallsThrough(t *testing.T) {
	tier1 := &mockTier{name: models.TierHybrid, result: models.TierOK([]*models.Document{doc("weak", 0.1)})}
	tier2 := &mockTier{name: models.TierGraph, result: models.TierOK([]*models.Document{doc("strong", 0.8)})}

	o := NewOrchestrator([]interfaces.TierAdapter{tier1, tier2}, &common.RetrievalConfig{
		DesiredCount: 10,
		TierTimeout:  "1s",
		MinTierScore: 0.5,
	}, common.GetLogger())

	docs, source := o.Retrieve(context.Background(), models.QueryContext{}, 10)

	assert.Len(t, docs, 1)
	assert.Equal(t, "strong", docs[0].ID)
	assert.Equal(t, models.TierGraph, source)
}

func TestRetrieve_CancelledContextAborts(t *testing.T) {
	tier := &mockTier{name: models.TierHybrid, result: models.TierOK([]*models.Document{doc("a", 0.9)})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs, source := newTestOrchestrator(tier).Retrieve(ctx, models.QueryContext{}, 10)

	assert.Empty(t, docs)
	assert.Equal(t, models.TierNone, source)
	assert.Equal(t, 0, tier.calls)
}
