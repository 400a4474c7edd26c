package retrieval

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	wmodels "github.com/weaviate/weaviate/entities/models"
)

// HybridTier is the highest-priority retrieval tier. It runs a Weaviate
// hybrid (lexical+vector) query against the document class and maps the
// hybrid score directly onto Document.Score.
type HybridTier struct {
	client *weaviate.Client
	class  string
	alpha  float32
	logger arbor.ILogger
}

// NewHybridTier creates the Weaviate-backed hybrid search tier
func NewHybridTier(config *common.WeaviateConfig, logger arbor.ILogger) (*HybridTier, error) {
	cfg := weaviate.Config{
		Host:   config.Host,
		Scheme: config.Scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: config.APIKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &HybridTier{
		client: client,
		class:  config.Class,
		alpha:  config.Alpha,
		logger: logger,
	}, nil
}

// Name identifies this tier in TierSource attribution
func (t *HybridTier) Name() models.TierSource {
	return models.TierHybrid
}

// Ready reports whether the Weaviate backend is reachable
func (t *HybridTier) Ready(ctx context.Context) error {
	ready, err := t.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate unreachable: %w", err)
	}
	if !ready {
		return fmt.Errorf("weaviate reports not ready")
	}
	return nil
}

// Retrieve runs a hybrid query with the context's filters applied as a
// where clause. Backend failures return an Err result; the orchestrator
// decides how to proceed.
func (t *HybridTier) Retrieve(ctx context.Context, qc models.QueryContext, limit int) models.TierResult {
	fields := []graphql.Field{
		{Name: "docId"},
		{Name: "title"},
		{Name: "content"},
		{Name: "citation"},
		{Name: "sectionNumber"},
		{Name: "jurisdiction"},
		{Name: "programs"},
		{Name: "language"},
		{Name: "documentType"},
		{Name: "_additional { score }"},
	}

	hybrid := t.client.GraphQL().HybridArgumentBuilder().
		WithQuery(qc.Normalized).
		WithAlpha(t.alpha)

	query := t.client.GraphQL().Get().
		WithClassName(t.class).
		WithFields(fields...).
		WithHybrid(hybrid).
		WithLimit(limit)

	if where := buildWhereFilter(qc.Filters); where != nil {
		query = query.WithWhere(where)
	}

	result, err := query.Do(ctx)
	if err != nil {
		return models.TierFailure(fmt.Errorf("hybrid search failed: %w", err))
	}
	if len(result.Errors) > 0 {
		return models.TierFailure(fmt.Errorf("hybrid search error: %s", result.Errors[0].Message))
	}

	docs := t.parseResults(result)
	return models.TierOK(docs)
}

func (t *HybridTier) parseResults(result *wmodels.GraphQLResponse) []*models.Document {
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	objects, ok := data[t.class].([]interface{})
	if !ok {
		return nil
	}

	docs := make([]*models.Document, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue // skip malformed objects
		}

		doc := &models.Document{
			ID:            getString(m, "docId"),
			Title:         getString(m, "title"),
			Content:       getString(m, "content"),
			Citation:      getString(m, "citation"),
			SectionNumber: getString(m, "sectionNumber"),
			Jurisdiction:  getString(m, "jurisdiction"),
			Programs:      getStringSlice(m, "programs"),
			Language:      getString(m, "language"),
			DocumentType:  models.DocumentType(getString(m, "documentType")),
			TierSource:    models.TierHybrid,
		}

		if additional, ok := m["_additional"].(map[string]interface{}); ok {
			doc.Score = clampScore(additionalScore(additional))
		}

		doc.Content = models.TruncateContent(doc.Content)
		docs = append(docs, doc)
	}
	return docs
}

// buildWhereFilter translates the query filter set into a Weaviate where
// clause; multiple values for one key are OR'd, keys are AND'd.
func buildWhereFilter(filterSet map[string][]string) *filters.WhereBuilder {
	paths := map[string]string{
		models.FilterJurisdiction: "jurisdiction",
		models.FilterProgram:      "programs",
		models.FilterLanguage:     "language",
	}

	var operands []*filters.WhereBuilder
	for key, path := range paths {
		values := filterSet[key]
		if len(values) == 0 {
			continue
		}

		if len(values) == 1 {
			operands = append(operands, filters.Where().
				WithPath([]string{path}).
				WithOperator(filters.Equal).
				WithValueText(values[0]))
			continue
		}

		alternatives := make([]*filters.WhereBuilder, 0, len(values))
		for _, v := range values {
			alternatives = append(alternatives, filters.Where().
				WithPath([]string{path}).
				WithOperator(filters.Equal).
				WithValueText(v))
		}
		operands = append(operands, filters.Where().
			WithOperator(filters.Or).
			WithOperands(alternatives))
	}

	if len(operands) == 0 {
		return nil
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return filters.Where().
		WithOperator(filters.And).
		WithOperands(operands)
}

// additionalScore reads the hybrid score, which Weaviate returns as a
// string for hybrid queries and a float for others.
func additionalScore(additional map[string]interface{}) float64 {
	switch v := additional["score"].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getStringSlice(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}
