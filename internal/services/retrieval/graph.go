package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/httpclient"
	"github.com/ternarybob/respondeo/internal/models"
)

// GraphTier queries an external graph engine over HTTP. The engine walks
// entity relationships extracted from the corpus and returns documents
// reachable from entities mentioned in the question.
type GraphTier struct {
	baseURL string
	client  *http.Client
	logger  arbor.ILogger
}

type graphSearchRequest struct {
	Query   string              `json:"query"`
	Filters map[string][]string `json:"filters,omitempty"`
	Limit   int                 `json:"limit"`
}

type graphSearchResponse struct {
	Documents []graphDocument `json:"documents"`
}

type graphDocument struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Citation      string   `json:"citation"`
	SectionNumber string   `json:"section_number"`
	Jurisdiction  string   `json:"jurisdiction"`
	Programs      []string `json:"programs"`
	Language      string   `json:"language"`
	DocumentType  string   `json:"document_type"`
	Score         float64  `json:"score"`
}

// NewGraphTier creates the graph-engine retrieval tier
func NewGraphTier(config *common.GraphConfig, logger arbor.ILogger) *GraphTier {
	timeout := common.ParseDuration(config.Timeout, 5*time.Second)
	return &GraphTier{
		baseURL: config.URL,
		client:  httpclient.NewDefaultHTTPClient(timeout),
		logger:  logger,
	}
}

// Name identifies this tier in TierSource attribution
func (t *GraphTier) Name() models.TierSource {
	return models.TierGraph
}

// Ready reports whether the graph engine answers its health endpoint
func (t *GraphTier) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build graph health request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graph engine unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Retrieve posts the query to the graph engine's search endpoint
func (t *GraphTier) Retrieve(ctx context.Context, qc models.QueryContext, limit int) models.TierResult {
	body, err := json.Marshal(graphSearchRequest{
		Query:   qc.Normalized,
		Filters: qc.Filters,
		Limit:   limit,
	})
	if err != nil {
		return models.TierFailure(fmt.Errorf("failed to marshal graph request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/graph/search", bytes.NewReader(body))
	if err != nil {
		return models.TierFailure(fmt.Errorf("failed to build graph request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return models.TierFailure(fmt.Errorf("graph search failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.TierFailure(fmt.Errorf("graph engine returned status %d: %s", resp.StatusCode, string(snippet)))
	}

	var parsed graphSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.TierFailure(fmt.Errorf("failed to decode graph response: %w", err))
	}

	docs := make([]*models.Document, 0, len(parsed.Documents))
	for _, gd := range parsed.Documents {
		doc := &models.Document{
			ID:            gd.ID,
			Title:         gd.Title,
			Content:       gd.Content,
			Citation:      gd.Citation,
			SectionNumber: gd.SectionNumber,
			Jurisdiction:  gd.Jurisdiction,
			Programs:      gd.Programs,
			Language:      gd.Language,
			DocumentType:  models.DocumentType(gd.DocumentType),
			Score:         clampScore(gd.Score),
			TierSource:    models.TierGraph,
		}
		doc.Content = models.TruncateContent(doc.Content)
		docs = append(docs, doc)
	}

	return models.TierOK(docs)
}
