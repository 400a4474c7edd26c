package queryparse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/httpclient"
	"github.com/ternarybob/respondeo/internal/models"
)

// Parser builds a QueryContext from a raw question. It calls an external
// NLP parser when one is configured and falls back to local heuristics
// when the call fails; parsing never fails the pipeline.
type Parser struct {
	parserURL string
	client    *http.Client
	logger    arbor.ILogger
}

// parseResponse is the external parser's wire format.
type parseResponse struct {
	Intent           string              `json:"intent"`
	IntentConfidence float64             `json:"intent_confidence"`
	Filters          map[string][]string `json:"filters"`
}

// NewParser creates a query parser from config. An empty parser URL
// means heuristic-only parsing.
func NewParser(config *common.ParserConfig, logger arbor.ILogger) *Parser {
	timeout := common.ParseDuration(config.Timeout, 3*time.Second)
	return &Parser{
		parserURL: config.URL,
		client:    httpclient.NewDefaultHTTPClient(timeout),
		logger:    logger,
	}
}

// Parse returns a QueryContext for the question. The raw question is
// preserved verbatim; normalization only affects matching and cache keys.
func (p *Parser) Parse(ctx context.Context, question string) models.QueryContext {
	qc := models.QueryContext{
		RawQuestion: question,
		Normalized:  models.NormalizeQuestion(question),
	}

	if p.parserURL != "" {
		if resp, err := p.callParser(ctx, question); err == nil {
			qc.Intent = resp.Intent
			qc.IntentConfidence = resp.IntentConfidence
			qc.Filters = resp.Filters
			if qc.Filters == nil {
				qc.Filters = make(map[string][]string)
			}
			return qc
		} else {
			p.logger.Warn().Err(err).Msg("NLP parser unreachable, using heuristic classification")
		}
	}

	qc.Intent, qc.IntentConfidence = classifyIntent(question)
	qc.Filters = extractFilters(question)
	return qc
}

func (p *Parser) callParser(ctx context.Context, question string) (*parseResponse, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.parserURL+"/parse", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build parse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parser returned status %d", resp.StatusCode)
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parse response: %w", err)
	}
	return &parsed, nil
}
