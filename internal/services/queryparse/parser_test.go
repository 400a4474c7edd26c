package queryparse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name     string
		question string
		intent   string
	}{
		{"eligibility", "Am I eligible for employment insurance?", IntentEligibility},
		{"eligibility who can apply", "Who can apply for parental leave benefits?", IntentEligibility},
		{"penalty", "What are the penalties for late filing?", IntentPenalty},
		{"penalty what happens if", "What happens if I miss the reporting deadline?", IntentPenalty},
		{"obligation", "Must an employer provide written notice?", IntentObligation},
		{"definition", "What is the meaning of insurable employment?", IntentDefinition},
		{"procedure", "How do I file an appeal?", IntentProcedure},
		{"general fallback", "Tell me about recent amendments", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, confidence := classifyIntent(tt.question)
			assert.Equal(t, tt.intent, intent)
			assert.Greater(t, confidence, 0.0)
			assert.LessOrEqual(t, confidence, 1.0)
		})
	}
}

func TestClassifyIntent_GeneralHasLowConfidence(t *testing.T) {
	_, general := classifyIntent("something entirely unrelated")
	_, specific := classifyIntent("am I eligible for benefits")
	assert.Less(t, general, specific)
}

func TestExtractFilters(t *testing.T) {
	filters := extractFilters("Am I eligible for employment insurance in Ontario?")

	assert.Equal(t, []string{"on"}, filters[models.FilterJurisdiction])
	assert.Equal(t, []string{"ei"}, filters[models.FilterProgram])
	assert.Empty(t, filters[models.FilterLanguage])
}

func TestExtractFilters_French(t *testing.T) {
	filters := extractFilters("Quelles sont les prestations disponibles?")
	assert.Equal(t, []string{"fr"}, filters[models.FilterLanguage])
}

func TestExtractFilters_NoMarkers(t *testing.T) {
	filters := extractFilters("What is insurable employment?")
	assert.Empty(t, filters)
}

func TestParse_HeuristicOnly(t *testing.T) {
	parser := NewParser(&common.ParserConfig{URL: ""}, common.GetLogger())

	qc := parser.Parse(context.Background(), "  Am I  Eligible for PENSION benefits? ")

	assert.Equal(t, "  Am I  Eligible for PENSION benefits? ", qc.RawQuestion)
	assert.Equal(t, "am i eligible for pension benefits?", qc.Normalized)
	assert.Equal(t, IntentEligibility, qc.Intent)
	assert.Equal(t, []string{"pension"}, qc.Filters[models.FilterProgram])
}

func TestParse_ExternalParser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/parse", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"intent":"eligibility","intent_confidence":0.93,"filters":{"jurisdiction":["on"]}}`))
	}))
	defer server.Close()

	parser := NewParser(&common.ParserConfig{URL: server.URL, Timeout: "2s"}, common.GetLogger())

	qc := parser.Parse(context.Background(), "Am I eligible?")

	assert.Equal(t, "eligibility", qc.Intent)
	assert.InDelta(t, 0.93, qc.IntentConfidence, 0.001)
	assert.Equal(t, []string{"on"}, qc.Filters[models.FilterJurisdiction])
}

func TestParse_ParserUnreachableFallsBack(t *testing.T) {
	parser := NewParser(&common.ParserConfig{URL: "http://127.0.0.1:1", Timeout: "100ms"}, common.GetLogger())

	qc := parser.Parse(context.Background(), "How do I file an appeal?")

	// Heuristic fallback classified the question.
	assert.Equal(t, IntentProcedure, qc.Intent)
	assert.NotEmpty(t, qc.Normalized)
}

func TestParse_ParserErrorStatusFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	parser := NewParser(&common.ParserConfig{URL: server.URL, Timeout: "2s"}, common.GetLogger())

	qc := parser.Parse(context.Background(), "What are the penalties for non-compliance?")
	assert.Equal(t, IntentPenalty, qc.Intent)
}
