package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

type fakeAnswerService struct {
	answer       *models.Answer
	cleared      bool
	healthStatus string
}

func (f *fakeAnswerService) AnswerQuestion(ctx context.Context, req *interfaces.AnswerRequest) *models.Answer {
	return f.answer
}

func (f *fakeAnswerService) AnswerBatch(ctx context.Context, req *interfaces.BatchRequest) []*models.Answer {
	answers := make([]*models.Answer, len(req.Questions))
	for i := range req.Questions {
		answers[i] = f.answer
	}
	return answers
}

func (f *fakeAnswerService) Search(ctx context.Context, req *interfaces.SearchRequest) ([]*models.Document, models.TierSource) {
	return []*models.Document{{ID: "doc_1", Title: "Act"}}, models.TierHybrid
}

func (f *fakeAnswerService) SearchBatch(ctx context.Context, req *interfaces.BatchSearchRequest) []*interfaces.SearchResult {
	results := make([]*interfaces.SearchResult, len(req.Queries))
	for i, q := range req.Queries {
		results[i] = &interfaces.SearchResult{
			Query:     q,
			Tier:      models.TierFullText,
			Documents: []*models.Document{{ID: "doc_1", Title: "Act"}},
		}
	}
	return results
}

func (f *fakeAnswerService) ClearCache() { f.cleared = true }

func (f *fakeAnswerService) CacheStats() models.CacheStats {
	return models.CacheStats{TotalEntries: 3, Capacity: 100, TTLSeconds: 3600}
}

func (f *fakeAnswerService) HealthCheck(ctx context.Context) models.HealthReport {
	return models.HealthReport{Status: f.healthStatus, Components: map[string]models.ComponentStatus{}}
}

func newFakeService() *fakeAnswerService {
	return &fakeAnswerService{
		answer: &models.Answer{
			Question:        "Am I eligible?",
			Answer:          "Yes, under Section 7.",
			ConfidenceScore: 0.8,
			Citations:       []models.Citation{},
			SourceDocuments: []*models.Document{},
			Metadata:        map[string]string{models.MetaMethod: "hybrid"},
		},
		healthStatus: "ok",
	}
}

func TestAnswerQuestionHandler(t *testing.T) {
	h := NewAnswerHandler(newFakeService(), common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/answer", strings.NewReader(`{"question":"Am I eligible?"}`))
	rec := httptest.NewRecorder()

	h.AnswerQuestionHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var ans models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, "Yes, under Section 7.", ans.Answer)
	assert.InDelta(t, 0.8, ans.ConfidenceScore, 0.001)
}

func TestAnswerQuestionHandler_EmptyQuestion(t *testing.T) {
	h := NewAnswerHandler(newFakeService(), common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/answer", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.AnswerQuestionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnswerQuestionHandler_InvalidJSON(t *testing.T) {
	h := NewAnswerHandler(newFakeService(), common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/answer", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	h.AnswerQuestionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnswerQuestionHandler_MethodNotAllowed(t *testing.T) {
	h := NewAnswerHandler(newFakeService(), common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/answer", nil)
	rec := httptest.NewRecorder()

	h.AnswerQuestionHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnswerBatchHandler(t *testing.T) {
	h := NewAnswerHandler(newFakeService(), common.GetLogger())

	body := `{"questions":["First question?","Second question?"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/answer/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AnswerBatchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count   int              `json:"count"`
		Answers []*models.Answer `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Answers, 2)
}

func TestSearchHandler(t *testing.T) {
	h := NewAnswerHandler(newFakeService(), common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"benefits"}`))
	rec := httptest.NewRecorder()

	h.SearchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int    `json:"count"`
		Tier  string `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "hybrid", resp.Tier)
}

func TestSearchBatchHandler(t *testing.T) {
	h := NewAnswerHandler(newFakeService(), common.GetLogger())

	body := `{"queries":["benefits","waiting period"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/search/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.SearchBatchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count   int                        `json:"count"`
		Results []*interfaces.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "benefits", resp.Results[0].Query)
}

func TestCacheHandlers(t *testing.T) {
	svc := newFakeService()
	h := NewAnswerHandler(svc, common.GetLogger())

	statsReq := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	statsRec := httptest.NewRecorder()
	h.CacheStatsHandler(statsRec, statsReq)

	require.Equal(t, http.StatusOK, statsRec.Code)
	var stats models.CacheStats
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalEntries)

	clearReq := httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	clearRec := httptest.NewRecorder()
	h.CacheClearHandler(clearRec, clearReq)

	assert.Equal(t, http.StatusOK, clearRec.Code)
	assert.True(t, svc.cleared)
}

func TestHealthHandler_Degraded(t *testing.T) {
	svc := newFakeService()
	svc.healthStatus = "degraded"
	h := NewAnswerHandler(svc, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	h.HealthHandler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
