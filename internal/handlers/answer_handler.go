package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// AnswerHandler handles question-answering HTTP requests
type AnswerHandler struct {
	answerService interfaces.AnswerService
	logger        arbor.ILogger
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(answerService interfaces.AnswerService, logger arbor.ILogger) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
		logger:        logger,
	}
}

// AnswerQuestionHandler handles POST /api/answer requests
func (h *AnswerHandler) AnswerQuestionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interfaces.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode answer request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question field is required")
		return
	}

	h.logger.Info().
		Int("question_length", len(req.Question)).
		Int("filters", len(req.Filters)).
		Msg("Processing answer request")

	answer := h.answerService.AnswerQuestion(r.Context(), &req)

	// The pipeline never errors out; failure shape is carried in the
	// answer's metadata and still returned with 200.
	writeJSON(w, http.StatusOK, answer)
}

// AnswerBatchHandler handles POST /api/answer/batch requests
func (h *AnswerHandler) AnswerBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interfaces.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode batch request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "Questions field is required")
		return
	}

	answers := h.answerService.AnswerBatch(r.Context(), &req)
	if answers == nil {
		writeError(w, http.StatusBadRequest, "Invalid batch request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(answers),
		"answers": answers,
	})
}

// SearchHandler handles POST /api/search requests
func (h *AnswerHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interfaces.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode search request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query field is required")
		return
	}

	docs, tier := h.answerService.Search(r.Context(), &req)
	if docs == nil {
		docs = []*models.Document{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(docs),
		"tier":      tier,
		"documents": docs,
	})
}

// SearchBatchHandler handles POST /api/search/batch requests
func (h *AnswerHandler) SearchBatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interfaces.BatchSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode batch search request")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Queries) == 0 {
		writeError(w, http.StatusBadRequest, "Queries field is required")
		return
	}

	results := h.answerService.SearchBatch(r.Context(), &req)
	if results == nil {
		writeError(w, http.StatusBadRequest, "Invalid batch search request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}

// CacheStatsHandler handles GET /api/cache/stats requests
func (h *AnswerHandler) CacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.answerService.CacheStats())
}

// CacheClearHandler handles POST /api/cache/clear requests
func (h *AnswerHandler) CacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.answerService.ClearCache()
	writeJSON(w, http.StatusOK, map[string]interface{}{"cleared": true})
}

// HealthHandler handles GET /api/health requests
func (h *AnswerHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := h.answerService.HealthCheck(r.Context())
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
