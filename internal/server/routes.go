package server

import (
	"net/http"

	"github.com/ternarybob/respondeo/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Question answering
	mux.HandleFunc("/api/answer", s.app.AnswerHandler.AnswerQuestionHandler)    // POST - answer a question
	mux.HandleFunc("/api/answer/batch", s.app.AnswerHandler.AnswerBatchHandler) // POST - answer a batch of questions
	mux.HandleFunc("/api/search", s.app.AnswerHandler.SearchHandler)            // POST - retrieval only, no generation
	mux.HandleFunc("/api/search/batch", s.app.AnswerHandler.SearchBatchHandler) // POST - bulk retrieval

	// API routes - Cache
	mux.HandleFunc("/api/cache/stats", s.app.AnswerHandler.CacheStatsHandler) // GET
	mux.HandleFunc("/api/cache/clear", s.app.AnswerHandler.CacheClearHandler) // POST

	// API routes - System
	mux.HandleFunc("/api/health", s.app.AnswerHandler.HealthHandler)
	mux.HandleFunc("/api/version", handlers.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.notFoundHandler)

	return mux
}

// notFoundHandler returns a JSON 404 for unmatched API routes
func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"success":false,"error":"Not found"}`))
}
