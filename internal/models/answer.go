package models

// Metadata keys present on every Answer.
const (
	// MetaMethod records how the answer was produced ("hybrid", "graph",
	// "fulltext", "metadata", or "cache" on a cache hit).
	MetaMethod = "method"
	// MetaError is set when the pipeline terminated without a grounded
	// answer. Its value is one of the Err* constants below or a free-form
	// description for unexpected failures.
	MetaError = "error"
	// MetaProvider records the generation provider used.
	MetaProvider = "provider"
)

// Terminal error values stored under MetaError.
const (
	// ErrNoContextFound: all four tiers returned empty. A normal terminal
	// state, not a failure of the pipeline itself.
	ErrNoContextFound = "no_context_found"
	// ErrGenerationUnavailable: the generation backend was unreachable or
	// exhausted its retries before producing text.
	ErrGenerationUnavailable = "generation_unavailable"
)

// Citation is a span in the generated answer that purports to reference a
// source document or section. DocumentID is empty when the span could not
// be linked to a retrieved document; unresolved citations are still
// reported as evidence that the model cited something.
type Citation struct {
	Text          string  `json:"text"`
	DocumentID    string  `json:"document_id,omitempty"`
	DocumentTitle string  `json:"document_title,omitempty"`
	Section       string  `json:"section,omitempty"`
	Confidence    float64 `json:"confidence"`
}

// Resolved reports whether the citation was linked to a retrieved document.
func (c Citation) Resolved() bool {
	return c.DocumentID != ""
}

// Answer is the result of one question through the full pipeline.
// Constructed once per request and never mutated afterwards; the cache
// stores and replays complete Answer values.
type Answer struct {
	ID               string            `json:"id"` // "ans_" prefixed, unique per computation
	Question         string            `json:"question"`
	Answer           string            `json:"answer"`
	Citations        []Citation        `json:"citations"`        // Insertion order = order found in text
	ConfidenceScore  float64           `json:"confidence_score"` // Always within [0,1]
	SourceDocuments  []*Document       `json:"source_documents"` // Score-descending
	Intent           string            `json:"intent,omitempty"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
	Cached           bool              `json:"cached"`
	Metadata         map[string]string `json:"metadata"`
}

// Failed reports whether the answer carries a terminal error.
func (a *Answer) Failed() bool {
	return a.Metadata[MetaError] != ""
}

// CacheStats is a snapshot of the answer cache.
type CacheStats struct {
	TotalEntries int   `json:"total_entries"`
	TTLSeconds   int   `json:"ttl_seconds"`
	Capacity     int   `json:"capacity"`
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Evictions    int64 `json:"evictions"`
}

// ComponentStatus is one entry in a health check report.
type ComponentStatus struct {
	Status string `json:"status"` // "ok" or "error"
	Detail string `json:"detail,omitempty"`
}

// HealthReport aggregates component health for the /api/health endpoint.
type HealthReport struct {
	Status     string                     `json:"status"` // "ok" if every component is ok, else "degraded"
	Components map[string]ComponentStatus `json:"components"`
}
