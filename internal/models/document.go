package models

// MaxContentChars is the per-document content cap applied at retrieval
// time. Backends may hold full regulation text; the answer pipeline only
// ever sees the leading excerpt.
const MaxContentChars = 1500

// DocumentType identifies the granularity of a retrieved document.
type DocumentType string

const (
	// DocumentTypeRegulation is a whole regulation or act.
	DocumentTypeRegulation DocumentType = "regulation"
	// DocumentTypeSection is a single section within a regulation.
	DocumentTypeSection DocumentType = "section"
)

// TierSource identifies which retrieval tier produced a document.
type TierSource string

const (
	// TierHybrid is the Weaviate lexical+vector hybrid search tier.
	TierHybrid TierSource = "hybrid"
	// TierGraph is the knowledge-graph traversal tier.
	TierGraph TierSource = "graph"
	// TierFullText is the SQLite FTS5 relational full-text tier.
	TierFullText TierSource = "fulltext"
	// TierMetadata is the metadata-only lookup tier (lowest precision).
	TierMetadata TierSource = "metadata"
	// TierNone indicates no tier produced any documents.
	TierNone TierSource = "none"
)

// Document represents a normalized legal document passage retrieved from
// any tier. Instances are immutable once returned from an adapter and are
// owned by the request that retrieved them.
type Document struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Content       string       `json:"content"`                  // Truncated to MaxContentChars
	Citation      string       `json:"citation,omitempty"`       // Formal legal citation, e.g. "SOR/96-332, s. 7"
	SectionNumber string       `json:"section_number,omitempty"` // e.g. "7" or "7(1)(a)"
	Jurisdiction  string       `json:"jurisdiction,omitempty"`
	Programs      []string     `json:"programs,omitempty"`
	Language      string       `json:"language,omitempty"`
	DocumentType  DocumentType `json:"document_type"`
	Score         float64      `json:"score"`       // Backend-native relevance, normalized to [0,1] per tier
	TierSource    TierSource   `json:"tier_source"` // Adapter that produced this document
}

// TruncateContent returns content capped at MaxContentChars.
func TruncateContent(content string) string {
	if len(content) <= MaxContentChars {
		return content
	}
	return content[:MaxContentChars]
}

// TierResult is the tagged outcome of a single tier retrieval attempt.
// The orchestrator's fallback logic branches on State rather than on
// suppressed errors, so every transition is explicit and testable.
type TierResult struct {
	State TierState
	Docs  []*Document
	Err   error
}

// TierState enumerates the possible outcomes of a tier call.
type TierState int

const (
	// TierStateOK means the tier returned at least one document.
	TierStateOK TierState = iota
	// TierStateEmpty means the tier ran successfully but found nothing.
	TierStateEmpty
	// TierStateErr means the tier failed (timeout, connection error).
	// The orchestrator treats this the same as empty, but logs it.
	TierStateErr
)

// TierOK wraps a non-empty document list in a successful result.
// An empty slice degrades to TierEmpty so callers never see an OK
// result with zero documents.
func TierOK(docs []*Document) TierResult {
	if len(docs) == 0 {
		return TierEmpty()
	}
	return TierResult{State: TierStateOK, Docs: docs}
}

// TierEmpty reports a successful call that matched nothing.
func TierEmpty() TierResult {
	return TierResult{State: TierStateEmpty}
}

// TierFailure reports an internal tier failure.
func TierFailure(err error) TierResult {
	return TierResult{State: TierStateErr, Err: err}
}
