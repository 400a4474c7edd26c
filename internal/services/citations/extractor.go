package citations

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/models"
)

// Extractor scans generated answer text for citation-like spans and
// resolves each against the context documents the answer was generated
// from. Unresolved citations are still reported with an empty
// DocumentID: the model cited something, even if it cannot be linked.
type Extractor struct {
	logger arbor.ILogger
}

// Per-citation confidence levels
const (
	confidenceResolved     = 0.9
	confidencePartialTitle = 0.6
	confidenceUnresolved   = 0.4
)

var (
	// [Employment Insurance Act, Section 7(1)] or [Employment Insurance Act]
	bracketedPattern = regexp.MustCompile(`\[([^,\[\]]+?)(?:,\s*(?:[Ss]ection|s\.)\s*([0-9]+(?:\([0-9A-Za-z]+\))*))?\]`)

	// Section 7(1) / s. 7(1) inline in running text
	inlinePattern = regexp.MustCompile(`\b(?:[Ss]ection|s\.)\s+([0-9]+(?:\([0-9A-Za-z]+\))*)`)
)

// NewExtractor creates a citation extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

type span struct {
	start   int
	text    string
	title   string
	section string
}

// Extract returns the citations found in answerText in text order,
// resolved against contextDocs. Duplicate resolved (documentID, section)
// pairs are collapsed keeping the first span; malformed spans are skipped.
func (e *Extractor) Extract(answerText string, contextDocs []*models.Document) []models.Citation {
	spans := collectSpans(answerText)

	var citations []models.Citation
	seen := make(map[string]bool)

	for _, s := range spans {
		citation, ok := e.resolve(s, contextDocs)
		if !ok {
			continue
		}

		key := citation.DocumentID + "|" + citation.Section
		if !citation.Resolved() {
			// Unresolved spans share an empty document ID; distinct cited
			// titles with the same section number must stay separate.
			key = "?" + strings.ToLower(s.title) + "|" + citation.Section
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, citation)
	}

	return citations
}

// collectSpans runs all matchers and orders matches by position.
// Bracketed spans suppress inline matches inside them.
func collectSpans(text string) []span {
	var spans []span
	covered := make([][2]int, 0)

	for _, m := range bracketedPattern.FindAllStringSubmatchIndex(text, -1) {
		s := span{
			start: m[0],
			text:  text[m[0]:m[1]],
			title: strings.TrimSpace(text[m[2]:m[3]]),
		}
		if m[4] >= 0 {
			s.section = text[m[4]:m[5]]
		}
		if s.title == "" {
			continue // malformed span, skip
		}
		spans = append(spans, s)
		covered = append(covered, [2]int{m[0], m[1]})
	}

	for _, m := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		inside := false
		for _, c := range covered {
			if m[0] >= c[0] && m[1] <= c[1] {
				inside = true
				break
			}
		}
		if inside {
			continue
		}
		spans = append(spans, span{
			start:   m[0],
			text:    text[m[0]:m[1]],
			section: text[m[2]:m[3]],
		})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// resolve links one span to a context document. Returns ok=false only
// for spans excluded outright (self-referential title-only citations).
func (e *Extractor) resolve(s span, contextDocs []*models.Document) (models.Citation, bool) {
	citation := models.Citation{
		Text:       s.text,
		Section:    s.section,
		Confidence: confidenceUnresolved,
	}

	if s.title != "" {
		doc, partial := matchTitle(s.title, contextDocs)
		if doc != nil {
			// A document citing its own title with no section adds nothing.
			if s.section == "" && strings.EqualFold(s.title, doc.Title) {
				return models.Citation{}, false
			}

			citation.DocumentID = doc.ID
			citation.DocumentTitle = doc.Title
			citation.Confidence = confidenceResolved
			if partial {
				citation.Confidence = confidencePartialTitle
			}

			if s.section != "" && !sectionMatches(doc.SectionNumber, s.section) {
				// Title matched but the cited section is not this
				// document's section; keep the link at reduced confidence.
				citation.Confidence = confidencePartialTitle
			}
			return citation, true
		}
		return citation, true
	}

	// Section-only citation: match by section number across the context.
	for _, doc := range contextDocs {
		if sectionMatches(doc.SectionNumber, s.section) {
			citation.DocumentID = doc.ID
			citation.DocumentTitle = doc.Title
			citation.Confidence = confidenceResolved
			return citation, true
		}
	}
	return citation, true
}

// matchTitle finds the first context document whose title matches the
// cited title. Exact (case-insensitive) equality wins over substring
// containment; containment in either direction is a partial match.
func matchTitle(cited string, docs []*models.Document) (*models.Document, bool) {
	citedLower := strings.ToLower(cited)

	for _, doc := range docs {
		if strings.EqualFold(doc.Title, cited) {
			return doc, false
		}
	}
	for _, doc := range docs {
		titleLower := strings.ToLower(doc.Title)
		if strings.Contains(titleLower, citedLower) || strings.Contains(citedLower, titleLower) {
			return doc, true
		}
	}
	return nil, false
}

// sectionMatches compares a cited section against a document's section
// number: exact match, or base-number match for subsection citations
// ("7(1)" matches a document covering section "7").
func sectionMatches(docSection, cited string) bool {
	if docSection == "" || cited == "" {
		return false
	}
	if docSection == cited {
		return true
	}
	if idx := strings.IndexByte(cited, '('); idx > 0 {
		return cited[:idx] == docSection
	}
	return false
}
