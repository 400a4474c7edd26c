package scoring

import (
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/models"
)

// Scorer estimates answer trustworthiness from citation quality, context
// relevance, and linguistic hedging signals. Scores are heuristic and
// comparable only within one deployment's configuration.
type Scorer struct {
	logger arbor.ILogger
}

// Weighting of the score components
const (
	intentWeight    = 0.2
	citationWeight  = 0.4
	relevanceWeight = 0.3
	hedgingPenalty  = 0.3

	// expectedMinCitations is the citation count at which the citation
	// factor saturates.
	expectedMinCitations = 2.0

	// topNContextDocs bounds how many context scores feed the relevance
	// factor.
	topNContextDocs = 3
)

var hedgingPhrases = []string{
	"not sure",
	"might be",
	"unclear",
	"i don't know",
	"i do not know",
	"cannot determine",
	"uncertain",
}

// NewScorer creates a confidence scorer
func NewScorer(logger arbor.ILogger) *Scorer {
	return &Scorer{logger: logger}
}

// Score computes the confidence for an answer, clamped to [0,1].
// contextDocs must be score-descending, as the orchestrator returns them.
func (s *Scorer) Score(answerText string, citations []models.Citation, contextDocs []*models.Document, intentConfidence float64) float64 {
	score := intentWeight*clamp(intentConfidence) +
		citationWeight*citationFactor(citations) +
		relevanceWeight*relevanceFactor(contextDocs)

	if containsHedging(answerText) {
		score -= hedgingPenalty
	}

	return clamp(score)
}

// citationFactor saturates at expectedMinCitations; resolved citations
// count double unresolved ones.
func citationFactor(citations []models.Citation) float64 {
	if len(citations) == 0 {
		return 0
	}

	weighted := 0.0
	for _, c := range citations {
		if c.Resolved() {
			weighted += 1.0
		} else {
			weighted += 0.5
		}
	}

	factor := weighted / expectedMinCitations
	if factor > 1 {
		factor = 1
	}
	return factor
}

// relevanceFactor is the mean of the top-N context document scores.
func relevanceFactor(contextDocs []*models.Document) float64 {
	if len(contextDocs) == 0 {
		return 0
	}

	n := len(contextDocs)
	if n > topNContextDocs {
		n = topNContextDocs
	}

	sum := 0.0
	for _, doc := range contextDocs[:n] {
		sum += clamp(doc.Score)
	}
	return sum / float64(n)
}

func containsHedging(answerText string) bool {
	lower := strings.ToLower(answerText)
	for _, phrase := range hedgingPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
