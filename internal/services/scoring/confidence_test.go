package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

func resolved() models.Citation {
	return models.Citation{DocumentID: "doc_1", Section: "7", Confidence: 0.9}
}

func unresolved() models.Citation {
	return models.Citation{Section: "99", Confidence: 0.4}
}

func docs(scores ...float64) []*models.Document {
	out := make([]*models.Document, 0, len(scores))
	for i, s := range scores {
		out = append(out, &models.Document{ID: string(rune('a' + i)), Score: s})
	}
	return out
}

func TestScore_InRange(t *testing.T) {
	s := NewScorer(common.GetLogger())

	cases := []struct {
		name             string
		answer           string
		citations        []models.Citation
		contextDocs      []*models.Document
		intentConfidence float64
	}{
		{"everything strong", "Benefits are payable.", []models.Citation{resolved(), resolved()}, docs(0.9, 0.8), 0.9},
		{"no citations", "Benefits are payable.", nil, docs(0.5), 0.5},
		{"hedged with nothing else", "I don't know.", nil, nil, 0},
		{"overweight inputs", "Clear answer.", []models.Citation{resolved(), resolved(), resolved()}, docs(1.5, 2.0), 1.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := s.Score(tc.answer, tc.citations, tc.contextDocs, tc.intentConfidence)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}
}

func TestScore_FullMarks(t *testing.T) {
	s := NewScorer(common.GetLogger())

	score := s.Score("Benefits are payable under Section 7.",
		[]models.Citation{resolved(), resolved()}, docs(1.0, 1.0, 1.0), 1.0)

	assert.InDelta(t, 0.9, score, 0.001) // 0.2 + 0.4 + 0.3
}

func TestScore_ResolvedCitationsCountDouble(t *testing.T) {
	s := NewScorer(common.GetLogger())

	withResolved := s.Score("answer", []models.Citation{resolved()}, nil, 0)
	withUnresolved := s.Score("answer", []models.Citation{unresolved()}, nil, 0)

	assert.InDelta(t, 2*withUnresolved, withResolved, 0.001)
}

func TestScore_CitationFactorSaturates(t *testing.T) {
	s := NewScorer(common.GetLogger())

	two := s.Score("answer", []models.Citation{resolved(), resolved()}, nil, 0)
	five := s.Score("answer", []models.Citation{resolved(), resolved(), resolved(), resolved(), resolved()}, nil, 0)

	assert.InDelta(t, two, five, 0.001)
}

func TestScore_HedgingPenalty(t *testing.T) {
	s := NewScorer(common.GetLogger())

	plain := s.Score("Benefits are payable.", []models.Citation{resolved(), resolved()}, docs(0.9), 0.8)
	hedged := s.Score("It might be that benefits are payable.", []models.Citation{resolved(), resolved()}, docs(0.9), 0.8)

	assert.InDelta(t, plain-0.3, hedged, 0.001)
}

func TestScore_HedgingNeverGoesNegative(t *testing.T) {
	s := NewScorer(common.GetLogger())

	score := s.Score("I'm not sure, it is unclear.", nil, nil, 0)

	assert.Equal(t, 0.0, score)
}

func TestScore_RelevanceUsesTopN(t *testing.T) {
	s := NewScorer(common.GetLogger())

	topHeavy := s.Score("answer", nil, docs(0.9, 0.9, 0.9, 0.0, 0.0), 0)

	assert.InDelta(t, 0.3*0.9, topHeavy, 0.001)
}
