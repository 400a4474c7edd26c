package queryparse

import (
	"regexp"
	"strings"

	"github.com/ternarybob/respondeo/internal/models"
)

// Intent values produced by classification
const (
	IntentEligibility = "eligibility"
	IntentObligation  = "obligation"
	IntentDefinition  = "definition"
	IntentProcedure   = "procedure"
	IntentPenalty     = "penalty"
	IntentGeneral     = "general"
)

type intentRule struct {
	intent     string
	confidence float64
	patterns   []*regexp.Regexp
}

// Ordered: first match wins. More specific intents come first.
var intentRules = []intentRule{
	{
		intent:     IntentPenalty,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(penalt(y|ies)|fine[sd]?|sanction|liable|liability)\b`),
			regexp.MustCompile(`(?i)\bwhat\s+happens\s+if\b`),
			regexp.MustCompile(`(?i)\b(consequence|punish)`),
		},
	},
	{
		intent:     IntentEligibility,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(eligib|qualif)`),
			regexp.MustCompile(`(?i)\b(am|are|is)\s+\w+\s*(\w+\s+)?(eligible|entitled)\b`),
			regexp.MustCompile(`(?i)\bwho\s+(can|may)\s+(apply|receive|claim|get)\b`),
			regexp.MustCompile(`(?i)\b(entitle|requirements?\s+to\s+(receive|get|claim))\b`),
		},
	},
	{
		intent:     IntentObligation,
		confidence: 0.8,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(must|required\s+to|obligat|shall|have\s+to|mandatory)\b`),
			regexp.MustCompile(`(?i)\b(comply|compliance|duty|duties)\b`),
		},
	},
	{
		intent:     IntentDefinition,
		confidence: 0.8,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bwhat\s+(is|are|does)\b.*\bmean`),
			regexp.MustCompile(`(?i)\b(defin(e|ition)|meaning\s+of)\b`),
			regexp.MustCompile(`(?i)^what\s+(is|are)\s+(a|an|the)\b`),
		},
	},
	{
		intent:     IntentProcedure,
		confidence: 0.8,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bhow\s+(do|does|can|to)\b`),
			regexp.MustCompile(`(?i)\b(procedure|process|steps?|apply\s+for|file\s+(a|an)|submit)\b`),
			regexp.MustCompile(`(?i)\b(deadline|time\s*limit|within\s+\d+\s+days)\b`),
		},
	},
}

// jurisdictionAliases maps surface forms to canonical jurisdiction codes.
var jurisdictionAliases = map[string]string{
	"federal":          "federal",
	"federally":        "federal",
	"nationwide":       "federal",
	"ontario":          "on",
	"quebec":           "qc",
	"british columbia": "bc",
	"alberta":          "ab",
	"california":       "ca-us",
	"new york":         "ny-us",
	"texas":            "tx-us",
}

// programKeywords maps surface forms to canonical program identifiers.
var programKeywords = map[string]string{
	"employment insurance":   "ei",
	"unemployment insurance": "ei",
	"disability benefits":    "disability",
	"disability insurance":   "disability",
	"parental leave":         "parental_leave",
	"maternity leave":        "parental_leave",
	"pension":                "pension",
	"retirement benefits":    "pension",
	"workers compensation":   "workers_comp",
	"workers' compensation":  "workers_comp",
	"social assistance":      "social_assistance",
	"welfare":                "social_assistance",
	"housing benefit":        "housing",
	"child benefit":          "child_benefit",
}

var frenchMarkers = regexp.MustCompile(`(?i)\b(quel(le)?s?|est-ce|comment|pourquoi|droit|loi|règlement|prestation)\b`)

// classifyIntent returns the detected intent and a confidence for it.
// Unmatched questions fall back to the general intent with low confidence.
func classifyIntent(question string) (string, float64) {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, rule := range intentRules {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(q) {
				return rule.intent, rule.confidence
			}
		}
	}
	return IntentGeneral, 0.4
}

// extractFilters scans the question for jurisdiction, program, and
// language markers.
func extractFilters(question string) map[string][]string {
	q := strings.ToLower(question)
	filters := make(map[string][]string)

	for alias, code := range jurisdictionAliases {
		if strings.Contains(q, alias) {
			filters[models.FilterJurisdiction] = appendUnique(filters[models.FilterJurisdiction], code)
		}
	}
	for keyword, program := range programKeywords {
		if strings.Contains(q, keyword) {
			filters[models.FilterProgram] = appendUnique(filters[models.FilterProgram], program)
		}
	}
	if frenchMarkers.MatchString(question) {
		filters[models.FilterLanguage] = []string{"fr"}
	}

	return filters
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
