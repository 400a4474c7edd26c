package models

import "strings"

// Filter keys recognized by the retrieval tiers.
const (
	FilterJurisdiction = "jurisdiction"
	FilterProgram      = "program"
	FilterLanguage     = "language"
)

// QueryContext is the normalized form of a user question, produced by the
// query parser before retrieval begins. Passed by value through the
// pipeline; the Filters map is never mutated after construction.
type QueryContext struct {
	RawQuestion      string              `json:"raw_question"`
	Normalized       string              `json:"normalized"`
	Intent           string              `json:"intent,omitempty"`
	IntentConfidence float64             `json:"intent_confidence"`
	Filters          map[string][]string `json:"filters,omitempty"`
}

// FilterValues returns the values for a filter key, or nil.
func (q QueryContext) FilterValues(key string) []string {
	if q.Filters == nil {
		return nil
	}
	return q.Filters[key]
}

// FirstFilter returns the first value for a filter key, or "".
func (q QueryContext) FirstFilter(key string) string {
	if vals := q.FilterValues(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// NormalizeQuestion lowercases, trims, and collapses internal whitespace.
// Used both by the query parser and by the cache key so that questions
// differing only in casing or spacing share one normalized form.
func NormalizeQuestion(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}
