package main

import (
	"fmt"
	"strings"

	"github.com/ternarybob/respondeo/internal/models"
)

// formatAnswer formats a pipeline answer as markdown
func formatAnswer(answer *models.Answer) string {
	var sb strings.Builder

	if answer.Failed() {
		sb.WriteString("## No Answer Available\n\n")
		sb.WriteString(fmt.Sprintf("**Reason:** %s\n", answer.Metadata[models.MetaError]))
		return sb.String()
	}

	sb.WriteString("## Answer\n\n")
	sb.WriteString(answer.Answer)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("**Confidence:** %.2f\n", answer.ConfidenceScore))
	sb.WriteString(fmt.Sprintf("**Retrieval method:** %s\n", answer.Metadata[models.MetaMethod]))
	if answer.Cached {
		sb.WriteString("**Served from cache**\n")
	}

	if len(answer.Citations) > 0 {
		sb.WriteString("\n### Citations\n\n")
		for i, c := range answer.Citations {
			if c.Resolved() {
				sb.WriteString(fmt.Sprintf("%d. %s (%s", i+1, c.Text, c.DocumentTitle))
				if c.Section != "" {
					sb.WriteString(fmt.Sprintf(", s. %s", c.Section))
				}
				sb.WriteString(fmt.Sprintf(") [confidence %.1f]\n", c.Confidence))
			} else {
				sb.WriteString(fmt.Sprintf("%d. %s (unresolved) [confidence %.1f]\n", i+1, c.Text, c.Confidence))
			}
		}
	}

	if len(answer.SourceDocuments) > 0 {
		sb.WriteString("\n### Sources\n\n")
		for i, doc := range answer.SourceDocuments {
			sb.WriteString(fmt.Sprintf("%d. **%s**", i+1, doc.Title))
			if doc.Citation != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", doc.Citation))
			}
			sb.WriteString(fmt.Sprintf(" score %.2f\n", doc.Score))
		}
	}

	return sb.String()
}

// formatSearchResults formats retrieval results as markdown
func formatSearchResults(query string, tier models.TierSource, docs []*models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results for \"%s\" (%d results, tier: %s)\n\n", query, len(docs), tier))

	if len(docs) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("### %d. %s\n", i+1, doc.Title))
		sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
		if doc.Citation != "" {
			sb.WriteString(fmt.Sprintf("**Citation:** %s\n", doc.Citation))
		}
		if doc.SectionNumber != "" {
			sb.WriteString(fmt.Sprintf("**Section:** %s\n", doc.SectionNumber))
		}
		sb.WriteString(fmt.Sprintf("**Score:** %.2f\n\n", doc.Score))

		// Content preview (first 300 chars)
		content := doc.Content
		if len(content) > 300 {
			content = content[:300] + "..."
		}
		sb.WriteString(content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// formatDocument formats a single document as markdown
func formatDocument(doc *models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
	if doc.Citation != "" {
		sb.WriteString(fmt.Sprintf("**Citation:** %s\n", doc.Citation))
	}
	if doc.SectionNumber != "" {
		sb.WriteString(fmt.Sprintf("**Section:** %s\n", doc.SectionNumber))
	}
	if doc.Jurisdiction != "" {
		sb.WriteString(fmt.Sprintf("**Jurisdiction:** %s\n", doc.Jurisdiction))
	}
	if len(doc.Programs) > 0 {
		sb.WriteString(fmt.Sprintf("**Programs:** %s\n", strings.Join(doc.Programs, ", ")))
	}
	if doc.Language != "" {
		sb.WriteString(fmt.Sprintf("**Language:** %s\n", doc.Language))
	}
	sb.WriteString(fmt.Sprintf("**Type:** %s\n\n", doc.DocumentType))

	sb.WriteString("## Content\n\n")
	sb.WriteString(doc.Content)
	sb.WriteString("\n")

	return sb.String()
}
