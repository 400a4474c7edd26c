package assembler

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

// blockDelimiter separates document blocks in the assembled context.
const blockDelimiter = "---"

// Assembler turns ranked documents into the context block handed to the
// generation provider. Documents are deduplicated by ID (first
// occurrence wins), capped at MaxDocs, and dropped whole once the
// character budget is reached; a partially included document would
// invite citations into text the model never saw.
type Assembler struct {
	maxDocs  int
	maxChars int
	logger   arbor.ILogger
}

// NewAssembler creates a context assembler from config
func NewAssembler(config *common.AssemblerConfig, logger arbor.ILogger) *Assembler {
	return &Assembler{
		maxDocs:  config.MaxDocs,
		maxChars: config.MaxChars,
		logger:   logger,
	}
}

// Assemble returns the formatted context string and the documents that
// made it in, in inclusion order. Callers pass documents ranked
// best-first; order is preserved.
func (a *Assembler) Assemble(docs []*models.Document, maxDocs int) (string, []*models.Document) {
	if maxDocs <= 0 || maxDocs > a.maxDocs {
		maxDocs = a.maxDocs
	}

	seen := make(map[string]bool, len(docs))
	var blocks []string
	var included []*models.Document
	total := 0

	for _, doc := range docs {
		if len(included) >= maxDocs {
			break
		}
		if doc.ID != "" && seen[doc.ID] {
			continue
		}

		block := formatDocument(doc, len(included)+1)
		if total+len(block) > a.maxChars {
			a.logger.Debug().
				Str("doc_id", doc.ID).
				Int("budget", a.maxChars).
				Msg("Dropping document, context budget reached")
			break
		}

		seen[doc.ID] = true
		blocks = append(blocks, block)
		included = append(included, doc)
		total += len(block)
	}

	if len(blocks) == 0 {
		return "", nil
	}

	return strings.Join(blocks, "\n"+blockDelimiter+"\n"), included
}

// formatDocument renders one labeled document block
func formatDocument(doc *models.Document, index int) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("[Document %d: %s]", index, doc.Title))
	if doc.Citation != "" {
		parts = append(parts, fmt.Sprintf("Citation: %s", doc.Citation))
	}
	if doc.SectionNumber != "" {
		parts = append(parts, fmt.Sprintf("Section: %s", doc.SectionNumber))
	}
	parts = append(parts, doc.Content)

	return strings.Join(parts, "\n")
}
