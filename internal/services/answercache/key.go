package answercache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/ternarybob/respondeo/internal/models"
)

// Key derives the cache key for a question and filter set. The question
// is normalized (lowercased, trimmed, whitespace collapsed) and the
// filter hash is stable under key order and value order, so requests
// differing only in casing, whitespace, or filter ordering share one
// entry.
func Key(question string, filters map[string][]string) string {
	normalized := models.NormalizeQuestion(question)
	hash := filterHash(filters)
	if hash == "" {
		return normalized
	}
	return normalized + "|" + hash
}

func filterHash(filters map[string][]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		if len(filters[k]) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		values := append([]string(nil), filters[k]...)
		sort.Strings(values)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}
