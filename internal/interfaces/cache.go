package interfaces

import (
	"time"

	"github.com/ternarybob/respondeo/internal/models"
)

// AnswerCache is the cache-aside layer in front of the answer pipeline.
// Keys are derived from the normalized question plus a stable filter
// hash; see answercache.Key. Implementations must be safe for concurrent
// use. Writes are idempotent: concurrent writers racing on one key are
// last-writer-wins with no correctness impact.
type AnswerCache interface {
	// Get returns the cached answer for key, or found=false on a miss or
	// an expired entry.
	Get(key string) (*models.Answer, bool)

	// Set stores an answer under key with the given TTL. A zero ttl uses
	// the cache's configured default.
	Set(key string, answer *models.Answer, ttl time.Duration)

	// Clear removes every entry (e.g. after document re-ingestion).
	Clear()

	// Sweep removes expired entries. Driven on a schedule; Get also
	// expires lazily, so Sweep only bounds memory.
	Sweep() int

	// Stats reports a point-in-time snapshot.
	Stats() models.CacheStats
}
