// Package store provides persistent vector storage backends and similarity lookup.
package store

import (
	"context"

	"github.com/hyperjump/mitsuke/internal/models"
)

// Match is a single nearest-neighbor hit. Distance is the store-native
// cosine distance (lower = more similar); no score transformation happens
// here — that policy lives in the search orchestrator.
type Match struct {
	ID       string
	Distance float64
	Metadata map[string]any
	Document string
}

// VectorStore owns persisted vector records. Implementations must keep
// query results ordered by ascending distance and apply filters as an
// exact-match conjunction over metadata keys.
type VectorStore interface {
	// Add persists records. Backends take the batch in one call so that a
	// multi-record entity commits together where the backend allows it.
	Add(ctx context.Context, records []*models.VectorRecord) error
	// Query returns up to topK nearest records, restricted to those whose
	// metadata matches every key in filter (nil/empty filter = no restriction).
	Query(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]*Match, error)
	// Delete removes records by id and returns the count actually removed.
	// Ids that do not exist lower the count; they are not an error.
	Delete(ctx context.Context, ids []string) (int, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	Close() error
}

// filterMatches reports whether meta satisfies every key of filter.
// Values are compared loosely across numeric types because metadata
// round-trips through JSON (ints come back as float64).
func filterMatches(meta, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := meta[k]
		if !ok || !looseEqual(got, want) {
			return false
		}
	}
	return true
}

func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
