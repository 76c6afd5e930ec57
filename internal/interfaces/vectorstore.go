package interfaces

import (
	"context"

	"github.com/cdekimpe/kagent-memory/internal/models"
)

// VectorStore persists embedding vectors with their document text and
// metadata, and answers equality-filtered similarity queries.
//
// Filters are flat key → scalar equality maps. A record whose metadata does
// not contain a filtered key is excluded from matching that filter.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Initialize creates the backing collection and any indexes if they do
	// not exist yet. Safe to call more than once.
	Initialize(ctx context.Context) error

	// Add stores vectors with their documents and metadata, returning the
	// assigned IDs in input order. When ids is nil the store assigns random
	// unique identifiers.
	Add(ctx context.Context, vectors [][]float32, documents []string, metadata []map[string]interface{}, ids []string) ([]string, error)

	// Search returns up to topK hits ordered by descending similarity score.
	// A nil filters map means no filtering; a non-nil scoreThreshold drops
	// hits scoring below it.
	Search(ctx context.Context, vector []float32, topK int, filters map[string]interface{}, scoreThreshold *float64) ([]models.SearchHit, error)

	// Delete removes records by ID or by equality filter and returns the
	// number of records removed. Non-matching filters yield 0, not an error.
	Delete(ctx context.Context, ids []string, filters map[string]interface{}) (int, error)

	// HealthCheck reports whether the store is reachable. Failures are
	// reported as false, never as an error.
	HealthCheck(ctx context.Context) bool

	// Close releases the store's client resources.
	Close() error
}
