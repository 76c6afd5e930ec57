package interfaces

import (
	"github.com/cdekimpe/kagent-memory/internal/models"
)

// Chunker splits text into ordered, possibly overlapping chunks.
// Implementations are pure: no I/O, safe for concurrent use.
type Chunker interface {
	// Chunk splits text into chunks with strictly increasing start offsets
	// and sequential indices. Empty or whitespace-only text yields nil.
	Chunk(text string) []models.Chunk
}
