package interfaces

import "context"

// EmbeddingProvider converts text into fixed-dimension embedding vectors.
// Implementations must be safe for concurrent use.
type EmbeddingProvider interface {
	// Embed returns one vector per input text, in input order. The call is
	// all-or-nothing: a partial failure is reported as an error, never as a
	// short result.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of vectors produced by Embed.
	Dimension() int

	// Close releases any resources held by the provider.
	Close() error
}
