package embeddings

import (
	"context"
	"hash/fnv"
	"math"
)

const defaultOfflineDimensions = 384

// OfflineProvider generates deterministic embeddings from a text hash. It
// needs no API key or network access, which makes it useful for local
// development and tests. Vectors carry no semantic meaning: identical texts
// map to identical vectors, nothing more.
type OfflineProvider struct {
	dimensions int
}

// NewOfflineProvider creates an offline provider with the given
// dimensionality. Non-positive values fall back to the default.
func NewOfflineProvider(dimensions int) *OfflineProvider {
	if dimensions <= 0 {
		dimensions = defaultOfflineDimensions
	}
	return &OfflineProvider{dimensions: dimensions}
}

// Embed generates one deterministic unit vector per input text.
func (p *OfflineProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = p.embedOne(text)
	}
	return out, nil
}

func (p *OfflineProvider) embedOne(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, p.dimensions)
	for i := range embedding {
		// LCG stepped from the text hash gives a stable pseudo-random vector.
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding)
}

// Dimension returns the configured vector dimensionality.
func (p *OfflineProvider) Dimension() int {
	return p.dimensions
}

// Close releases provider resources.
func (p *OfflineProvider) Close() error {
	return nil
}

// normalize converts an embedding to a unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
