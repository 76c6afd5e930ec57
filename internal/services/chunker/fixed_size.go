// Package chunker splits text into fixed-size overlapping chunks with
// sentence-aware boundaries for embedding.
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cdekimpe/kagent-memory/internal/models"
)

// ErrInvalidConfiguration indicates bad chunker parameters. It is returned
// at construction time, never at chunk time.
var ErrInvalidConfiguration = errors.New("invalid chunker configuration")

// sentenceSeparators in order of preference, strongest break first.
var sentenceSeparators = []string{". ", ".\n", "\n\n", "\n", " "}

// FixedSizeChunker splits text into chunks of roughly chunkSize bytes with
// overlap bytes shared between consecutive chunks, preferring to break at
// sentence boundaries.
type FixedSizeChunker struct {
	chunkSize int
	overlap   int
}

// NewFixedSizeChunker validates the parameters and returns a chunker.
// chunkSize must be positive and overlap must satisfy 0 <= overlap < chunkSize.
func NewFixedSizeChunker(chunkSize, overlap int) (*FixedSizeChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap (%d) must be less than chunk_size (%d)", ErrInvalidConfiguration, overlap, chunkSize)
	}

	return &FixedSizeChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Chunk splits text into chunks with strictly increasing start offsets and
// sequential indices. Empty or whitespace-only text yields nil.
//
// Start/End offsets are recorded against the pre-trim window boundaries even
// though Text is whitespace-trimmed; downstream consumers depend on these
// offsets as-is.
func (c *FixedSizeChunker) Chunk(text string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []models.Chunk
	start := 0
	index := 0

	for start < len(text) {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}

		// Not the final chunk: try to land on a sentence boundary.
		if end < len(text) {
			end = c.findBreakPoint(text, start, end)
		}

		chunkText := strings.TrimSpace(text[start:end])
		if chunkText != "" {
			chunks = append(chunks, models.Chunk{
				Text:  chunkText,
				Start: start,
				End:   end,
				Index: index,
			})
			index++
		}

		if end >= len(text) {
			break
		}

		// Advance with overlap, forcing forward progress when the overlap
		// would move the cursor backwards or keep it in place.
		newStart := end - c.overlap
		if newStart <= start {
			newStart = end
		}
		start = newStart
	}

	return chunks
}

// findBreakPoint searches backward from end for the best separator within
// the current window. A separator only qualifies when it sits past half the
// chunk size, which avoids emitting tiny leading chunks when a separator
// appears early in the window.
func (c *FixedSizeChunker) findBreakPoint(text string, start, end int) int {
	window := text[start:end]
	minOffset := c.chunkSize / 2

	for _, sep := range sentenceSeparators {
		if offset := strings.LastIndex(window, sep); offset > minOffset {
			return start + offset + len(sep)
		}
	}

	return end
}
