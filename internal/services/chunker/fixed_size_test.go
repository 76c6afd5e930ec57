package chunker

import (
	"errors"
	"strings"
	"testing"
)

func mustChunker(t *testing.T, chunkSize, overlap int) *FixedSizeChunker {
	t.Helper()
	c, err := NewFixedSizeChunker(chunkSize, overlap)
	if err != nil {
		t.Fatalf("NewFixedSizeChunker(%d, %d) failed: %v", chunkSize, overlap, err)
	}
	return c
}

func TestChunk_EmptyText(t *testing.T) {
	c := mustChunker(t, 100, 20)
	if chunks := c.Chunk(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunk_WhitespaceOnly(t *testing.T) {
	c := mustChunker(t, 100, 20)
	if chunks := c.Chunk("   \n\t  "); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace-only text, got %d", len(chunks))
	}
}

func TestChunk_ShortText(t *testing.T) {
	c := mustChunker(t, 100, 20)
	text := "This is a short text."

	chunks := c.Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("expected chunk text %q, got %q", text, chunks[0].Text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
	if chunks[0].Start != 0 {
		t.Errorf("expected start 0, got %d", chunks[0].Start)
	}
}

func TestChunk_LongTextCreatesMultipleChunks(t *testing.T) {
	c := mustChunker(t, 50, 10)
	text := strings.Repeat("A", 150)

	chunks := c.Chunk(text)

	if len(chunks) <= 1 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
		if len(chunk.Text) > 50 {
			t.Errorf("chunk %d text length %d exceeds chunk size", i, len(chunk.Text))
		}
	}
}

func TestChunk_OverlapBetweenChunks(t *testing.T) {
	c := mustChunker(t, 50, 10)
	text := strings.Repeat("A", 100)

	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// Each chunk after the first starts overlap bytes before the previous end.
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start >= chunks[i-1].End {
			t.Errorf("chunk %d start %d should overlap previous end %d", i, chunks[i].Start, chunks[i-1].End)
		}
	}
}

func TestChunk_StartStrictlyIncreases(t *testing.T) {
	c := mustChunker(t, 50, 10)
	text := strings.Repeat("word ", 100)

	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start <= chunks[i-1].Start {
			t.Errorf("chunk %d start %d not greater than previous start %d", i, chunks[i].Start, chunks[i-1].Start)
		}
	}
}

func TestChunk_SentenceBoundaryDetection(t *testing.T) {
	c := mustChunker(t, 60, 10)
	text := "This is sentence one. This is sentence two. This is sentence three."

	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The first chunk should end at a sentence boundary, not mid-word.
	if !strings.HasSuffix(chunks[0].Text, ".") {
		t.Errorf("expected first chunk to end at a sentence boundary, got %q", chunks[0].Text)
	}
}

func TestChunk_Positions(t *testing.T) {
	c := mustChunker(t, 50, 0)
	text := strings.Repeat("A", 100)

	chunks := c.Chunk(text)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if chunks[0].Start != 0 || chunks[0].End != 50 {
		t.Errorf("expected first chunk [0,50), got [%d,%d)", chunks[0].Start, chunks[0].End)
	}
}

func TestChunk_CoversFullText(t *testing.T) {
	c := mustChunker(t, 80, 20)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)

	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Consecutive windows must connect: no gaps in coverage.
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start > chunks[i-1].End {
			t.Errorf("gap between chunk %d end %d and chunk %d start %d", i-1, chunks[i-1].End, i, chunks[i].Start)
		}
	}
	last := chunks[len(chunks)-1]
	if last.End != len(text) {
		t.Errorf("last chunk end %d does not reach text end %d", last.End, len(text))
	}
}

func TestNewFixedSizeChunker_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 10},
		{"negative chunk size", -1, 10},
		{"negative overlap", 100, -1},
		{"overlap equals chunk size", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFixedSizeChunker(tt.chunkSize, tt.overlap)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}
