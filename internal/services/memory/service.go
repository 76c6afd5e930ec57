package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/interfaces"
	"github.com/cdekimpe/kagent-memory/internal/models"
)

// ErrNotInitialized is returned when the service is used before Initialize
// has completed.
var ErrNotInitialized = errors.New("memory service not initialized")

// Service orchestrates chunking, embedding, and vector storage. It holds no
// state of its own beyond the injected collaborators and is safe for
// concurrent use as long as the provider and store are.
type Service struct {
	logger      arbor.ILogger
	chunker     interfaces.Chunker
	embedder    interfaces.EmbeddingProvider
	store       interfaces.VectorStore
	defaults    common.SearchConfig
	initialized bool
}

// NewService creates a memory service from its collaborators. Call
// Initialize before use.
func NewService(logger arbor.ILogger, chunker interfaces.Chunker, embedder interfaces.EmbeddingProvider, store interfaces.VectorStore, defaults common.SearchConfig) *Service {
	if defaults.TopK <= 0 {
		defaults.TopK = 10
	}
	return &Service{
		logger:   logger,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		defaults: defaults,
	}
}

// Initialize prepares the vector store (collection creation is idempotent).
func (s *Service) Initialize(ctx context.Context) error {
	if err := s.store.Initialize(ctx); err != nil {
		return fmt.Errorf("vector store initialization failed: %w", err)
	}
	s.initialized = true

	s.logger.Info().
		Int("embedding_dimensions", s.embedder.Dimension()).
		Msg("Memory service initialized")
	return nil
}

// AddMemory chunks content, embeds each chunk, and persists the results.
// Empty or whitespace-only content is a valid no-op returning zero chunks.
func (s *Service) AddMemory(ctx context.Context, content string, metadata map[string]interface{}, userID, sessionID, agentName string) (*models.AddMemoryResponse, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	base := map[string]interface{}{
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"content_hash": contentHash(content),
	}
	if userID != "" {
		base["user_id"] = userID
	}
	if sessionID != "" {
		base["session_id"] = sessionID
	}
	if agentName != "" {
		base["agent_name"] = agentName
	}

	chunks := s.chunker.Chunk(content)
	if len(chunks) == 0 {
		return &models.AddMemoryResponse{MemoryIDs: []string{}, ChunksCreated: 0}, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	metadataList := make([]map[string]interface{}, len(chunks))
	for i, chunk := range chunks {
		chunkMeta := make(map[string]interface{}, len(base)+len(metadata)+4)
		for k, v := range base {
			chunkMeta[k] = v
		}
		for k, v := range metadata {
			chunkMeta[k] = v
		}
		chunkMeta["chunk_index"] = chunk.Index
		chunkMeta["chunk_start"] = chunk.Start
		chunkMeta["chunk_end"] = chunk.End
		chunkMeta["total_chunks"] = len(chunks)
		metadataList[i] = chunkMeta
	}

	ids, err := s.store.Add(ctx, vectors, texts, metadataList, nil)
	if err != nil {
		return nil, fmt.Errorf("vector store add failed: %w", err)
	}

	s.logger.Debug().
		Int("chunks", len(chunks)).
		Str("user_id", userID).
		Str("session_id", sessionID).
		Msg("Memory added")

	return &models.AddMemoryResponse{MemoryIDs: ids, ChunksCreated: len(chunks)}, nil
}

// SearchMemory embeds the query and returns the store's ranked results.
// Identity fields override same-named keys in caller-supplied filters.
func (s *Service) SearchMemory(ctx context.Context, req *models.SearchMemoryRequest) (*models.SearchMemoryResponse, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	vectors, err := s.embedder.Embed(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding provider returned %d vectors for single query", len(vectors))
	}

	filters := make(map[string]interface{}, len(req.Filters)+3)
	for k, v := range req.Filters {
		filters[k] = v
	}
	if req.UserID != "" {
		filters["user_id"] = req.UserID
	}
	if req.SessionID != "" {
		filters["session_id"] = req.SessionID
	}
	if req.AgentName != "" {
		filters["agent_name"] = req.AgentName
	}
	if len(filters) == 0 {
		filters = nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.defaults.TopK
	}

	hits, err := s.store.Search(ctx, vectors[0], topK, filters, req.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("vector store search failed: %w", err)
	}

	// Store order is preserved; results arrive ranked by descending score.
	results := make([]models.SearchMemoryResult, len(hits))
	for i, hit := range hits {
		results[i] = models.SearchMemoryResult{
			Content:  hit.Content,
			Metadata: hit.Metadata,
			Score:    hit.Score,
			MemoryID: hit.ID,
		}
	}

	return &models.SearchMemoryResponse{Results: results, Query: req.Query}, nil
}

// DeleteMemories removes all records matching the identity filters and
// returns how many were deleted. A non-matching filter yields zero, not an
// error.
func (s *Service) DeleteMemories(ctx context.Context, userID, sessionID, agentName string) (int, error) {
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	if userID == "" {
		return 0, fmt.Errorf("user_id is required for memory deletion")
	}

	filters := map[string]interface{}{"user_id": userID}
	if sessionID != "" {
		filters["session_id"] = sessionID
	}
	if agentName != "" {
		filters["agent_name"] = agentName
	}

	count, err := s.store.Delete(ctx, nil, filters)
	if err != nil {
		return 0, fmt.Errorf("vector store delete failed: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int("deleted", count).
		Msg("Memories deleted")

	return count, nil
}

// HealthCheck reports whether the vector store is reachable.
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.store.HealthCheck(ctx)
}

// Close releases the embedding provider first, then the vector store.
// Both failures are reported together.
func (s *Service) Close() error {
	return errors.Join(s.embedder.Close(), s.store.Close())
}

// contentHash returns the first 16 hex characters of the SHA-256 of the
// original unchunked content. Stored with every chunk for future
// deduplication; not checked on write.
func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}
