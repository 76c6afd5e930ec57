package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/models"
)

const collectionName = "memories"

// metadataKey holds the full typed metadata as JSON. chromem-go metadata is
// string-valued, so the original map is preserved here and the flattened
// string values are kept alongside for where-filtering.
const metadataKey = "_metadata"

// Store is an embedded vector store backed by chromem-go. It needs no
// external server, which makes it the zero-dependency local option.
type Store struct {
	logger     arbor.ILogger
	db         *chromem.DB
	collection *chromem.Collection
	path       string

	// Guards the count-delete-count sequence so concurrent deletes report
	// accurate counts.
	mu sync.Mutex
}

// NewStore creates a chromem-backed vector store. With an empty path the
// store is in-memory only; otherwise documents persist under that directory.
func NewStore(logger arbor.ILogger, cfg common.ChromemConfig) (*Store, error) {
	var db *chromem.DB
	if cfg.Path != "" {
		persistent, err := chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database at %s: %w", cfg.Path, err)
		}
		db = persistent
	} else {
		db = chromem.NewDB()
	}

	return &Store{
		logger: logger,
		db:     db,
		path:   cfg.Path,
	}, nil
}

// Initialize creates or reopens the collection. Safe to call more than once.
func (s *Store) Initialize(ctx context.Context) error {
	collection, err := s.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create chromem collection: %w", err)
	}
	s.collection = collection

	s.logger.Info().
		Str("collection", collectionName).
		Str("path", s.path).
		Int("documents", collection.Count()).
		Msg("Chromem store initialized")
	return nil
}

// Add stores one document per vector and returns the assigned ids in input
// order. Missing ids are generated.
func (s *Store) Add(ctx context.Context, vectors [][]float32, documents []string, metadata []map[string]interface{}, ids []string) ([]string, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("chromem store not initialized")
	}
	if len(vectors) != len(documents) || len(metadata) != len(documents) {
		return nil, fmt.Errorf("mismatched input lengths: %d vectors, %d documents, %d metadata", len(vectors), len(documents), len(metadata))
	}

	assigned := make([]string, len(documents))
	docs := make([]chromem.Document, len(documents))
	for i := range documents {
		id := ""
		if i < len(ids) {
			id = ids[i]
		}
		if id == "" {
			id = uuid.NewString()
		}
		assigned[i] = id

		meta, err := flattenMetadata(metadata[i])
		if err != nil {
			return nil, err
		}

		docs[i] = chromem.Document{
			ID:        id,
			Content:   documents[i],
			Embedding: vectors[i],
			Metadata:  meta,
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("chromem add failed: %w", err)
	}

	return assigned, nil
}

// Search runs a similarity query and returns hits ranked by descending
// similarity. The requested result count is clamped to the collection size.
func (s *Store) Search(ctx context.Context, vector []float32, topK int, filters map[string]interface{}, scoreThreshold *float64) ([]models.SearchHit, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("chromem store not initialized")
	}

	n := topK
	if count := s.collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return []models.SearchHit{}, nil
	}

	where, err := flattenFilters(filters)
	if err != nil {
		return nil, err
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	hits := make([]models.SearchHit, 0, len(results))
	for _, result := range results {
		score := float64(result.Similarity)
		if scoreThreshold != nil && score < *scoreThreshold {
			continue
		}
		hits = append(hits, models.SearchHit{
			ID:       result.ID,
			Score:    score,
			Content:  result.Content,
			Metadata: restoreMetadata(result.Metadata),
		})
	}

	return hits, nil
}

// Delete removes documents by id or by equality filter and returns the
// number removed. chromem does not report a deletion count, so the
// collection size is sampled before and after.
func (s *Store) Delete(ctx context.Context, ids []string, filters map[string]interface{}) (int, error) {
	if s.collection == nil {
		return 0, fmt.Errorf("chromem store not initialized")
	}
	if len(ids) == 0 && len(filters) == 0 {
		return 0, fmt.Errorf("delete requires ids or filters")
	}

	where, err := flattenFilters(filters)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.collection.Count()
	if err := s.collection.Delete(ctx, where, nil, ids...); err != nil {
		return 0, fmt.Errorf("chromem delete failed: %w", err)
	}
	return before - s.collection.Count(), nil
}

// HealthCheck reports whether the embedded store is usable.
func (s *Store) HealthCheck(ctx context.Context) bool {
	return s.db != nil && s.collection != nil
}

// Close releases store resources. chromem persists writes synchronously, so
// nothing needs flushing.
func (s *Store) Close() error {
	return nil
}

// flattenMetadata converts typed metadata to chromem's string-valued map and
// keeps the original values as JSON for lossless round-tripping.
func flattenMetadata(metadata map[string]interface{}) (map[string]string, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	flat := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		flat[k] = fmt.Sprintf("%v", v)
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata encoding failed: %w", err)
	}
	flat[metadataKey] = string(encoded)

	return flat, nil
}

// flattenFilters converts a flat equality map to chromem's string-valued
// where clause.
func flattenFilters(filters map[string]interface{}) (map[string]string, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	where := make(map[string]string, len(filters))
	for k, v := range filters {
		where[k] = fmt.Sprintf("%v", v)
	}
	return where, nil
}

// restoreMetadata recovers the typed metadata from its JSON copy, falling
// back to the flattened strings when the copy is absent or invalid.
func restoreMetadata(flat map[string]string) map[string]interface{} {
	if encoded, ok := flat[metadataKey]; ok {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(encoded), &meta); err == nil {
			return meta
		}
	}

	meta := make(map[string]interface{}, len(flat))
	for k, v := range flat {
		if k == metadataKey {
			continue
		}
		meta[k] = v
	}
	return meta
}
